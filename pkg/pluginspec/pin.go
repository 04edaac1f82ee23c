// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginspec

import (
	"fmt"
	"regexp"
	"strings"
)

type PinKind int

const (
	NoPin PinKind = iota
	CommitPin
	TagPin
	BranchPin
)

func (k PinKind) String() string {
	switch k {
	case CommitPin:
		return "commit"
	case TagPin:
		return "tag"
	case BranchPin:
		return "branch"
	default:
		return "none"
	}
}

// Pin is an explicit target declared for a plugin. A Pin holds exactly one
// of commit, tag or branch, or nothing at all.
type Pin struct {
	kind  PinKind
	value string
}

var commitRegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsCommitID reports whether s is a full, lowercase 40-hex commit id
func IsCommitID(s string) bool {
	return commitRegex.MatchString(s)
}

func Commit(sha string) (Pin, error) {
	sha = strings.ToLower(strings.TrimSpace(sha))
	if !IsCommitID(sha) {
		return Pin{}, fmt.Errorf("commit pin %q must be a full 40 character hex commit id", sha)
	}
	return Pin{kind: CommitPin, value: sha}, nil
}

func Tag(name string) (Pin, error) {
	if strings.TrimSpace(name) == "" {
		return Pin{}, fmt.Errorf("tag pin must not be empty")
	}
	return Pin{kind: TagPin, value: name}, nil
}

func Branch(name string) (Pin, error) {
	if strings.TrimSpace(name) == "" {
		return Pin{}, fmt.Errorf("branch pin must not be empty")
	}
	return Pin{kind: BranchPin, value: name}, nil
}

// MustCommit is like Commit but panics on invalid input
func MustCommit(sha string) Pin {
	p, err := Commit(sha)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePin builds a Pin from the optional same-level commit/tag/branch fields of a declaration.
// Setting more than one of them is an error.
func ParsePin(commit, tag, branch string) (Pin, error) {
	set := 0
	for _, v := range []string{commit, tag, branch} {
		if v != "" {
			set++
		}
	}
	switch {
	case set > 1:
		return Pin{}, fmt.Errorf("at most one of commit, tag or branch may be set")
	case commit != "":
		return Commit(commit)
	case tag != "":
		return Tag(tag)
	case branch != "":
		return Branch(branch)
	default:
		return Pin{}, nil
	}
}

func (p Pin) Kind() PinKind {
	return p.kind
}

func (p Pin) Value() string {
	return p.value
}

func (p Pin) IsSet() bool {
	return p.kind != NoPin
}

func (p Pin) String() string {
	if !p.IsSet() {
		return ""
	}
	return p.kind.String() + ":" + p.value
}
