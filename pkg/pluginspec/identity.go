// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginspec

import (
	"regexp"
	"strings"
)

// Identity is the canonical source location of a plugin.
// It keys the registry, the lock store and (through Name) the install dir.
type Identity string

var shorthandRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

const shorthandHost = "https://github.com/"

// NormalizeIdentity canonicalizes a declared source location.
// "owner/repo" shorthand expands to a github URL; anything else is kept as-is.
func NormalizeIdentity(raw string) Identity {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	if shorthandRegex.MatchString(s) {
		return Identity(shorthandHost + s)
	}
	return Identity(s)
}

// Name is the install dir name: the last path segment, without a ".git" suffix
func (i Identity) Name() string {
	s := strings.TrimRight(string(i), "/")
	if idx := strings.LastIndexAny(s, "/:\\"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSuffix(s, ".git")
}

func (i Identity) String() string {
	return string(i)
}
