// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package semvertag selects release tags. Only plain vMAJOR.MINOR.PATCH tags count;
// anything carrying a pre-release or build suffix is not a release.
package semvertag

import (
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

var tagRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// Parse returns the version a release tag names, or false if tag is not a release tag
func Parse(tag string) (*semver.Version, bool) {
	m := tagRegex.FindStringSubmatch(tag)
	if m == nil {
		return nil, false
	}
	parts := make([]uint64, 3)
	for i := range parts {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return nil, false
		}
		parts[i] = n
	}
	return semver.New(parts[0], parts[1], parts[2], "", ""), true
}

// Latest returns the tag naming the greatest version.
// When several tags name the same version the first one wins.
func Latest(tags []string) (string, bool) {
	var (
		best    string
		bestVer *semver.Version
	)
	for _, t := range tags {
		v, ok := Parse(t)
		if !ok {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = t, v
		}
	}
	return best, bestVer != nil
}

// First returns the first release tag in tags
func First(tags []string) (string, bool) {
	for _, t := range tags {
		if _, ok := Parse(t); ok {
			return t, true
		}
	}
	return "", false
}

// IsMajorBump reports whether both tags are releases and to has a strictly greater major version than from
func IsMajorBump(from, to string) bool {
	f, ok := Parse(from)
	if !ok {
		return false
	}
	t, ok := Parse(to)
	if !ok {
		return false
	}
	return t.Major() > f.Major()
}
