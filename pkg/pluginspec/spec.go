// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginspec

// Spec is a plugin declaration.
type Spec struct {
	Identity     Identity
	Pin          Pin
	Dependencies []Identity

	// PostLoadHook and ActivationTriggers belong to the plugin loader and are passed through untouched
	PostLoadHook       any
	ActivationTriggers any

	// Source names the declaration source this spec came from; empty for synthesized stubs
	Source string
}

// Bare returns a stub spec carrying only an identity
func Bare(id Identity) *Spec {
	return &Spec{Identity: id}
}

// IsBare reports whether the spec declares nothing beyond its identity
func (s *Spec) IsBare() bool {
	return !s.Pin.IsSet() &&
		len(s.Dependencies) == 0 &&
		s.PostLoadHook == nil &&
		s.ActivationTriggers == nil
}
