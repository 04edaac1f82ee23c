// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginmgr

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
)

var ErrUnknownPlugin = fmt.Errorf("unknown plugin")

const maxSuggestions = 3

// Resolve maps plugin names or identities to registry identities.
// Unknown names fail with the closest declared names as suggestions.
func Resolve(reg *registry.Registry, names []string) ([]pluginspec.Identity, error) {
	var ids []pluginspec.Identity
	for _, n := range names {
		if spec, ok := reg.Lookup(n); ok {
			ids = append(ids, spec.Identity)
			continue
		}
		if id := pluginspec.NormalizeIdentity(n); reg.Has(id) {
			ids = append(ids, id)
			continue
		}

		err := fmt.Errorf("%w %q", ErrUnknownPlugin, n)
		if suggestions := Suggest(reg, n); len(suggestions) > 0 {
			err = fmt.Errorf("%w, did you mean %s?", err, strings.Join(suggestions, ", "))
		}
		return nil, err
	}
	return lo.Uniq(ids), nil
}

// Suggest returns the declared plugin names that best match name
func Suggest(reg *registry.Registry, name string) []string {
	matches := fuzzy.Find(name, reg.Names())
	names := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(names) > maxSuggestions {
		names = names[:maxSuggestions]
	}
	return names
}
