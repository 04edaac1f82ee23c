// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"pim.dev/x/pim/pkg/installdir"
	"pim.dev/x/pim/pkg/lockstore"
	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/registry"
	"pim.dev/x/pim/pkg/utils"
	"pim.dev/x/pim/pkg/vcs"
)

type State string

const (
	OK           State = "ok"
	NotInstalled State = "not installed"
	Unlocked     State = "unlocked"
	Drift        State = "drift"
	Orphan       State = "orphan"
)

type Entry struct {
	Name     string              `json:"name"`
	Identity pluginspec.Identity `json:"identity"`
	Pin      string              `json:"pin,omitempty"`
	Locked   string              `json:"locked,omitempty"`
	Head     string              `json:"head,omitempty"`
	State    State               `json:"state"`
}

type Entries []*Entry

// Collect describes every registry entry and every lock entry whose plugin is no longer declared
func Collect(ctx context.Context, adapter vcs.Adapter, layout installdir.Layout, reg *registry.Registry, lock *lockstore.Store) (Entries, error) {
	var entries Entries
	for _, id := range reg.Identities() {
		spec, _ := reg.Get(id)
		e, err := describe(ctx, adapter, layout, lock, id)
		if err != nil {
			return nil, err
		}
		e.Pin = spec.Pin.String()
		entries = append(entries, e)
	}

	for _, id := range lock.Identities() {
		if reg.Has(id) {
			continue
		}
		e, err := describe(ctx, adapter, layout, lock, id)
		if err != nil {
			return nil, err
		}
		e.State = Orphan
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b *Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

func describe(ctx context.Context, adapter vcs.Adapter, layout installdir.Layout, lock *lockstore.Store, id pluginspec.Identity) (*Entry, error) {
	e := &Entry{Name: id.Name(), Identity: id}
	e.Locked, _ = lock.Get(id)

	installed, err := layout.IsInstalled(id)
	if err != nil {
		return nil, err
	}
	if installed {
		if e.Head, err = adapter.Head(ctx, layout.Dir(id), vcs.RevHead); err != nil {
			return nil, err
		}
	}

	switch {
	case !installed:
		e.State = NotInstalled
	case e.Locked == "":
		e.State = Unlocked
	case e.Locked != e.Head:
		e.State = Drift
	default:
		e.State = OK
	}
	return e, nil
}

// InSync reports whether every entry is installed at its locked revision
func (e Entries) InSync() bool {
	return lo.EveryBy(e, func(entry *Entry) bool { return entry.State == OK })
}

func (e Entries) Table() string {
	header := []string{"NAME", "PIN", "LOCKED", "HEAD", "STATE"}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(header...).
		Rows(lo.Map(e, func(row *Entry, _ int) []string {
			state := string(row.State)
			switch row.State {
			case OK:
				state = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render(state)
			case Drift, Orphan:
				state = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render(state)
			default:
				state = lipgloss.NewStyle().Faint(true).Italic(true).Render(state)
			}
			return []string{
				row.Name,
				row.Pin,
				utils.ShortRevision(row.Locked),
				utils.ShortRevision(row.Head),
				state,
			}
		})...).
		String()
}
