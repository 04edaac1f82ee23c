// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lockstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"pim.dev/x/pim/pkg/pluginspec"
	"pim.dev/x/pim/pkg/utils"
)

var ErrMalformedLock = fmt.Errorf("malformed lock file")

// Store is the in-memory lock state: identity -> locked revision.
type Store struct {
	path    string
	entries map[pluginspec.Identity]string
	exists  bool
	dirty   bool
}

// New returns an empty store that saves to path
func New(path string) *Store {
	return &Store{path: path, entries: map[pluginspec.Identity]string{}}
}

// Read loads the lock file at path.
// A missing file yields an empty store. Malformed content yields an empty store along with an ErrMalformedLock error.
func Read(path string) (*Store, error) {
	s := New(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	s.exists = true

	entries, err := Unmarshal(data)
	if err != nil {
		return s, fmt.Errorf("%w %q: %w", ErrMalformedLock, path, err)
	}
	s.entries = entries
	return s, nil
}

func Unmarshal(data []byte) (map[pluginspec.Identity]string, error) {
	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[pluginspec.Identity]string, len(raw))
	for k, v := range raw {
		if !pluginspec.IsCommitID(v) {
			return nil, fmt.Errorf("entry %q has invalid revision %q", k, v)
		}
		entries[pluginspec.Identity(k)] = v
	}
	return entries, nil
}

// Marshal renders entries as a JSON object with keys in sorted order, one entry per line.
// An empty map renders as "{\n}".
func Marshal(entries map[pluginspec.Identity]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	keys := slices.Sorted(maps.Keys(entries))
	for i, k := range keys {
		key, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entries[k])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}")
	return buf.Bytes(), nil
}

func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the lock file was present when the store was read
func (s *Store) Exists() bool {
	return s.exists
}

func (s *Store) Dirty() bool {
	return s.dirty
}

func (s *Store) Get(id pluginspec.Identity) (string, bool) {
	rev, ok := s.entries[id]
	return rev, ok
}

// Set records rev for id and reports whether the entry changed
func (s *Store) Set(id pluginspec.Identity, rev string) bool {
	if cur, ok := s.entries[id]; ok && cur == rev {
		return false
	}
	s.entries[id] = rev
	s.dirty = true
	return true
}

// Delete removes the entry for id and reports whether there was one
func (s *Store) Delete(id pluginspec.Identity) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	s.dirty = true
	return true
}

// Identities returns the locked identities, sorted
func (s *Store) Identities() []pluginspec.Identity {
	return slices.Sorted(maps.Keys(s.entries))
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the lock state
func (s *Store) Entries() map[pluginspec.Identity]string {
	return maps.Clone(s.entries)
}

// Save replaces the lock file with the current state if anything changed since it was read
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	data, err := Marshal(s.entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write lock file %q: %w", s.path, err)
	}
	s.dirty = false
	s.exists = true
	return nil
}
