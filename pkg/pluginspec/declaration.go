// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pluginspec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.trai.ch/zerr"
)

//go:embed schema/declaration.schema.json
var schemaBytes []byte

const schemaURL = "declaration.schema.json"

var ErrInvalidDeclaration = errors.New("invalid plugin declaration")

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

type record struct {
	URL          string          `json:"url"`
	Commit       string          `json:"commit"`
	Tag          string          `json:"tag"`
	Branch       string          `json:"branch"`
	Dependencies []string        `json:"dependencies"`
	PostLoad     json.RawMessage `json:"post-load"`
	Triggers     json.RawMessage `json:"triggers"`
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling declaration schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("adding declaration schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ParseDeclaration parses one declaration source into specs, in declaration order.
// Accepted shapes are a single record, a sequence of records, or a mapping with a "plugins" sequence.
// An empty document declares nothing.
func ParseDeclaration(sourceName string, data []byte) ([]*Spec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, invalid(sourceName, err)
	}
	if t := strings.TrimSpace(string(jsonData)); t == "null" || t == "" {
		return nil, nil
	}

	if err := Validate(jsonData); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, zerr.With(invalid(sourceName, errors.New(ve.Error())), "location", "/"+strings.Join(ve.InstanceLocation, "/"))
		}
		return nil, invalid(sourceName, err)
	}

	records, err := decodeRecords(jsonData)
	if err != nil {
		return nil, invalid(sourceName, err)
	}

	specs := make([]*Spec, 0, len(records))
	for _, r := range records {
		s, err := r.toSpec(sourceName)
		if err != nil {
			return nil, zerr.With(invalid(sourceName, err), "identity", r.URL)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Validate checks a declaration, already converted to JSON, against the declaration schema.
// Schema violations are returned as *jsonschema.ValidationError.
func Validate(jsonData []byte) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	return schema.Validate(inst)
}

func decodeRecords(jsonData []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(jsonData)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []record
		err := json.Unmarshal(trimmed, &records)
		return records, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, err
	}
	if plugins, ok := probe["plugins"]; ok {
		var records []record
		err := json.Unmarshal(plugins, &records)
		return records, err
	}
	var r record
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, err
	}
	return []record{r}, nil
}

func (r record) toSpec(sourceName string) (*Spec, error) {
	id := NormalizeIdentity(r.URL)
	if id == "" || id.Name() == "" {
		return nil, fmt.Errorf("url %q does not name a plugin", r.URL)
	}
	pin, err := ParsePin(r.Commit, r.Tag, r.Branch)
	if err != nil {
		return nil, err
	}

	s := &Spec{
		Identity: id,
		Pin:      pin,
		Source:   sourceName,
	}
	for _, d := range r.Dependencies {
		s.Dependencies = append(s.Dependencies, NormalizeIdentity(d))
	}
	if s.PostLoadHook, err = opaque(r.PostLoad); err != nil {
		return nil, err
	}
	if s.ActivationTriggers, err = opaque(r.Triggers); err != nil {
		return nil, err
	}
	return s, nil
}

// opaque decodes an uninterpreted field; an absent or null field stays nil
func opaque(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func invalid(sourceName string, cause error) error {
	return zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidDeclaration, cause), sourceName), "source", sourceName)
}
