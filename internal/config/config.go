// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the optional JSON configuration file.
// Every field but notify-interval also has a command-line flag; the file
// exists so an
// operator can check a known-good configuration into version control
// instead of reconstructing a long flag line. Schema-validated JSON with
// struct-tag field names, validated inline with jsonschema.CompileString
// rather than an embed.FS-backed schema loader.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON constrains every field tatstore.json may set. Unknown keys are
// rejected by the schema (additionalProperties: false) and again at decode
// time (DisallowUnknownFields).
const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"addr":            {"type": "string", "minLength": 1},
		"http-addr":       {"type": "string", "minLength": 1},
		"leaf-cap":        {"type": "integer", "minimum": 1},
		"fanout":          {"type": "integer", "minimum": 2},
		"notify-interval": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

// Defaults mirror the flag defaults in cmd/tatstore, so a Config zero value
// loaded from an absent file behaves identically to running with no flags
// at all.
var Defaults = Config{
	Addr:           "localhost:12345",
	HTTPAddr:       "localhost:8082",
	LeafCap:        32,
	Fanout:         5,
	NotifyInterval: "50ms",
}

// Config is the decoded shape of the optional JSON config file. Every field
// except NotifyInterval has a same-named command-line flag in cmd/tatstore
// that overrides it; main applies those overrides after Load.
type Config struct {
	Addr           string `json:"addr"`
	HTTPAddr       string `json:"http-addr"`
	LeafCap        int    `json:"leaf-cap"`
	Fanout         int    `json:"fanout"`
	NotifyInterval string `json:"notify-interval"`
}

// Load reads and validates path, returning Defaults unchanged if path does
// not exist. A present-but-invalid file is always an error: malformed JSON,
// an unknown key, or a schema violation.
func Load(path string) (Config, error) {
	cfg := Defaults

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := Validate(raw); err != nil {
		return Config{}, fmt.Errorf("config: validating %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks raw against the embedded schema without decoding it into
// a Config; used by Load, and exposed so callers (and tests) can validate a
// candidate file before deciding to adopt it.
func Validate(raw []byte) error {
	sch, err := jsonschema.CompileString("tatstore-config.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("config: compiling schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("config: invalid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config: schema violation: %w", err)
	}
	return nil
}
