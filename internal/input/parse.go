// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"bytes"
	"encoding/json"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// Parse decodes a match report. It fails with *DocumentParseError on invalid
// JSON and *DocumentShapeError when the top-level matches field is missing or
// is not an array.
func Parse(data []byte) (*types.Document, error) {
	// Probe the top level before decoding into typed structs so a missing
	// field and a mistyped field produce different errors.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		if !json.Valid(data) {
			return nil, &DocumentParseError{Err: err}
		}
		return nil, &DocumentShapeError{Reason: "top level is not an object"}
	}

	raw, ok := probe["matches"]
	if !ok {
		return nil, &DocumentShapeError{Reason: `missing "matches" field`}
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &DocumentShapeError{Reason: `"matches" is not an array`}
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DocumentShapeError{Reason: "decoding matches", Err: err}
	}
	if doc.Matches == nil {
		doc.Matches = []types.RawMatch{}
	}
	return &doc, nil
}

// Load parses and normalizes a report in one step. Nothing is returned unless
// every entry normalizes.
func Load(data []byte) ([]types.Match, *types.Document, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	matches, err := Normalize(doc)
	if err != nil {
		return nil, nil, err
	}
	return matches, doc, nil
}
