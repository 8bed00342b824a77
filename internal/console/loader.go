// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"errors"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/input"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

// ErrSuperseded is returned when another load finished while a document
// was still being acquired. The engine keeps the newer records.
var ErrSuperseded = errors.New("load superseded by a newer document")

// Fetcher acquires raw report bytes. *source.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Loader runs the acquisition pipeline: fetch, parse, optional enrichment,
// normalization, and publication to an engine.
type Loader struct {
	Fetcher Fetcher
	// Enrich, when set, may fill missing values before normalization.
	Enrich func(*types.Document) *types.Document
}

// Load fetches location and replaces the engine's records. Nothing is
// published unless every step succeeds.
func (l *Loader) Load(ctx context.Context, e *engine.Engine, location string) (int, error) {
	gen := e.Generation()

	data, err := l.Fetcher.Fetch(ctx, location)
	if err != nil {
		return 0, err
	}
	doc, err := input.Parse(data)
	if err != nil {
		return 0, err
	}
	if l.Enrich != nil {
		doc = l.Enrich(doc)
	}
	records, err := input.Normalize(doc)
	if err != nil {
		return 0, err
	}

	if e.Generation() != gen {
		return 0, ErrSuperseded
	}
	e.Load(records)
	return len(records), nil
}
