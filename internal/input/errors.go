// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrDocumentParse   = errors.New("document is not valid JSON")
	ErrDocumentShape   = errors.New("document has an unexpected shape")
	ErrMalformedRecord = errors.New("malformed match record")
)

// DocumentParseError means the input is not syntactically valid JSON.
type DocumentParseError struct {
	Err error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("invalid JSON input: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

func (e *DocumentParseError) Is(target error) bool { return target == ErrDocumentParse }

// DocumentShapeError means the input is valid JSON but not a match report.
type DocumentShapeError struct {
	Reason string
	Err    error
}

func (e *DocumentShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected document shape: %s: %v", e.Reason, e.Err)
	}
	return "unexpected document shape: " + e.Reason
}

func (e *DocumentShapeError) Unwrap() error { return e.Err }

func (e *DocumentShapeError) Is(target error) bool { return target == ErrDocumentShape }

// MalformedRecordError identifies the first match entry missing a required
// field. The whole document is rejected when one is found.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("match %d: missing required field %q", e.Index, e.Field)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }
