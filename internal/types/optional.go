// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that a scan report may or may not carry. The zero
// value is Unknown, so "missing" is never confused with "present but zero".
type Optional[T any] struct {
	value T
	known bool
}

// Known wraps a present value.
func Known[T any](v T) Optional[T] {
	return Optional[T]{value: v, known: true}
}

// Unknown returns an Optional with no value.
func Unknown[T any]() Optional[T] {
	return Optional[T]{}
}

// OptionalFromPtr converts a decoded JSON pointer field.
func OptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Unknown[T]()
	}
	return Known(*p)
}

// Get returns the value and whether it is known.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.known
}

// IsKnown reports whether a value is present.
func (o Optional[T]) IsKnown() bool {
	return o.known
}

// Or returns the value, or def when unknown.
func (o Optional[T]) Or(def T) T {
	if !o.known {
		return def
	}
	return o.value
}

// MarshalJSON encodes Unknown as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null (or an absent field) as Unknown.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Unknown[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Known(v)
	return nil
}
