// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import "sort"

// StringSet is an unordered set of labels. A nil or empty set selects
// everything when used as a filter category.
type StringSet map[string]struct{}

// NewStringSet builds a set from values, ignoring empty strings.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Equal reports whether both sets hold the same members.
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) clone() StringSet {
	if len(s) == 0 {
		return nil
	}
	out := make(StringSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// FilterCriteria selects which matches are visible. The zero value selects
// every match.
type FilterCriteria struct {
	IDSubstring   string
	Severities    StringSet
	FixStates     StringSet
	MinEPSS       float64
	MinPercentile float64
	MinRisk       float64
}

// Equal reports whether two criteria select by the same rules.
func (c FilterCriteria) Equal(other FilterCriteria) bool {
	return c.IDSubstring == other.IDSubstring &&
		c.Severities.Equal(other.Severities) &&
		c.FixStates.Equal(other.FixStates) &&
		c.MinEPSS == other.MinEPSS &&
		c.MinPercentile == other.MinPercentile &&
		c.MinRisk == other.MinRisk
}

// IsZero reports whether the criteria select everything.
func (c FilterCriteria) IsZero() bool {
	return c.Equal(FilterCriteria{})
}

// Clone returns a copy that shares no sets with c.
func (c FilterCriteria) Clone() FilterCriteria {
	c.Severities = c.Severities.clone()
	c.FixStates = c.FixStates.clone()
	return c
}
