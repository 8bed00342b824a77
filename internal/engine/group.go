// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// ErrUnknownGroupingMode is returned for a mode outside the defined set.
var ErrUnknownGroupingMode = errors.New("unknown grouping mode")

// GroupingMode selects the attribute matches are bucketed by.
type GroupingMode int

const (
	GroupNone GroupingMode = iota
	GroupByCVEID
	GroupByArtifactID
)

func (m GroupingMode) String() string {
	switch m {
	case GroupNone:
		return "none"
	case GroupByCVEID:
		return "cve"
	case GroupByArtifactID:
		return "artifact"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m GroupingMode) valid() bool {
	return m >= GroupNone && m <= GroupByArtifactID
}

// ParseGroupingMode accepts none, cve (or id) and artifact.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return GroupNone, nil
	case "cve", "id":
		return GroupByCVEID, nil
	case "artifact":
		return GroupByArtifactID, nil
	default:
		return GroupNone, fmt.Errorf("%w: %q", ErrUnknownGroupingMode, s)
	}
}

// Group is one bucket of matches sharing a grouping key.
type Group struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	Members   []types.Match `json:"members"`
	Collapsed bool          `json:"collapsed"`
}

// CollapseState remembers which group labels are collapsed. Entries are
// keyed by label so they survive re-sorting and re-filtering; labels are
// never pruned.
type CollapseState struct {
	labels map[string]bool
}

// IsCollapsed reports the state of label; unseen labels are expanded.
func (s *CollapseState) IsCollapsed(label string) bool {
	return s.labels[label]
}

// Toggle flips label and returns the new state.
func (s *CollapseState) Toggle(label string) bool {
	if s.labels == nil {
		s.labels = make(map[string]bool)
	}
	s.labels[label] = !s.labels[label]
	return s.labels[label]
}

// Set forces the state of label.
func (s *CollapseState) Set(label string, collapsed bool) {
	if s.labels == nil {
		s.labels = make(map[string]bool)
	}
	s.labels[label] = collapsed
}

// Reset expands every group.
func (s *CollapseState) Reset() {
	s.labels = nil
}

// Len returns the number of remembered labels.
func (s *CollapseState) Len() int {
	return len(s.labels)
}

// GroupKey returns the bucket key of m under mode.
func GroupKey(m *types.Match, mode GroupingMode) string {
	var key string
	switch mode {
	case GroupByCVEID:
		key = m.CVEID
	case GroupByArtifactID:
		key = m.ArtifactID
	}
	if key == "" {
		return types.UnknownArtifact
	}
	return key
}

// GroupMatches partitions records by mode. Buckets are ordered by ascending
// key (byte-wise, "Unknown" is not special); members keep input order. With
// GroupNone a single unlabeled group holds every record. collapsed may be nil.
func GroupMatches(records []types.Match, mode GroupingMode, collapsed *CollapseState) []Group {
	if mode == GroupNone {
		return []Group{{Members: append([]types.Match(nil), records...)}}
	}

	index := make(map[string]int)
	var groups []Group
	for i := range records {
		key := GroupKey(&records[i], mode)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, Group{Key: key, Label: key})
		}
		groups[pos].Members = append(groups[pos].Members, records[i])
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	if collapsed != nil {
		for i := range groups {
			groups[i].Collapsed = collapsed.IsCollapsed(groups[i].Label)
		}
	}
	return groups
}
