// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"github.com/bonial-oss/vuln-browse/internal/types"
)

// Normalize maps every raw entry of doc to a Match, preserving order. The
// first entry missing a required field aborts with *MalformedRecordError.
func Normalize(doc *types.Document) ([]types.Match, error) {
	matches := make([]types.Match, 0, len(doc.Matches))
	for i := range doc.Matches {
		m, err := NormalizeMatch(i, &doc.Matches[i])
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// NormalizeMatch converts a single entry. index is only used for error
// reporting.
func NormalizeMatch(index int, raw *types.RawMatch) (types.Match, error) {
	v := raw.Vulnerability
	if v == nil {
		return types.Match{}, &MalformedRecordError{Index: index, Field: "vulnerability"}
	}
	if v.ID == nil || *v.ID == "" {
		return types.Match{}, &MalformedRecordError{Index: index, Field: "vulnerability.id"}
	}
	if v.Severity == nil {
		return types.Match{}, &MalformedRecordError{Index: index, Field: "vulnerability.severity"}
	}
	if v.Namespace == nil {
		return types.Match{}, &MalformedRecordError{Index: index, Field: "vulnerability.namespace"}
	}

	m := types.Match{
		CVEID:      *v.ID,
		Severity:   *v.Severity,
		Namespace:  *v.Namespace,
		Risk:       types.OptionalFromPtr(v.Risk),
		FixState:   types.UnknownFixState,
		ArtifactID: types.UnknownArtifact,
	}

	if len(v.EPSS) > 0 {
		m.EPSS = types.OptionalFromPtr(v.EPSS[0].EPSS)
		m.Percentile = types.OptionalFromPtr(v.EPSS[0].Percentile)
	}
	if v.Fix != nil && v.Fix.State != "" {
		m.FixState = v.Fix.State
	}
	if raw.Artifact != nil && raw.Artifact.ID != nil && *raw.Artifact.ID != "" {
		m.ArtifactID = *raw.Artifact.ID
	}

	return m, nil
}
