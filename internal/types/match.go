// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

const (
	// UnknownFixState is the fix state of a match whose report has none.
	UnknownFixState = "unknown"
	// UnknownArtifact is the artifact id of a match whose report has none. It
	// doubles as the group key sentinel.
	UnknownArtifact = "Unknown"
)

// Match is a normalized vulnerability match. Values are immutable once built
// by the normalizer; every stage passes copies.
type Match struct {
	CVEID      string            `json:"id"`
	Severity   string            `json:"severity"`
	Namespace  string            `json:"namespace"`
	EPSS       Optional[float64] `json:"epss"`
	Percentile Optional[float64] `json:"percentile"`
	Risk       Optional[float64] `json:"risk"`
	FixState   string            `json:"fix"`
	ArtifactID string            `json:"artifact"`
}
