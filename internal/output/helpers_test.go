// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/types"
	"github.com/bonial-oss/vuln-browse/internal/view"
)

// makeTestMatches builds three matches across two artifacts.
func makeTestMatches() []types.Match {
	return []types.Match{
		{
			CVEID:      "CVE-2024-1234",
			Severity:   "Critical",
			Namespace:  "debian:distro:debian:12",
			EPSS:       types.Known(0.97),
			Percentile: types.Known(0.998),
			Risk:       types.Known(95.0),
			FixState:   "fixed",
			ArtifactID: "libexample",
		},
		{
			CVEID:      "CVE-2023-5678",
			Severity:   "High",
			Namespace:  "nvd:cpe",
			EPSS:       types.Known(0.42),
			Percentile: types.Known(0.873),
			Risk:       types.Known(31.5),
			FixState:   "not-fixed",
			ArtifactID: "libanother",
		},
		{
			CVEID:      "CVE-2023-9999",
			Severity:   "Medium",
			Namespace:  "nvd:cpe",
			FixState:   "unknown",
			ArtifactID: "libexample",
		},
	}
}

func makeTestPage(t *testing.T, mode engine.GroupingMode, records []types.Match) view.Page {
	t.Helper()
	e, err := engine.New(engine.Options{})
	require.NoError(t, err)
	e.Load(records)
	v, err := e.SetGroupingMode(mode)
	require.NoError(t, err)
	return view.Project(v)
}
