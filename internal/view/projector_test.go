// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

func TestFormatEPSS(t *testing.T) {
	assert.Equal(t, "n/a", FormatEPSS(types.Unknown[float64]()))
	assert.Equal(t, "0.9", FormatEPSS(types.Known(0.9)))
	assert.Equal(t, "0.00043", FormatEPSS(types.Known(0.00043)))
	assert.Equal(t, "0", FormatEPSS(types.Known(0.0)))
}

func TestFormatPercentile(t *testing.T) {
	assert.Equal(t, "n/a", FormatPercentile(types.Unknown[float64]()))
	assert.Equal(t, "80.00%", FormatPercentile(types.Known(0.8)))
	assert.Equal(t, "99.83%", FormatPercentile(types.Known(0.99834)))
	assert.Equal(t, "0.00%", FormatPercentile(types.Known(0.0)))
}

func TestFormatRisk(t *testing.T) {
	assert.Equal(t, "n/a", FormatRisk(types.Unknown[float64]()))
	assert.Equal(t, "7.20", FormatRisk(types.Known(7.2)))
	assert.Equal(t, "3.00", FormatRisk(types.Known(3.0)))
}

func TestGroupLabel(t *testing.T) {
	one := engine.Group{Label: "pkgA", Members: make([]types.Match, 1)}
	two := engine.Group{Label: "CVE-1", Members: make([]types.Match, 2)}
	empty := engine.Group{Members: make([]types.Match, 1)}

	assert.Equal(t, "pkgA", GroupLabel(one))
	assert.Equal(t, "CVE-1 (2)", GroupLabel(two))
	assert.Equal(t, "Unknown", GroupLabel(empty))
}

func TestDetailURL_EscapesPath(t *testing.T) {
	assert.Equal(t, "https://nvd.nist.gov/vuln/detail/CVE-2024-1234", DetailURL("CVE-2024-1234"))
	assert.Equal(t, "https://nvd.nist.gov/vuln/detail/x%2F..%2F%3Fq=1", DetailURL("x/../?q=1"))
}

func TestProjectMatch(t *testing.T) {
	row := ProjectMatch(types.Match{
		CVEID:      "CVE-1",
		Severity:   "High",
		Namespace:  "nvd",
		EPSS:       types.Known(0.9),
		Percentile: types.Known(0.8),
		Risk:       types.Known(7.2),
		FixState:   "fixed",
		ArtifactID: "pkgA",
	})
	assert.Equal(t, []string{"CVE-1", "High", "nvd", "0.9", "80.00%", "7.20", "fixed", "pkgA"}, row.Cells())
	assert.Len(t, Headers, len(row.Cells()))
}

func TestProject_ScenarioGroupLabel(t *testing.T) {
	e, err := engine.New(engine.Options{})
	require.NoError(t, err)
	_, err = e.LoadDocument([]byte(`{"matches": [
		{"vulnerability": {"id": "CVE-1", "severity": "High", "namespace": "nvd",
			"epss": [{"epss": 0.9, "percentile": 0.8}], "risk": 7.2, "fix": {"state": "fixed"}},
		 "artifact": {"id": "pkgA"}},
		{"vulnerability": {"id": "CVE-1", "severity": "High", "namespace": "nvd", "risk": 3.0},
		 "artifact": {"id": "pkgB"}}
	]}`))
	require.NoError(t, err)

	v, err := e.SetGroupingMode(engine.GroupByCVEID)
	require.NoError(t, err)

	page := Project(v)
	require.True(t, page.Grouped)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, "CVE-1 (2)", page.Groups[0].Display)
	require.Len(t, page.Groups[0].Rows, 2)
	assert.Equal(t, []string{"CVE-1", "High", "nvd", "n/a", "n/a", "3.00", "unknown", "pkgB"}, page.Groups[0].Rows[1].Cells())
	assert.Equal(t, "Showing 1 to 1 of 1 groups", page.Info)

	page = Project(e.ToggleGroupCollapsed("CVE-1"))
	assert.True(t, page.Groups[0].Collapsed)
	assert.Empty(t, page.Groups[0].Rows)
	assert.Equal(t, 2, page.Groups[0].Count)
}

func TestInfo(t *testing.T) {
	v := engine.PageView{
		Matches:       make([]types.Match, 10),
		PageIndex:     2,
		PageCount:     6,
		PageSize:      10,
		TotalCount:    57,
		FilteredCount: 57,
		RecordCount:   100,
	}
	assert.Equal(t, "Showing 11 to 20 of 57 entries (filtered from 100 total entries)", Info(v))

	v.FilteredCount, v.RecordCount = 57, 57
	assert.Equal(t, "Showing 11 to 20 of 57 entries", Info(v))

	empty := engine.PageView{PageIndex: 1, PageCount: 1, PageSize: 10, RecordCount: 4}
	assert.Equal(t, "Showing 0 to 0 of 0 entries (filtered from 4 total entries)", Info(empty))
}
