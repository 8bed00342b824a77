// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/cache"
	"github.com/bonial-oss/vuln-browse/internal/datasource/epss"
	"github.com/bonial-oss/vuln-browse/internal/datasource/kev"
	"github.com/bonial-oss/vuln-browse/internal/input"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

// Sample EPSS CSV with 3 entries:
//   - CVE-2024-1234: 0.97 (in both EPSS and KEV fixtures)
//   - CVE-2023-5678: 0.42 (in EPSS only, not in KEV fixture below)
//   - CVE-2023-9012: 0.01
const testEPSSCSV = `#model_version:v2025.03.14,score_date:2026-02-12T00:00:00+0000
cve,epss,percentile
CVE-2024-1234,0.97000,0.99800
CVE-2023-5678,0.42000,0.87300
CVE-2023-9012,0.01000,0.12100
`

// Sample KEV JSON with only CVE-2024-1234.
const testKEVJSON = `{
  "catalogVersion": "2026.02.12",
  "count": 1,
  "vulnerabilities": [
    {
      "cveID": "CVE-2024-1234",
      "vendorProject": "ExampleVendor",
      "product": "ExampleProduct",
      "dateAdded": "2024-01-15",
      "dueDate": "2024-02-05",
      "knownRansomwareCampaignUse": "Known"
    }
  ]
}`

const testReport = `{"matches": [
  {"vulnerability": {"id": "CVE-2024-1234", "severity": "Critical", "namespace": "nvd:cpe"},
   "artifact": {"id": "a1"}},
  {"vulnerability": {"id": "CVE-2023-5678", "severity": "High", "namespace": "nvd:cpe",
     "epss": [{"cve": "CVE-2023-5678", "epss": 0.5, "percentile": null}]},
   "artifact": {"id": "a2"}},
  {"vulnerability": {"id": "CVE-2023-9012", "severity": "Low", "namespace": "debian:12",
     "epss": [{"cve": "CVE-2023-9012", "epss": 0.2, "percentile": 0.3}], "risk": 4.2},
   "artifact": {"id": "a3"}},
  {"vulnerability": {"id": "GHSA-xxxx", "severity": "Medium", "namespace": "github:go"},
   "artifact": {"id": "a4"}}
]}`

// setupEPSSSource creates an EPSS source loaded from cache with test data.
func setupEPSSSource(t *testing.T) *epss.Source {
	t.Helper()
	tmpDir := t.TempDir()
	c := cache.New(filepath.Join(tmpDir, "epss"))
	require.NoError(t, c.Store("epss_scores.csv", []byte(testEPSSCSV)))

	s := epss.NewSource(tmpDir)
	require.NoError(t, s.Load(context.Background(), true))
	return s
}

// setupKEVSource creates a KEV source loaded from cache with test data.
func setupKEVSource(t *testing.T) *kev.Source {
	t.Helper()
	tmpDir := t.TempDir()
	c := cache.New(filepath.Join(tmpDir, "kev"))
	require.NoError(t, c.Store("known_exploited_vulnerabilities.json", []byte(testKEVJSON)))

	s := kev.NewSource(tmpDir)
	require.NoError(t, s.Load(context.Background(), true))
	return s
}

func parseReport(t *testing.T) *types.Document {
	t.Helper()
	doc, err := input.Parse([]byte(testReport))
	require.NoError(t, err)
	return doc
}

func enrichAndNormalize(t *testing.T, e *Enricher) ([]types.Match, *Result) {
	t.Helper()
	res := e.Enrich(parseReport(t))
	records, err := input.Normalize(res.Document)
	require.NoError(t, err)
	return records, res
}

func TestEnrich_BothSources(t *testing.T) {
	e := New(setupEPSSSource(t), setupKEVSource(t))
	records, res := enrichAndNormalize(t, e)
	require.Len(t, records, 4)

	assert.Equal(t, 2, res.EPSSFilled)
	assert.Equal(t, 3, res.RiskComputed)
	assert.Equal(t, 1, res.KEVListed)

	// KEV-listed, no EPSS in the report: both filled from the feed.
	assert.Equal(t, types.Known(0.97), records[0].EPSS)
	assert.Equal(t, types.Known(0.998), records[0].Percentile)
	risk, ok := records[0].Risk.Get()
	require.True(t, ok)
	assert.InEpsilon(t, 99.0, risk, 0.01)

	// Known EPSS stays; only the missing percentile is filled.
	assert.Equal(t, types.Known(0.5), records[1].EPSS)
	assert.Equal(t, types.Known(0.873), records[1].Percentile)
	risk, ok = records[1].Risk.Get()
	require.True(t, ok)
	assert.InEpsilon(t, 37.5, risk, 0.01, "risk uses the report's own EPSS score")

	// Everything known: untouched.
	assert.Equal(t, types.Known(0.2), records[2].EPSS)
	assert.Equal(t, types.Known(4.2), records[2].Risk)

	// Not in either feed: EPSS stays unknown, risk computes to zero.
	assert.False(t, records[3].EPSS.IsKnown())
	assert.Equal(t, types.Known(0.0), records[3].Risk)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	doc := parseReport(t)
	e := New(setupEPSSSource(t), setupKEVSource(t))
	res := e.Enrich(doc)

	assert.Nil(t, doc.Matches[0].Vulnerability.Risk)
	assert.Empty(t, doc.Matches[0].Vulnerability.EPSS)
	assert.Nil(t, doc.Matches[1].Vulnerability.EPSS[0].Percentile)
	assert.NotNil(t, res.Document.Matches[0].Vulnerability.Risk)
}

func TestEnrich_NoEPSS(t *testing.T) {
	e := New(nil, setupKEVSource(t))
	records, res := enrichAndNormalize(t, e)

	assert.Zero(t, res.EPSSFilled)
	assert.False(t, records[0].EPSS.IsKnown())
	assert.True(t, records[0].Risk.IsKnown(), "KEV alone yields a risk")
}

func TestEnrich_NoKEV(t *testing.T) {
	e := New(setupEPSSSource(t), nil)
	records, res := enrichAndNormalize(t, e)

	assert.Zero(t, res.KEVListed)
	// threat=0.97, severity=0.9, kevMod=1.0 -> 87.3
	risk, ok := records[0].Risk.Get()
	require.True(t, ok)
	assert.InEpsilon(t, 87.3, risk, 0.01)
}

func TestEnrich_NoSources(t *testing.T) {
	e := New(nil, nil)
	records, res := enrichAndNormalize(t, e)

	assert.Zero(t, res.RiskComputed)
	assert.False(t, records[0].Risk.IsKnown())
}

func TestEnrich_SkipsMalformedEntries(t *testing.T) {
	doc := &types.Document{Matches: []types.RawMatch{{Vulnerability: nil}}}
	res := New(setupEPSSSource(t), setupKEVSource(t)).Enrich(doc)

	require.Len(t, res.Document.Matches, 1)
	assert.Nil(t, res.Document.Matches[0].Vulnerability)
	_, err := input.Normalize(res.Document)
	assert.ErrorIs(t, err, input.ErrMalformedRecord)
}
