// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("risk:desc, id ,Severity:ASC")
	require.NoError(t, err)
	assert.Equal(t, SortOrder{
		{Column: ColumnRisk, Desc: true},
		{Column: ColumnID},
		{Column: ColumnSeverity},
	}, order)
	assert.Equal(t, "risk:desc,id:asc,severity:asc", order.String())

	order, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Nil(t, order)

	_, err = ParseSortOrder("cvss:desc")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ParseSortOrder("risk:sideways")
	assert.Error(t, err)
}

func TestSortMatches_EmptyOrderKeepsInput(t *testing.T) {
	records := sampleMatches()
	assert.Equal(t, records, SortMatches(records, nil))
}

func TestSortMatches_RiskDescUnknownLast(t *testing.T) {
	got := SortMatches(sampleMatches(), SortOrder{{Column: ColumnRisk, Desc: true}})
	assert.Equal(t, []string{
		"CVE-2024-0003/openssl",
		"CVE-2024-0003/libssl",
		"CVE-2023-0001/curl",
		"CVE-2022-0100/openssl",
		"cve-2021-4444/Unknown",
		"CVE-2023-0001/zlib",
		"GHSA-xxxx-yyyy/Unknown",
	}, ids(got))
}

func TestSortMatches_SeverityByRankThenStable(t *testing.T) {
	got := SortMatches(sampleMatches(), SortOrder{{Column: ColumnSeverity, Desc: true}})
	var severities []string
	for _, m := range got {
		severities = append(severities, m.Severity)
	}
	assert.Equal(t, []string{"Critical", "Critical", "High", "High", "Medium", "Low", "Negligible"}, severities)
	assert.Equal(t, "CVE-2023-0001/zlib", ids(got)[2], "ties keep input order")
}

func TestSortMatches_MultiKey(t *testing.T) {
	got := SortMatches(sampleMatches(), SortOrder{{Column: ColumnID}, {Column: ColumnArtifact}})
	assert.Equal(t, []string{
		"CVE-2022-0100/openssl",
		"CVE-2023-0001/curl",
		"CVE-2023-0001/zlib",
		"CVE-2024-0003/libssl",
		"CVE-2024-0003/openssl",
		"GHSA-xxxx-yyyy/Unknown",
		"cve-2021-4444/Unknown",
	}, ids(got))
}

func TestSortMatches_DoesNotMutateInput(t *testing.T) {
	records := sampleMatches()
	before := append([]types.Match(nil), records...)
	_ = SortMatches(records, SortOrder{{Column: ColumnID, Desc: true}})
	assert.Equal(t, before, records)
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityRank("critical"), SeverityRank("HIGH"))
	assert.Greater(t, SeverityRank("High"), SeverityRank("medium"))
	assert.Greater(t, SeverityRank("Low"), SeverityRank("Negligible"))
	assert.Equal(t, 0, SeverityRank("Unknown"))
}
