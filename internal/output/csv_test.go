// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteCSV_Flat(t *testing.T) {
	page := makeTestPage(t, engine.GroupNone, makeTestMatches())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, page))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, "CVE ID", records[0][0])
	assert.Equal(t, []string{"CVE-2023-9999", "Medium", "nvd:cpe", "n/a", "n/a", "n/a", "unknown", "libexample"}, records[3])
}

func TestWriteCSV_GroupedKeepsCollapsedGroup(t *testing.T) {
	e, err := engine.New(engine.Options{})
	require.NoError(t, err)
	e.Load(makeTestMatches())
	_, err = e.SetGroupingMode(engine.GroupByArtifactID)
	require.NoError(t, err)
	page := projectView(e.ToggleGroupCollapsed("libanother"))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, page))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Group", "Count"}, records[0][:2])
	assert.Equal(t, []string{"libanother", "1", "", "", "", "", "", "", "", ""}, records[1])
	assert.Equal(t, "libexample", records[2][0])
	assert.Equal(t, "2", records[2][1])
	assert.Equal(t, "CVE-2024-1234", records[2][2])
	assert.Equal(t, "CVE-2023-9999", records[3][2])
}

func TestWriteCSV_NeutralizesFormulas(t *testing.T) {
	records := []types.Match{{
		CVEID:      "=HYPERLINK(\"http://evil\")",
		Severity:   "@SUM(1)",
		Namespace:  "-1",
		FixState:   "fixed",
		ArtifactID: "+cmd",
	}}
	page := makeTestPage(t, engine.GroupNone, records)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, page))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", rows[1][0])
	assert.Equal(t, "'@SUM(1)", rows[1][1])
	assert.Equal(t, "'-1", rows[1][2])
	assert.Equal(t, "'+cmd", rows[1][7])
}
