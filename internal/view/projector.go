// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package view formats engine output into display strings. It holds no
// state and never escapes; escaping belongs to markup render targets.
package view

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

// NotAvailable is shown for unknown scores.
const NotAvailable = "n/a"

const nvdDetailURL = "https://nvd.nist.gov/vuln/detail/"

// Headers are the column titles in display order.
var Headers = []string{"CVE ID", "Severity", "Namespace", "EPSS", "Percentile", "Risk Score", "Fix Status", "Artifact"}

// Row is one match rendered to strings.
type Row struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Severity   string `json:"severity"`
	Namespace  string `json:"namespace"`
	EPSS       string `json:"epss"`
	Percentile string `json:"percentile"`
	Risk       string `json:"risk"`
	Fix        string `json:"fix"`
	Artifact   string `json:"artifact"`
}

// Cells returns the row values in Headers order.
func (r Row) Cells() []string {
	return []string{r.ID, r.Severity, r.Namespace, r.EPSS, r.Percentile, r.Risk, r.Fix, r.Artifact}
}

// GroupHeader is one group rendered for display.
type GroupHeader struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Display   string `json:"display"`
	Count     int    `json:"count"`
	Collapsed bool   `json:"collapsed"`
	// Rows is empty when the group is collapsed.
	Rows []Row `json:"rows"`
}

// Page is a fully formatted PageView.
type Page struct {
	Grouped       bool          `json:"grouped"`
	Mode          string        `json:"mode"`
	Rows          []Row         `json:"rows,omitempty"`
	Groups        []GroupHeader `json:"groups,omitempty"`
	PageIndex     int           `json:"page"`
	PageCount     int           `json:"pageCount"`
	PageSize      int           `json:"pageSize"`
	TotalCount    int           `json:"totalCount"`
	FilteredCount int           `json:"filteredCount"`
	RecordCount   int           `json:"recordCount"`
	Info          string        `json:"info"`
}

// FormatEPSS renders the score as-is, or n/a.
func FormatEPSS(o types.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercentile renders a 0-1 percentile as a percentage with two
// decimals, or n/a.
func FormatPercentile(o types.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatRisk renders the risk score with two decimals, or n/a.
func FormatRisk(o types.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", v)
}

// DetailURL links a vulnerability id to its NVD page.
func DetailURL(id string) string {
	return nvdDetailURL + url.PathEscape(id)
}

// GroupLabel appends the member count when a group holds more than one.
func GroupLabel(g engine.Group) string {
	label := g.Label
	if label == "" {
		label = types.UnknownArtifact
	}
	if n := len(g.Members); n > 1 {
		return fmt.Sprintf("%s (%d)", label, n)
	}
	return label
}

// GroupIcon is the disclosure marker of a group header.
func GroupIcon(collapsed bool) string {
	if collapsed {
		return "▶"
	}
	return "▼"
}

// ProjectMatch formats a single match. Fix state and artifact are already
// defaulted by the normalizer and are copied verbatim.
func ProjectMatch(m types.Match) Row {
	return Row{
		ID:         m.CVEID,
		URL:        DetailURL(m.CVEID),
		Severity:   m.Severity,
		Namespace:  m.Namespace,
		EPSS:       FormatEPSS(m.EPSS),
		Percentile: FormatPercentile(m.Percentile),
		Risk:       FormatRisk(m.Risk),
		Fix:        m.FixState,
		Artifact:   m.ArtifactID,
	}
}

// ProjectGroup formats a group; collapsed groups carry no rows.
func ProjectGroup(g engine.Group) GroupHeader {
	h := GroupHeader{
		Key:       g.Key,
		Label:     g.Label,
		Display:   GroupLabel(g),
		Count:     len(g.Members),
		Collapsed: g.Collapsed,
	}
	if !g.Collapsed {
		h.Rows = projectMatches(g.Members)
	}
	return h
}

// Project formats a whole page.
func Project(v engine.PageView) Page {
	p := Page{
		Grouped:       v.Mode != engine.GroupNone,
		Mode:          v.Mode.String(),
		PageIndex:     v.PageIndex,
		PageCount:     v.PageCount,
		PageSize:      v.PageSize,
		TotalCount:    v.TotalCount,
		FilteredCount: v.FilteredCount,
		RecordCount:   v.RecordCount,
		Info:          Info(v),
	}
	if p.Grouped {
		p.Groups = make([]GroupHeader, len(v.Groups))
		for i, g := range v.Groups {
			p.Groups[i] = ProjectGroup(g)
		}
		return p
	}
	p.Rows = projectMatches(v.Matches)
	return p
}

// Info summarizes the page position, e.g.
// "Showing 11 to 20 of 57 entries (filtered from 100 total entries)".
func Info(v engine.PageView) string {
	unit := "entries"
	if v.Mode != engine.GroupNone {
		unit = "groups"
	}
	if v.TotalCount == 0 {
		s := "Showing 0 to 0 of 0 " + unit
		if v.RecordCount > 0 {
			s += fmt.Sprintf(" (filtered from %d total entries)", v.RecordCount)
		}
		return s
	}
	start := (v.PageIndex-1)*v.PageSize + 1
	end := start + v.Len() - 1
	s := fmt.Sprintf("Showing %d to %d of %d %s", start, end, v.TotalCount, unit)
	if v.FilteredCount != v.RecordCount {
		s += fmt.Sprintf(" (filtered from %d total entries)", v.RecordCount)
	}
	return s
}

func projectMatches(ms []types.Match) []Row {
	rows := make([]Row, len(ms))
	for i, m := range ms {
		rows[i] = ProjectMatch(m)
	}
	return rows
}
