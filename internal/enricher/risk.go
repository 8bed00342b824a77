// SPDX-FileCopyrightText: 2025 Anchore, Inc.
// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Risk score calculation based on the formula from Grype
// (https://github.com/anchore/grype), licensed under Apache-2.0.

package enricher

import (
	"math"
	"strconv"
	"strings"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// RiskScore computes a composite risk score (0.0–100.0) from EPSS, KEV, and severity.
func RiskScore(epss types.Optional[float64], kev *types.KEVEntry, severity string, cvss []types.RawCVSS) float64 {
	t := threat(epss, kev)
	s := severityScore(severity, averageCVSSBaseScore(cvss))
	k := kevModifier(kev)
	return math.Min(t*s*k, 1.0) * 100.0
}

func threat(epss types.Optional[float64], kev *types.KEVEntry) float64 {
	if kev != nil {
		return 1.0
	}
	return epss.Or(0)
}

func kevModifier(kev *types.KEVEntry) float64 {
	if kev == nil {
		return 1.0
	}
	if kev.Ransomware() {
		return 1.1
	}
	return 1.05
}

func severityScore(severity string, cvssBaseScore float64) float64 {
	strScore := severityToScore(severity) / 10.0
	avgBase := cvssBaseScore / 10.0
	if avgBase == 0 {
		return strScore
	}
	return (strScore + avgBase) / 2.0
}

func severityToScore(severity string) float64 {
	switch strings.ToLower(severity) {
	case "negligible":
		return 0.5
	case "low":
		return 3.0
	case "medium":
		return 5.0
	case "high":
		return 7.5
	case "critical":
		return 9.0
	default:
		return 5.0
	}
}

// averageCVSSBaseScore averages the base scores of a match's CVSS list.
// Assessments are grouped by source and, per source, the highest CVSS
// version wins, so an NVD 3.1 score replaces the same source's 2.0 score.
func averageCVSSBaseScore(cvss []types.RawCVSS) float64 {
	type pick struct {
		version float64
		score   float64
	}
	best := make(map[string]pick)
	var sources []string
	for _, c := range cvss {
		if c.Metrics.BaseScore == nil {
			continue
		}
		version, _ := strconv.ParseFloat(c.Version, 64)
		cur, seen := best[c.Source]
		if !seen {
			sources = append(sources, c.Source)
		}
		if !seen || version > cur.version {
			best[c.Source] = pick{version: version, score: *c.Metrics.BaseScore}
		}
	}
	if len(sources) == 0 {
		return 0
	}
	var sum float64
	for _, src := range sources {
		sum += best[src].score
	}
	return sum / float64(len(sources))
}
