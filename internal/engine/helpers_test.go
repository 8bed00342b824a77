// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// scenarioDocument is the two-match report used by the end-to-end scenarios.
const scenarioDocument = `{"matches": [
	{"vulnerability": {"id": "CVE-1", "severity": "High", "namespace": "nvd",
		"epss": [{"epss": 0.9, "percentile": 0.8}], "risk": 7.2, "fix": {"state": "fixed"}},
	 "artifact": {"id": "pkgA"}},
	{"vulnerability": {"id": "CVE-1", "severity": "High", "namespace": "nvd", "risk": 3.0},
	 "artifact": {"id": "pkgB"}}
]}`

func match(id, severity, fix, artifact string) types.Match {
	return types.Match{
		CVEID:      id,
		Severity:   severity,
		Namespace:  "nvd",
		FixState:   fix,
		ArtifactID: artifact,
	}
}

func withScores(m types.Match, epss, percentile, risk float64) types.Match {
	m.EPSS = types.Known(epss)
	m.Percentile = types.Known(percentile)
	m.Risk = types.Known(risk)
	return m
}

// sampleMatches returns a varied record set: mixed severities, fix states,
// shared CVE ids and artifacts, and unknown scores.
func sampleMatches() []types.Match {
	return []types.Match{
		withScores(match("CVE-2024-0003", "Critical", "fixed", "openssl"), 0.97, 0.99, 95),
		match("CVE-2023-0001", "High", "not-fixed", "zlib"),
		withScores(match("CVE-2024-0003", "Critical", "fixed", "libssl"), 0.97, 0.99, 90),
		withScores(match("CVE-2022-0100", "Medium", "wont-fix", "openssl"), 0.02, 0.4, 3.5),
		withScores(match("cve-2021-4444", "Low", "unknown", "Unknown"), 0.001, 0.05, 0.1),
		withScores(match("CVE-2023-0001", "High", "not-fixed", "curl"), 0.3, 0.7, 21),
		match("GHSA-xxxx-yyyy", "Negligible", "unknown", "Unknown"),
	}
}

// manyMatches returns n matches with distinct ids spread across k artifacts.
func manyMatches(n, k int) []types.Match {
	out := make([]types.Match, n)
	for i := range out {
		out[i] = withScores(
			match(fmt.Sprintf("CVE-2024-%04d", i), "High", "fixed", fmt.Sprintf("pkg-%02d", i%k)),
			float64(i%10)/10, float64(i%10)/10, float64(i),
		)
	}
	return out
}
