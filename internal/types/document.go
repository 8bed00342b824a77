// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "encoding/json"

// Document is the minimal shape of a scanner's match report. Only the fields
// the browser reads are typed; pointer fields distinguish absent from zero.
// Fields nothing reads are kept raw or left out.
type Document struct {
	Matches    []RawMatch      `json:"matches"`
	Source     json.RawMessage `json:"source,omitempty"`
	Descriptor json.RawMessage `json:"descriptor,omitempty"`
}

// RawMatch is one (vulnerability, artifact) pairing as it appears in the
// report, before normalization.
type RawMatch struct {
	Vulnerability *RawVulnerability `json:"vulnerability"`
	Artifact      *RawArtifact      `json:"artifact,omitempty"`
}

// RawVulnerability holds the vulnerability half of a match.
type RawVulnerability struct {
	ID        *string   `json:"id"`
	Severity  *string   `json:"severity"`
	Namespace *string   `json:"namespace"`
	EPSS      []RawEPSS `json:"epss,omitempty"`
	Risk      *float64  `json:"risk,omitempty"`
	Fix       *RawFix   `json:"fix,omitempty"`
	CVSS      CVSSList  `json:"cvss,omitempty"`
}

// CVSSList is the CVSS assessments of a vulnerability. It only feeds the risk
// estimate, so a value that is not an array decodes as no assessments and an
// unreadable entry is dropped.
type CVSSList []RawCVSS

// UnmarshalJSON implements json.Unmarshaler.
func (l *CVSSList) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		*l = nil
		return nil
	}
	out := make(CVSSList, 0, len(entries))
	for _, raw := range entries {
		var c RawCVSS
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// RawCVSS is one CVSS assessment attached to a vulnerability.
type RawCVSS struct {
	Source  string         `json:"source,omitempty"`
	Version string         `json:"version"`
	Metrics RawCVSSMetrics `json:"metrics"`
}

// RawCVSSMetrics carries the scores of a CVSS assessment.
type RawCVSSMetrics struct {
	BaseScore *float64 `json:"baseScore"`
}

// RawEPSS is a single EPSS observation. Reports list the most relevant first.
type RawEPSS struct {
	CVE        json.RawMessage `json:"cve,omitempty"`
	EPSS       *float64        `json:"epss"`
	Percentile *float64        `json:"percentile"`
	Date       json.RawMessage `json:"date,omitempty"`
}

// RawFix describes remediation availability.
type RawFix struct {
	Versions json.RawMessage `json:"versions,omitempty"`
	State    string          `json:"state"`
}

// RawArtifact identifies the affected package.
type RawArtifact struct {
	ID *string `json:"id"`
}
