// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"encoding/json"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// EPSSLookup resolves EPSS scores by CVE id. *epss.Source satisfies it.
type EPSSLookup interface {
	Lookup(cveID string) *types.EPSSEntry
	ScoreDate() string
}

// KEVLookup resolves CISA KEV entries by CVE id. *kev.Source satisfies it.
type KEVLookup interface {
	Lookup(cveID string) *types.KEVEntry
}

// Enricher fills missing exploit-likelihood data in a report.
type Enricher struct {
	epss EPSSLookup
	kev  KEVLookup
}

// Result holds the enriched document and what was changed.
type Result struct {
	Document     *types.Document
	EPSSFilled   int
	RiskComputed int
	KEVListed    int
}

// New creates a new Enricher with the given data sources.
// Either source may be nil if disabled.
func New(epssSource EPSSLookup, kevSource KEVLookup) *Enricher {
	return &Enricher{
		epss: epssSource,
		kev:  kevSource,
	}
}

// Enrich returns a copy of doc in which every vulnerability with an unknown
// EPSS score or percentile gets the feed's value, and every unknown risk is
// computed from EPSS, KEV, and severity. Values present in the report are
// never replaced. Entries the normalizer would reject are copied unchanged.
func (e *Enricher) Enrich(doc *types.Document) *Result {
	out := *doc
	out.Matches = make([]types.RawMatch, len(doc.Matches))
	res := &Result{Document: &out}

	for i, m := range doc.Matches {
		out.Matches[i] = m
		if m.Vulnerability == nil || m.Vulnerability.ID == nil {
			continue
		}
		vuln := *m.Vulnerability
		id := *vuln.ID

		if e.fillEPSS(&vuln, id) {
			res.EPSSFilled++
		}

		var kevEntry *types.KEVEntry
		if e.kev != nil {
			kevEntry = e.kev.Lookup(id)
			if kevEntry != nil {
				res.KEVListed++
			}
		}

		if vuln.Risk == nil && (e.epss != nil || e.kev != nil) {
			var score types.Optional[float64]
			if len(vuln.EPSS) > 0 {
				score = types.OptionalFromPtr(vuln.EPSS[0].EPSS)
			}
			severity := ""
			if vuln.Severity != nil {
				severity = *vuln.Severity
			}
			r := RiskScore(score, kevEntry, severity, vuln.CVSS)
			vuln.Risk = &r
			res.RiskComputed++
		}

		out.Matches[i].Vulnerability = &vuln
	}

	return res
}

// fillEPSS completes the first EPSS observation of vuln from the feed. It
// reports whether anything was filled.
func (e *Enricher) fillEPSS(vuln *types.RawVulnerability, id string) bool {
	if e.epss == nil {
		return false
	}
	if len(vuln.EPSS) > 0 && vuln.EPSS[0].EPSS != nil && vuln.EPSS[0].Percentile != nil {
		return false
	}
	entry := e.epss.Lookup(id)
	if entry == nil {
		return false
	}

	score, percentile := entry.Score, entry.Percentile
	if len(vuln.EPSS) == 0 {
		vuln.EPSS = []types.RawEPSS{{
			CVE:        rawString(id),
			EPSS:       &score,
			Percentile: &percentile,
			Date:       rawString(e.epss.ScoreDate()),
		}}
		return true
	}

	observations := append([]types.RawEPSS(nil), vuln.EPSS...)
	first := &observations[0]
	if first.EPSS == nil {
		first.EPSS = &score
	}
	if first.Percentile == nil {
		first.Percentile = &percentile
	}
	vuln.EPSS = observations
	return true
}

func rawString(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	b, _ := json.Marshal(s)
	return b
}
