// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "strings"

// EPSSEntry is one row of the daily EPSS scores file.
type EPSSEntry struct {
	CVE        string
	Score      float64
	Percentile float64
}

// KEVEntry is the subset of a CISA KEV catalog entry used for risk scoring.
type KEVEntry struct {
	CVEID                      string `json:"cveID"`
	VendorProject              string `json:"vendorProject"`
	Product                    string `json:"product"`
	DateAdded                  string `json:"dateAdded"`
	DueDate                    string `json:"dueDate"`
	KnownRansomwareCampaignUse string `json:"knownRansomwareCampaignUse"`
}

// Ransomware reports whether CISA links the vulnerability to ransomware
// campaigns.
func (e *KEVEntry) Ransomware() bool {
	return strings.EqualFold(e.KnownRansomwareCampaignUse, "known")
}

// KEVCatalog is the top-level catalog document.
type KEVCatalog struct {
	CatalogVersion  string     `json:"catalogVersion"`
	Count           int        `json:"count"`
	Vulnerabilities []KEVEntry `json:"vulnerabilities"`
}
