// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// Filter returns the matches satisfying every category of c, in input order.
// Within a category any selected value matches. Unknown numeric values
// compare as 0, so they fail any positive threshold.
func Filter(records []types.Match, c FilterCriteria) []types.Match {
	lower := cases.Lower(language.Und)
	needle := lower.String(c.IDSubstring)

	out := make([]types.Match, 0, len(records))
	for _, r := range records {
		if needle != "" && !strings.Contains(lower.String(r.CVEID), needle) {
			continue
		}
		if len(c.Severities) > 0 && !c.Severities.Has(r.Severity) {
			continue
		}
		if len(c.FixStates) > 0 && !c.FixStates.Has(r.FixState) {
			continue
		}
		if r.EPSS.Or(0) < c.MinEPSS ||
			r.Percentile.Or(0) < c.MinPercentile ||
			r.Risk.Or(0) < c.MinRisk {
			continue
		}
		out = append(out, r)
	}
	return out
}
