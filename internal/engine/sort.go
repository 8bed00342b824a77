// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bonial-oss/vuln-browse/internal/types"
)

// ErrUnknownColumn is returned for a sort key naming no column.
var ErrUnknownColumn = errors.New("unknown column")

// Column identifies a match attribute that rows can be ordered by.
type Column int

const (
	ColumnID Column = iota
	ColumnSeverity
	ColumnNamespace
	ColumnEPSS
	ColumnPercentile
	ColumnRisk
	ColumnFix
	ColumnArtifact
)

var columnNames = []string{"id", "severity", "namespace", "epss", "percentile", "risk", "fix", "artifact"}

// Columns lists every column in display order.
func Columns() []Column {
	return []Column{ColumnID, ColumnSeverity, ColumnNamespace, ColumnEPSS, ColumnPercentile, ColumnRisk, ColumnFix, ColumnArtifact}
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// ParseColumn resolves a column by name, case-insensitively.
func ParseColumn(name string) (Column, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range columnNames {
		if n == name {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// SortKey orders rows by one column.
type SortKey struct {
	Column Column
	Desc   bool
}

func (k SortKey) String() string {
	if k.Desc {
		return k.Column.String() + ":desc"
	}
	return k.Column.String() + ":asc"
}

// SortOrder is a multi-column ordering; earlier keys take precedence. An
// empty order keeps document order.
type SortOrder []SortKey

func (o SortOrder) String() string {
	parts := make([]string, len(o))
	for i, k := range o {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// Equal reports whether both orders hold the same keys in the same sequence.
func (o SortOrder) Equal(other SortOrder) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

func (o SortOrder) clone() SortOrder {
	if len(o) == 0 {
		return nil
	}
	return append(SortOrder(nil), o...)
}

func (o SortOrder) validate() error {
	for _, k := range o {
		if k.Column < 0 || int(k.Column) >= len(columnNames) {
			return fmt.Errorf("%w: %d", ErrUnknownColumn, int(k.Column))
		}
	}
	return nil
}

// ParseSortOrder parses "risk:desc,id" style strings. A key without a
// direction sorts ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var order SortOrder
	for _, part := range strings.Split(s, ",") {
		name, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		col, err := ParseColumn(name)
		if err != nil {
			return nil, err
		}
		key := SortKey{Column: col}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			key.Desc = true
		default:
			return nil, fmt.Errorf("invalid sort direction %q for %s", dir, col)
		}
		order = append(order, key)
	}
	return order, nil
}

// SortMatches returns a stably sorted copy of records.
func SortMatches(records []types.Match, order SortOrder) []types.Match {
	out := append([]types.Match(nil), records...)
	if len(order) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range order {
			c := compareColumn(&out[i], &out[j], k.Column)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

func compareColumn(a, b *types.Match, col Column) int {
	switch col {
	case ColumnID:
		return strings.Compare(a.CVEID, b.CVEID)
	case ColumnSeverity:
		return SeverityRank(a.Severity) - SeverityRank(b.Severity)
	case ColumnNamespace:
		return strings.Compare(a.Namespace, b.Namespace)
	case ColumnEPSS:
		return compareOptional(a.EPSS, b.EPSS)
	case ColumnPercentile:
		return compareOptional(a.Percentile, b.Percentile)
	case ColumnRisk:
		return compareOptional(a.Risk, b.Risk)
	case ColumnFix:
		return strings.Compare(a.FixState, b.FixState)
	case ColumnArtifact:
		return strings.Compare(a.ArtifactID, b.ArtifactID)
	default:
		return 0
	}
}

// compareOptional orders Unknown below every known value.
func compareOptional(a, b types.Optional[float64]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(severity string) int {
	switch strings.ToUpper(severity) {
	case "CRITICAL":
		return 5
	case "HIGH":
		return 4
	case "MEDIUM":
		return 3
	case "LOW":
		return 2
	case "NEGLIGIBLE":
		return 1
	default:
		return 0
	}
}
