// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bonial-oss/vuln-browse/internal/view"
)

// WriteCSV writes the visible rows of page. Grouped pages get leading Group
// and Count columns; a collapsed group is a single row with empty cells.
func WriteCSV(w io.Writer, page view.Page) error {
	cw := csv.NewWriter(w)

	header := view.Headers
	if page.Grouped {
		header = append([]string{"Group", "Count"}, header...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	write := func(record []string) error {
		for i := range record {
			record[i] = neutralizeFormula(record[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
		return nil
	}

	if !page.Grouped {
		for _, row := range page.Rows {
			if err := write(row.Cells()); err != nil {
				return err
			}
		}
	}
	for _, g := range page.Groups {
		prefix := []string{g.Label, strconv.Itoa(g.Count)}
		if g.Collapsed {
			if err := write(append(prefix, make([]string, len(view.Headers))...)); err != nil {
				return err
			}
			continue
		}
		for _, row := range g.Rows {
			if err := write(append(append([]string(nil), prefix...), row.Cells()...)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV output: %w", err)
	}
	return nil
}

// neutralizeFormula prefixes cells that spreadsheets would evaluate as
// formulas.
func neutralizeFormula(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
