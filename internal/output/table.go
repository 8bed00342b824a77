// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	aqtable "github.com/aquasecurity/table"
	"github.com/aquasecurity/tml"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bonial-oss/vuln-browse/internal/view"
)

// IsOutputToTerminal returns true if the writer is stdout connected to a
// character device (TTY).
func IsOutputToTerminal(output io.Writer) bool {
	return output == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
}

// WriteTable writes a page as a boxed table. Grouped pages get one section
// per group; collapsed groups show only their header.
func WriteTable(w io.Writer, page view.Page, cfg Config) error {
	if !page.Grouped {
		writeRowTable(w, page.Rows, cfg.IsTerminal)
		writeFooter(w, page, cfg.IsTerminal)
		return nil
	}

	for i, g := range page.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeGroupHeader(w, g, cfg.IsTerminal)
		if !g.Collapsed {
			writeRowTable(w, g.Rows, cfg.IsTerminal)
		}
	}
	if len(page.Groups) == 0 {
		writeRowTable(w, nil, cfg.IsTerminal)
	}
	writeFooter(w, page, cfg.IsTerminal)
	return nil
}

// writeGroupHeader writes the disclosure marker and group label.
func writeGroupHeader(w io.Writer, g view.GroupHeader, isTerminal bool) {
	// Labels come from the report, so they are never passed through tml,
	// which would interpret angle-bracket tags inside them.
	title := view.GroupIcon(g.Collapsed) + " " + stripControl(g.Display)
	if isTerminal {
		groupHeaderStyle.Fprintln(w, title)
		return
	}
	fmt.Fprintln(w, title)
	if !g.Collapsed {
		fmt.Fprintln(w, strings.Repeat("=", utf8.RuneCountInString(title)))
	}
}

// writeFooter writes the page position line.
func writeFooter(w io.Writer, page view.Page, isTerminal bool) {
	line := fmt.Sprintf("%s | page %d of %d", page.Info, page.PageIndex, page.PageCount)
	if isTerminal {
		_ = tml.Fprintf(w, "\n<dim>%s</dim>\n", line)
		return
	}
	fmt.Fprintf(w, "\n%s\n", line)
}

// newTableWriter creates a table writer with borders and row separators.
// When isTerminal is true, header and line styles use ANSI formatting.
func newTableWriter(w io.Writer, isTerminal bool) *aqtable.Table {
	tw := aqtable.New(w)
	if isTerminal {
		tw.SetHeaderStyle(aqtable.StyleBold)
		tw.SetLineStyle(aqtable.StyleDim)
	}
	tw.SetBorders(true)
	tw.SetRowLines(true)
	return tw
}

// writeRowTable renders match rows using aquasecurity/table.
func writeRowTable(w io.Writer, rows []view.Row, isTerminal bool) {
	tw := newTableWriter(w, isTerminal)
	tw.SetHeaders(view.Headers...)
	for _, row := range rows {
		tw.AddRow(rowCells(row, isTerminal)...)
	}
	tw.Render()
}

// rowCells returns the cell values for a single row. Control characters
// from the report are dropped before any ANSI styling is added.
func rowCells(row view.Row, isTerminal bool) []string {
	cells := row.Cells()
	for i := range cells {
		cells[i] = stripControl(cells[i])
	}
	if isTerminal {
		cells[1] = colorizeSeverity(cells[1])
	}
	return cells
}

var groupHeaderStyle = color.New(color.Bold, color.Underline)

// severityColors maps severity names to color functions matching Trivy's palette.
var severityColors = map[string]func(a ...any) string{
	"UNKNOWN":    color.New(color.FgCyan).SprintFunc(),
	"NEGLIGIBLE": color.New(color.FgCyan).SprintFunc(),
	"LOW":        color.New(color.FgBlue).SprintFunc(),
	"MEDIUM":     color.New(color.FgYellow).SprintFunc(),
	"HIGH":       color.New(color.FgHiRed).SprintFunc(),
	"CRITICAL":   color.New(color.FgRed).SprintFunc(),
}

// colorizeSeverity returns the severity string wrapped in ANSI color codes.
func colorizeSeverity(severity string) string {
	if fn, ok := severityColors[strings.ToUpper(severity)]; ok {
		return fn(severity)
	}
	return severity
}

// stripControl drops control characters so report text cannot emit its own
// terminal escape sequences.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
