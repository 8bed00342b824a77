// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/bonial-oss/vuln-browse/internal/view"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatHTML  = "html"
)

// Formats lists every supported format.
var Formats = []string{FormatTable, FormatJSON, FormatCSV, FormatHTML}

// Config controls rendering details shared by the formats.
type Config struct {
	IsTerminal bool   // true when output goes to a terminal (enables ANSI styling)
	Title      string // document title for HTML output
}

// ValidFormat reports whether format names a supported renderer.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Write renders page in the given format.
func Write(w io.Writer, format string, page view.Page, cfg Config) error {
	switch format {
	case FormatTable:
		return WriteTable(w, page, cfg)
	case FormatJSON:
		return WriteJSON(w, page)
	case FormatCSV:
		return WriteCSV(w, page)
	case FormatHTML:
		return WriteHTML(w, page, cfg)
	default:
		return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
