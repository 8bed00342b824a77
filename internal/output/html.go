// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/bonial-oss/vuln-browse/internal/view"
)

const defaultHTMLTitle = "Vulnerability matches"

// htmlData is the template input. All report text reaches the template as
// plain strings so html/template escapes it for its context.
type htmlData struct {
	Title   string
	Headers []string
	Page    view.Page
	Icon    func(bool) string
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.5rem; text-align: left; }
th { background: #f0f0f0; }
tr.group td { background: #e8eef7; font-weight: bold; }
tr.group.collapsed td { background: #f5f5f5; }
.info { margin-top: 0.8rem; color: #555; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table id="matches">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- if .Page.Grouped}}
{{- range .Page.Groups}}
<tr class="group{{if .Collapsed}} collapsed{{end}}" data-name="{{.Label}}"><td colspan="{{len $.Headers}}">{{call $.Icon .Collapsed}} {{.Display}}</td></tr>
{{- range .Rows}}{{template "row" .}}{{end}}
{{- end}}
{{- else}}
{{- range .Page.Rows}}{{template "row" .}}{{end}}
{{- end}}
</tbody>
</table>
<p class="info">{{.Page.Info}} &middot; page {{.Page.PageIndex}} of {{.Page.PageCount}}</p>
</body>
</html>
{{define "row"}}
<tr><td><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.ID}}</a></td><td>{{.Severity}}</td><td>{{.Namespace}}</td><td>{{.EPSS}}</td><td>{{.Percentile}}</td><td>{{.Risk}}</td><td>{{.Fix}}</td><td>{{.Artifact}}</td></tr>
{{- end}}
`))

// WriteHTML writes page as a standalone HTML document.
func WriteHTML(w io.Writer, page view.Page, cfg Config) error {
	title := cfg.Title
	if title == "" {
		title = defaultHTMLTitle
	}
	data := htmlData{
		Title:   title,
		Headers: view.Headers,
		Page:    page,
		Icon:    view.GroupIcon,
	}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering HTML output: %w", err)
	}
	return nil
}
