// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package console implements the line-oriented browser behind
// "vuln-browse browse". Each command changes the engine state and the
// resulting page is rendered as a table.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aquasecurity/tml"

	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/output"
	"github.com/bonial-oss/vuln-browse/internal/source"
	"github.com/bonial-oss/vuln-browse/internal/view"
)

const prompt = "vuln-browse> "

var errUsage = errors.New("usage")

// Console drives one engine from text commands.
type Console struct {
	engine *engine.Engine
	loader *Loader
	out    io.Writer
	cfg    output.Config
}

// New creates a console writing to out. loader may be nil, in which case
// the load command is unavailable.
func New(e *engine.Engine, loader *Loader, out io.Writer, cfg output.Config) *Console {
	return &Console{engine: e, loader: loader, out: out, cfg: cfg}
}

// Run renders the current page and then executes commands read from in
// until quit, end of input, or cancellation of ctx.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	if err := c.render(c.engine.PageView()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.cfg.IsTerminal {
			_ = tml.Fprintf(c.out, "<dim>%s</dim>", prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := c.Execute(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single command line. Errors leave the engine untouched.
func (c *Console) Execute(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	command, rest, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	rest = strings.TrimSpace(rest)
	e := c.engine

	var pv engine.PageView
	switch command {
	case "quit", "exit":
		return true, nil
	case "help":
		c.help()
		return false, nil
	case "facets":
		fmt.Fprintf(c.out, "severities: %s\n", strings.Join(e.Severities(), ", "))
		fmt.Fprintf(c.out, "fix states: %s\n", strings.Join(e.FixStates(), ", "))
		return false, nil

	case "id":
		criteria := e.Criteria()
		criteria.IDSubstring = rest
		pv = e.SetFilterCriteria(criteria)
	case "severity":
		criteria := e.Criteria()
		criteria.Severities = engine.NewStringSet(splitList(rest)...)
		pv = e.SetFilterCriteria(criteria)
	case "fix":
		criteria := e.Criteria()
		criteria.FixStates = engine.NewStringSet(splitList(rest)...)
		pv = e.SetFilterCriteria(criteria)
	case "min-epss", "min-percentile", "min-risk":
		v, err := parseThreshold(rest)
		if err != nil {
			return false, err
		}
		criteria := e.Criteria()
		switch command {
		case "min-epss":
			criteria.MinEPSS = v
		case "min-percentile":
			criteria.MinPercentile = v
		default:
			criteria.MinRisk = v
		}
		pv = e.SetFilterCriteria(criteria)
	case "clear":
		pv = e.SetFilterCriteria(engine.FilterCriteria{})

	case "group":
		mode, err := engine.ParseGroupingMode(rest)
		if err != nil {
			return false, err
		}
		if pv, err = e.SetGroupingMode(mode); err != nil {
			return false, err
		}
	case "sort":
		order, err := engine.ParseSortOrder(rest)
		if err != nil {
			return false, err
		}
		if pv, err = e.SetSortOrder(order); err != nil {
			return false, err
		}

	case "page":
		n, err := parseCount(rest, "page <n>")
		if err != nil {
			return false, err
		}
		pv = e.SetPage(n)
	case "next":
		pv = e.SetPage(e.PageView().PageIndex + 1)
	case "prev":
		pv = e.SetPage(e.PageView().PageIndex - 1)
	case "size":
		n, err := parseCount(rest, "size <n>")
		if err != nil {
			return false, err
		}
		if pv, err = e.SetPageSize(n); err != nil {
			return false, err
		}

	case "toggle":
		if rest == "" {
			return false, fmt.Errorf("%w: toggle <label>", errUsage)
		}
		pv = e.ToggleGroupCollapsed(rest)
	case "collapse-all":
		pv = e.CollapseAll()
	case "expand-all":
		pv = e.ExpandAll()

	case "load":
		if c.loader == nil {
			return false, errors.New("loading is not available")
		}
		if rest == "" {
			return false, fmt.Errorf("%w: load <file|url>", errUsage)
		}
		if rest == source.Stdin {
			return false, fmt.Errorf("%w: stdin carries commands; load a file or URL", errUsage)
		}
		n, err := c.loader.Load(ctx, e, rest)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "loaded %d matches from %s\n", n, rest)
		pv = e.PageView()
	case "show":
		pv = e.PageView()

	default:
		return false, fmt.Errorf("unknown command %q (try help)", command)
	}

	return false, c.render(pv)
}

func (c *Console) render(pv engine.PageView) error {
	return output.WriteTable(c.out, view.Project(pv), c.cfg)
}

func (c *Console) help() {
	fmt.Fprint(c.out, `Commands:
  id <text>                      filter by case-insensitive id substring
  severity <a,b,...>             keep only these severities (empty clears)
  fix <a,b,...>                  keep only these fix states (empty clears)
  min-epss <n>                   minimum EPSS score
  min-percentile <n>             minimum EPSS percentile
  min-risk <n>                   minimum risk score
  clear                          remove every filter
  group none|cve|artifact        change grouping
  sort <col[:asc|desc],...>      manual order (id, severity, namespace, epss,
                                 percentile, risk, fix, artifact)
  page <n> | next | prev         navigate
  size <n>                       rows (or groups) per page
  toggle <label>                 collapse or expand one group
  collapse-all | expand-all      collapse or expand every group
  load <file|url>                replace the report
  facets                         list severities and fix states present
  show                           render the current page again
  help | quit
`)
}

// splitList splits a comma-separated argument, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseThreshold(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseCount(s, usage string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return n, nil
}
