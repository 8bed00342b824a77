// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bonial-oss/vuln-browse/internal/config"
	"github.com/bonial-oss/vuln-browse/internal/console"
	"github.com/bonial-oss/vuln-browse/internal/datasource/epss"
	"github.com/bonial-oss/vuln-browse/internal/datasource/kev"
	"github.com/bonial-oss/vuln-browse/internal/engine"
	"github.com/bonial-oss/vuln-browse/internal/enricher"
	"github.com/bonial-oss/vuln-browse/internal/input"
	"github.com/bonial-oss/vuln-browse/internal/output"
	"github.com/bonial-oss/vuln-browse/internal/source"
	"github.com/bonial-oss/vuln-browse/internal/types"
	"github.com/bonial-oss/vuln-browse/internal/view"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ExitError signals a non-zero exit code with an optional message.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Exit codes.
const (
	exitPolicy       = 1
	exitUsage        = 2
	exitIncompatible = 3
)

// Options holds all CLI flag values.
type Options struct {
	ConfigPath    string
	Format        string
	Output        string
	Title         string
	Page          int
	PageSize      int
	AllPages      bool
	GroupBy       string
	Sort          string
	ID            string
	Severities    []string
	FixStates     []string
	MinEPSS       float64
	MinPercentile float64
	MinRisk       float64
	Enrich        bool
	SkipDBUpdate  bool
	CacheDir      string
	FailOnCount   int
}

// NewRootCommand creates the root cobra command with all flags.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:     "vuln-browse [flags] [report]",
		Short:   "Filter, group, sort, and page through vulnerability scan matches",
		Version: Version,
		Long: `vuln-browse reads a vulnerability match report (for example Grype JSON
output) from a file, a URL, or stdin, applies filters, grouping, and sorting,
and renders one page of the result as a table, JSON, CSV, or HTML.

Usage:
  grype alpine:latest -o json | vuln-browse --severity Critical,High
  vuln-browse --group-by artifact --sort risk:desc report.json
  vuln-browse --all-pages --format html -o report.html https://example.com/scan.json
  vuln-browse browse report.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, locationArg(args))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Format, "format", "", "Output format: table, json, csv, html (default table)")
	flags.StringVarP(&opts.Output, "output", "o", "", "Write to file instead of stdout")
	flags.StringVar(&opts.Title, "title", "", "Document title for HTML output")
	flags.IntVar(&opts.Page, "page", 1, "Page to render (clamped to the available pages)")
	flags.BoolVar(&opts.AllPages, "all-pages", false, "Render every filtered entry on a single page")
	flags.IntVar(&opts.FailOnCount, "fail-on-count", 0, "Exit code 1 if at least this many matches pass the filter")

	addSessionFlags(cmd.PersistentFlags(), opts)
	cmd.AddCommand(newBrowseCommand(opts))

	return cmd
}

// addSessionFlags registers the flags shared by every command that opens a
// browsing session.
func addSessionFlags(flags *pflag.FlagSet, opts *Options) {
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/vuln-browse/config.toml)")
	flags.IntVar(&opts.PageSize, "page-size", engine.DefaultPageSize, "Rows (or groups) per page")
	flags.StringVar(&opts.GroupBy, "group-by", "none", "Group by: none, cve, artifact")
	flags.StringVar(&opts.Sort, "sort", "", "Manual order, e.g. risk:desc,id (columns: id, severity, namespace, epss, percentile, risk, fix, artifact)")
	flags.StringVar(&opts.ID, "id", "", "Only show matches whose id contains this text (case-insensitive)")
	flags.StringSliceVar(&opts.Severities, "severity", nil, "Only show these severities")
	flags.StringSliceVar(&opts.FixStates, "fix-state", nil, "Only show these fix states")
	flags.Float64Var(&opts.MinEPSS, "min-epss", 0, "Only show matches with EPSS score >= value")
	flags.Float64Var(&opts.MinPercentile, "min-percentile", 0, "Only show matches with EPSS percentile >= value")
	flags.Float64Var(&opts.MinRisk, "min-risk", 0, "Only show matches with risk score >= value")
	flags.BoolVar(&opts.Enrich, "enrich", false, "Fill missing EPSS and risk values from the EPSS feed and CISA KEV catalog")
	flags.BoolVar(&opts.SkipDBUpdate, "skip-db-update", false, "Use cached feeds and reports without update check")
	flags.StringVar(&opts.CacheDir, "cache-dir", "", "Override cache directory")
}

func locationArg(args []string) string {
	if len(args) == 0 {
		return source.Stdin
	}
	return args[0]
}

// session is everything a command needs after configuration is resolved.
type session struct {
	cfg    *config.Config
	engine *engine.Engine
	loader *console.Loader
}

// newSession resolves configuration (flags > environment > file > defaults),
// creates the engine, and prepares the load pipeline.
func newSession(ctx context.Context, cmd *cobra.Command, opts *Options) (*session, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, &ExitError{Code: exitUsage, Message: err.Error()}
	}

	path, required := opts.ConfigPath, opts.ConfigPath != ""
	if !required {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			path = ""
		}
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, &ExitError{Code: exitUsage, Message: err.Error()}
	}
	applyFlags(cmd.Flags(), opts, cfg)

	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return nil, &ExitError{Code: exitUsage, Message: err.Error()}
	}
	e, err := engine.New(engineOpts)
	if err != nil {
		return nil, &ExitError{Code: exitUsage, Message: err.Error()}
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		if cacheDir, err = config.DefaultCacheDir(); err != nil {
			return nil, err
		}
	}

	warn := cmd.ErrOrStderr()
	loader := &console.Loader{
		Fetcher: source.New(cacheDir,
			source.WithStdin(cmd.InOrStdin()),
			source.WithWarnings(warn),
			source.WithSkipUpdate(opts.SkipDBUpdate),
		),
	}
	if opts.Enrich {
		enr := newEnricher(ctx, cacheDir, opts.SkipDBUpdate, warn)
		loader.Enrich = func(doc *types.Document) *types.Document {
			return enr.Enrich(doc).Document
		}
	}

	return &session{cfg: cfg, engine: e, loader: loader}, nil
}

// applyFlags copies explicitly set flags over the file and environment
// values.
func applyFlags(flags *pflag.FlagSet, opts *Options, cfg *config.Config) {
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = opts.CacheDir
	}
	if flags.Changed("page-size") {
		cfg.PageSize = opts.PageSize
	}
	if flags.Changed("group-by") {
		cfg.GroupBy = opts.GroupBy
	}
	if flags.Changed("sort") {
		cfg.Sort = opts.Sort
	}
	if flags.Changed("id") {
		cfg.Filter.ID = opts.ID
	}
	if flags.Changed("severity") {
		cfg.Filter.Severities = opts.Severities
	}
	if flags.Changed("fix-state") {
		cfg.Filter.FixStates = opts.FixStates
	}
	if flags.Changed("min-epss") {
		cfg.Filter.MinEPSS = opts.MinEPSS
	}
	if flags.Changed("min-percentile") {
		cfg.Filter.MinPercentile = opts.MinPercentile
	}
	if flags.Changed("min-risk") {
		cfg.Filter.MinRisk = opts.MinRisk
	}
}

// newEnricher loads the EPSS and KEV feeds. A feed that cannot be loaded
// is skipped with a warning.
func newEnricher(ctx context.Context, cacheDir string, skipUpdate bool, warn io.Writer) *enricher.Enricher {
	var epssLookup enricher.EPSSLookup
	var kevLookup enricher.KEVLookup

	epssSource := epss.NewSource(cacheDir, epss.WithWarnings(warn))
	if err := epssSource.Load(ctx, skipUpdate); err != nil {
		fmt.Fprintf(warn, "warning: EPSS enrichment disabled: %v\n", err)
	} else {
		epssLookup = epssSource
	}

	kevSource := kev.NewSource(cacheDir, kev.WithWarnings(warn))
	if err := kevSource.Load(ctx, skipUpdate); err != nil {
		fmt.Fprintf(warn, "warning: KEV enrichment disabled: %v\n", err)
	} else {
		kevLookup = kevSource
	}

	return enricher.New(epssLookup, kevLookup)
}

// loadError converts pipeline failures to exit errors.
func loadError(location string, err error) error {
	switch {
	case errors.Is(err, input.ErrDocumentParse),
		errors.Is(err, input.ErrDocumentShape),
		errors.Is(err, input.ErrMalformedRecord),
		errors.Is(err, source.ErrEmpty),
		errors.Is(err, source.ErrTooLarge):
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}
	return fmt.Errorf("loading %s: %w", location, err)
}

// run renders one page of a report.
func run(cmd *cobra.Command, opts *Options, location string) error {
	if cmd.Flags().Changed("page") && opts.AllPages {
		return &ExitError{Code: exitIncompatible, Message: "--page cannot be combined with --all-pages"}
	}
	if opts.FailOnCount < 0 {
		return &ExitError{Code: exitUsage, Message: "--fail-on-count must not be negative"}
	}

	ctx := cmd.Context()
	s, err := newSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if !output.ValidFormat(s.cfg.Format) {
		return &ExitError{
			Code:    exitUsage,
			Message: fmt.Sprintf("unsupported output format: %s", s.cfg.Format),
		}
	}

	if _, err := s.loader.Load(ctx, s.engine, location); err != nil {
		return loadError(location, err)
	}

	pv := s.engine.SetPage(opts.Page)
	if opts.AllPages && pv.TotalCount > pv.PageSize {
		if pv, err = s.engine.SetPageSize(pv.TotalCount); err != nil {
			return err
		}
	}

	// Determine output writer.
	w := cmd.OutOrStdout()
	if opts.Output != "" && opts.Output != "-" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	outCfg := output.Config{IsTerminal: output.IsOutputToTerminal(w), Title: opts.Title}
	if err := output.Write(w, s.cfg.Format, view.Project(pv), outCfg); err != nil {
		return err
	}

	// Check policy violation.
	if opts.FailOnCount > 0 && pv.FilteredCount >= opts.FailOnCount {
		return &ExitError{
			Code:    exitPolicy,
			Message: fmt.Sprintf("%d matches pass the filter (limit %d)", pv.FilteredCount, opts.FailOnCount),
		}
	}

	return nil
}
