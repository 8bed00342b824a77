// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bonial-oss/vuln-browse/internal/console"
	"github.com/bonial-oss/vuln-browse/internal/output"
	"github.com/bonial-oss/vuln-browse/internal/source"
)

func newBrowseCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [report]",
		Short: "Browse a report interactively with line commands",
		Long: `browse opens a session over a report and reads commands from stdin, for
example "severity Critical,High", "group artifact", "next", or "toggle <label>".
Type "help" inside the session for the full list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) == 1 {
				location = args[0]
			}
			if location == source.Stdin {
				return &ExitError{
					Code:    exitIncompatible,
					Message: "browse reads commands from stdin; pass the report as a file or URL",
				}
			}

			ctx := cmd.Context()
			s, err := newSession(ctx, cmd, opts)
			if err != nil {
				return err
			}
			if location != "" {
				if _, err := s.loader.Load(ctx, s.engine, location); err != nil {
					return loadError(location, err)
				}
			}

			out := cmd.OutOrStdout()
			c := console.New(s.engine, s.loader, out, output.Config{IsTerminal: output.IsOutputToTerminal(out)})
			return c.Run(ctx, cmd.InOrStdin())
		},
	}
}
