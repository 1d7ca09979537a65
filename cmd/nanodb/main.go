// Command nanodb is the line-oriented shell for the single-table B+tree
// engine: open a database file, then accept insert/select statements and
// '.' meta-commands until '.exit' or EOF.
package main

import (
	"errors"
	"fmt"
	"os"

	"nanodb/internal/repl"
	"nanodb/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, repl.ErrReported) {
			fmt.Fprintf(os.Stderr, "[ERROR]%s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "nanodb <database-file>",
		Short: "A tiny single-file B+tree relational database shell.",
		Args:  cobra.ExactArgs(1),
		// session.Run already writes any fatal error as an [ERROR]-prefixed
		// line before returning it; cobra's default error/usage printing
		// would both duplicate that line and break the [ERROR] prefix
		// contract (spec.md §7), so it's silenced here.
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
				defer logger.Sync() //nolint:errcheck
			}

			table, err := storage.OpenTable(args[0], logger)
			if err != nil {
				return err
			}

			session := repl.New(table, os.Stdin, os.Stdout, os.Stderr, logger)
			return session.Run()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit structured internal diagnostics to stderr")
	return cmd
}
