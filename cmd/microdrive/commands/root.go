// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands wires the microdrive CLI: a validation harness that
// drives the external tvmc compiler through the compile, create-project,
// build, flash, and run stages for a target microcontroller board.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/microdrive/cmd/microdrive/internal/clierr"
	"github.com/bartekus/microdrive/internal/boards"
)

// NewRootCmd constructs the microdrive root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("MICRODRIVE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	var logLevel string

	cmd := &cobra.Command{
		Use:           "microdrive",
		Short:         "microdrive - microTVM deployment pipeline validator",
		Long:          "microdrive validates an embedded ML deployment workflow by driving tvmc\nthrough compile, create-project, build, and optionally flash and run,\nverifying every stage for a target board.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(logLevel, cmd.ErrOrStderr()))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of microdrive",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "microdrive version %s\n", version)
		},
	})

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newBoardsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}

// newLogger builds a text slog.Logger at the requested level. Unknown
// levels fall back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// loadResolver builds a board resolver from the embedded registries, or
// from boardsFile when given. Registry problems are configuration errors.
func loadResolver(boardsFile string) (*boards.Resolver, error) {
	var (
		regs []boards.Registry
		err  error
	)
	if boardsFile != "" {
		regs, err = boards.LoadRegistries(boardsFile)
	} else {
		regs, err = boards.DefaultRegistries()
	}
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeConfig, "loading board registries", err)
	}
	return boards.NewResolver(regs), nil
}
