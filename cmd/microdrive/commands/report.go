package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/microdrive/internal/pipeline"
)

func newReportCmd() *cobra.Command {
	var (
		stateDir string
		asJSON   bool
		reset    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the last pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := pipeline.NewReportStore(stateDir)

			if reset {
				if err := store.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Run state cleared.")
				return nil
			}

			last, err := store.ReadLastRun()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(last)
			}

			if last == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No run state found.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run:      %s\n", last.RunID)
			fmt.Fprintf(cmd.OutOrStdout(), "Board:    %s (%s)\n", last.Board, last.Platform)
			fmt.Fprintf(cmd.OutOrStdout(), "Status:   %s\n", last.Status)
			if last.FailedStage != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed:   %s\n", last.FailedStage)
			}
			for _, sr := range last.Stages {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", sr.Stage, sr.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stateDir, "state-dir", ".microdrive/run", "directory holding run reports")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear stored run state instead of printing it")

	return cmd
}
