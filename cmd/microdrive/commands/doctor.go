package commands

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/bartekus/microdrive/cmd/microdrive/internal/clierr"
	"github.com/bartekus/microdrive/internal/tvmc"
)

func newDoctorCmd() *cobra.Command {
	var tvmcCommand string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify the tvmc toolchain is reachable",
		Long: `Check that the tvmc executable can be found and that its micro
sub-command answers. Run this before a pipeline run to separate toolchain
installation problems from pipeline failures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &tvmc.ExecRunner{Command: splitCommand(tvmcCommand)}

			if _, err := exec.LookPath(runner.Executable()); err != nil {
				return clierr.Wrap(clierr.CodeSpawn,
					fmt.Sprintf("%s not found in PATH", runner.Executable()), err)
			}

			if err := runner.Run(cmd.Context(), []string{"micro", "-h"}, ""); err != nil {
				var exitErr *tvmc.ExitError
				if errors.As(err, &exitErr) {
					return clierr.Wrap(clierr.CodeStage, "tvmc micro probe", err)
				}
				return clierr.Wrap(clierr.CodeSpawn, "tvmc micro probe", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "tvmc OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&tvmcCommand, "tvmc", "", `tvmc invocation to probe (default "tvmc")`)

	return cmd
}
