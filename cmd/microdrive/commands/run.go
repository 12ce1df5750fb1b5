package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/microdrive/cmd/microdrive/internal/clierr"
	"github.com/bartekus/microdrive/internal/modelfetch"
	"github.com/bartekus/microdrive/internal/pipeline"
	"github.com/bartekus/microdrive/internal/tvmc"
	"github.com/bartekus/microdrive/internal/workspace"
)

func newRunCmd() *cobra.Command {
	var (
		board       string
		hardware    bool
		model       string
		tvmcCommand string
		boardsFile  string
		workDir     string
		stateDir    string
		fillMode    string
		keepScratch bool
	)

	cmd := &cobra.Command{
		Use:   "run --board <board>",
		Short: "Validate the deployment pipeline for a board",
		Long: `Run the deployment pipeline for one board: compile the model with tvmc,
generate a firmware project, and build it. With --hardware the firmware is
also flashed and executed on the attached board.

The pipeline stops at the first failing stage and reports it. Intermediate
artifacts live in a run-scoped scratch directory that is removed when the
pipeline finishes, pass or fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			resolver, err := loadResolver(boardsFile)
			if err != nil {
				return err
			}
			resolved, err := resolver.Resolve(board)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "resolving board", err)
			}
			slog.Info("board resolved",
				"board", resolved.Board,
				"platform", resolved.Platform.Name,
				"target", resolved.Target)

			modelPath, err := resolveModel(cmd, model)
			if err != nil {
				return err
			}

			ws, err := workspace.New(workDir)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "preparing workspace", err)
			}
			defer func() {
				if keepScratch {
					slog.Info("keeping scratch dir", "path", ws.Root())
					return
				}
				if rmErr := ws.Remove(); rmErr != nil {
					slog.Warn("removing scratch dir", "error", rmErr)
				}
			}()

			pipe := &pipeline.Pipeline{
				Runner: &tvmc.ExecRunner{
					Command: splitCommand(tvmcCommand),
					Stdout:  cmd.OutOrStdout(),
					Stderr:  cmd.ErrOrStderr(),
				},
				Store: pipeline.NewReportStore(stateDir),
			}

			result, err := pipe.Run(ctx, ws.RunID(), pipeline.Plan{
				Resolved:    resolved,
				ModelPath:   modelPath,
				PackagePath: ws.ModelArchive(),
				ProjectPath: ws.ProjectDir(),
				Hardware:    hardware,
				FillMode:    fillMode,
				Compile:     tvmc.DefaultCompileOptions(),
			})
			if err != nil {
				return stageExitError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "PASS: %s (%s) — %d stage(s)\n",
				result.Board, result.Platform, len(result.Stages))
			return nil
		},
	}

	cmd.Flags().StringVar(&board, "board", "", "target board identifier (required)")
	cmd.Flags().BoolVar(&hardware, "hardware", false, "flash and run on attached hardware after building")
	cmd.Flags().StringVar(&model, "model", "", "model file path or URL (default: the micro_speech test model)")
	cmd.Flags().StringVar(&tvmcCommand, "tvmc", "", `tvmc invocation, e.g. "python3 -m tvm.driver.tvmc" (default "tvmc")`)
	cmd.Flags().StringVar(&boardsFile, "boards", "", "board registry YAML replacing the built-in registries")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "parent directory for the scratch dir (default: system temp)")
	cmd.Flags().StringVar(&stateDir, "state-dir", ".microdrive/run", "directory for run reports")
	cmd.Flags().StringVar(&fillMode, "fill-mode", tvmc.DefaultFillMode, "input tensor fill mode for the run stage")
	cmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "keep the scratch directory for debugging")
	_ = cmd.MarkFlagRequired("board")

	return cmd
}

// resolveModel turns the --model flag into a local file path. An empty flag
// fetches the default test model; a URL is fetched through the cache; a
// plain path must exist.
func resolveModel(cmd *cobra.Command, model string) (string, error) {
	fetcher := &modelfetch.Fetcher{}
	switch {
	case model == "":
		p, err := fetcher.Fetch(cmd.Context(), modelfetch.DefaultModelURL, modelfetch.DefaultModelFile)
		if err != nil {
			return "", clierr.Wrap(clierr.CodeInternal, "fetching default model", err)
		}
		return p, nil
	case strings.HasPrefix(model, "http://"), strings.HasPrefix(model, "https://"):
		p, err := fetcher.Fetch(cmd.Context(), model, path.Base(model))
		if err != nil {
			return "", clierr.Wrap(clierr.CodeInternal, "fetching model", err)
		}
		return p, nil
	default:
		if _, err := os.Stat(model); err != nil {
			return "", clierr.Wrap(clierr.CodeConfig, "model file", err)
		}
		return model, nil
	}
}

// stageExitError maps a pipeline failure onto the exit-code contract:
// non-zero tool exits and spawn failures get distinct codes.
func stageExitError(err error) error {
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		return clierr.Wrap(clierr.CodeInternal, "pipeline", err)
	}

	var spawnErr *tvmc.SpawnError
	if errors.As(err, &spawnErr) {
		return clierr.Wrap(clierr.CodeSpawn, fmt.Sprintf("pipeline failed at stage %q", stageErr.Stage), err)
	}
	return clierr.Wrap(clierr.CodeStage, fmt.Sprintf("pipeline failed at stage %q", stageErr.Stage), err)
}

// splitCommand splits a tvmc override like "python3 -m tvm.driver.tvmc"
// into an argument vector. Empty input selects the default command.
func splitCommand(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
