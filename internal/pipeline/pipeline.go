// Package pipeline sequences the tvmc stages that take a model from source
// artifact to (optionally) a live run on hardware, with fail-fast
// semantics: a stage failure aborts everything after it.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bartekus/microdrive/internal/boards"
	"github.com/bartekus/microdrive/internal/tvmc"
)

// Plan holds everything needed to derive the stage sequence for one run.
type Plan struct {
	Resolved    boards.ResolvedTarget
	ModelPath   string
	PackagePath string
	ProjectPath string

	// Hardware enables the flash and run stages, which need a physical
	// board attached.
	Hardware bool
	FillMode string
	Compile  tvmc.CompileOptions
}

// Stages returns the ordered stage list for the plan: compile,
// create-project, build, and with Hardware also flash and run.
func (p Plan) Stages() []Stage {
	res := p.Resolved
	stages := []Stage{
		{Name: "compile", Args: func() []string {
			return tvmc.CompileArgs(p.ModelPath, res.Target, p.PackagePath, p.Compile)
		}},
		{Name: "create-project", Args: func() []string {
			return tvmc.CreateProjectArgs(p.ProjectPath, p.PackagePath, res.Platform, res.Board)
		}},
		{Name: "build", Args: func() []string {
			return tvmc.BuildArgs(p.ProjectPath, res.Platform, res.Board)
		}},
	}
	if p.Hardware {
		stages = append(stages,
			Stage{Name: "flash", Args: func() []string {
				return tvmc.FlashArgs(p.ProjectPath, res.Platform, res.Board)
			}},
			Stage{Name: "run", Args: func() []string {
				return tvmc.RunArgs(p.ProjectPath, res.Platform, res.Board, p.FillMode)
			}},
		)
	}
	return stages
}

// Pipeline executes plans against a tvmc runner.
type Pipeline struct {
	Runner tvmc.Runner
	// Store, when set, receives per-stage results and the run summary.
	Store *ReportStore
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Run executes the plan's stages in order, stopping at the first failure.
// The returned Result always covers every planned stage; stages after a
// failure are recorded as skipped without their arguments ever being
// constructed. On failure the error is a *StageError wrapping the runner's
// *tvmc.ExitError or *tvmc.SpawnError.
func (p *Pipeline) Run(ctx context.Context, runID string, plan Plan) (*Result, error) {
	result := &Result{
		RunID:    runID,
		Board:    plan.Resolved.Board,
		Platform: plan.Resolved.Platform.Name,
		Target:   plan.Resolved.Target,
		Status:   StatusPass,
	}
	return p.execute(ctx, result, plan.Stages())
}

func (p *Pipeline) execute(ctx context.Context, result *Result, stages []Stage) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var failure *StageError
	for _, stage := range stages {
		if failure != nil {
			result.Stages = append(result.Stages, StageResult{
				Stage:  stage.Name,
				Status: StatusSkip,
				Note:   "not attempted: stage " + failure.Stage + " failed",
			})
			continue
		}

		logger.Info("stage starting", "stage", stage.Name, "board", result.Board)
		sr := p.runStage(ctx, stage)
		result.Stages = append(result.Stages, sr)

		if p.Store != nil {
			if err := p.Store.WriteStageResult(sr); err != nil {
				return result, err
			}
		}

		if sr.Status == StatusFail {
			failure = &StageError{Stage: stage.Name, Err: sr.err}
			result.Status = StatusFail
			result.FailedStage = stage.Name
			logger.Error("stage failed", "stage", stage.Name, "exit_status", sr.ExitStatus)
			continue
		}
		logger.Info("stage passed", "stage", stage.Name)
	}

	if p.Store != nil {
		if err := p.Store.WriteLastRun(*result); err != nil {
			return result, err
		}
	}

	if failure != nil {
		return result, failure
	}
	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage) StageResult {
	err := p.Runner.Run(ctx, stage.Args(), "")
	if err == nil {
		return StageResult{Stage: stage.Name, Status: StatusPass}
	}

	sr := StageResult{Stage: stage.Name, Status: StatusFail, err: err}
	var exitErr *tvmc.ExitError
	var spawnErr *tvmc.SpawnError
	switch {
	case errors.As(err, &exitErr):
		sr.Kind = KindExit
		sr.ExitStatus = exitErr.Status
		sr.Note = exitErr.Output
	case errors.As(err, &spawnErr):
		sr.Kind = KindSpawn
		sr.ExitStatus = -1
		sr.Note = spawnErr.Error()
	default:
		sr.Kind = KindError
		sr.ExitStatus = -1
		sr.Note = err.Error()
	}
	return sr
}
