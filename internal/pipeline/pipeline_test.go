package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/microdrive/internal/boards"
	"github.com/bartekus/microdrive/internal/tvmc"
)

// fakeRunner implements tvmc.Runner, failing any invocation whose leading
// arguments match failOn.
type fakeRunner struct {
	calls  [][]string
	failOn string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, args []string, dir string) error {
	f.calls = append(f.calls, args)
	if f.failOn != "" && stageOf(args) == f.failOn {
		if f.err != nil {
			return f.err
		}
		return &tvmc.ExitError{Status: 1, Output: "tool output"}
	}
	return nil
}

// stageOf recovers the stage from an argument list the way tvmc spells it.
func stageOf(args []string) string {
	if args[0] == "micro" {
		return args[1]
	}
	if args[0] == "run" {
		return "run"
	}
	return args[0]
}

func testPlan(hardware bool) Plan {
	return Plan{
		Resolved: boards.ResolvedTarget{
			Board:    "qemu_x86",
			Target:   "c -keys=cpu -model=host",
			Platform: boards.Platform{Name: "zephyr", RequiresBoardOption: true},
		},
		ModelPath:   "/data/micro_speech.tflite",
		PackagePath: "/w/model.tar",
		ProjectPath: "/w/project",
		Hardware:    hardware,
		Compile:     tvmc.DefaultCompileOptions(),
	}
}

func TestRunBuildOnlySucceeds(t *testing.T) {
	runner := &fakeRunner{}
	p := &Pipeline{Runner: runner}

	res, err := p.Run(context.Background(), "run-1", testPlan(false))
	require.NoError(t, err)

	assert.Equal(t, StatusPass, res.Status)
	assert.Empty(t, res.FailedStage)
	require.Len(t, res.Stages, 3)
	assert.Equal(t, "compile", res.Stages[0].Stage)
	assert.Equal(t, "create-project", res.Stages[1].Stage)
	assert.Equal(t, "build", res.Stages[2].Stage)
	for _, sr := range res.Stages {
		assert.Equal(t, StatusPass, sr.Status)
	}

	// Build-only never reaches hardware stages.
	require.Len(t, runner.calls, 3)
	assert.NotEqual(t, "flash", stageOf(runner.calls[2]))
}

func TestRunHardwareSucceeds(t *testing.T) {
	runner := &fakeRunner{}
	p := &Pipeline{Runner: runner}

	res, err := p.Run(context.Background(), "run-2", testPlan(true))
	require.NoError(t, err)

	require.Len(t, res.Stages, 5)
	assert.Equal(t, "flash", res.Stages[3].Stage)
	assert.Equal(t, "run", res.Stages[4].Stage)
	assert.Equal(t, StatusPass, res.Status)
}

func TestRunFailFastOnCompile(t *testing.T) {
	runner := &fakeRunner{failOn: "compile"}
	p := &Pipeline{Runner: runner}

	res, err := p.Run(context.Background(), "run-3", testPlan(false))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "compile", stageErr.Stage)

	var exitErr *tvmc.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Status)

	// Only compile was ever invoked.
	require.Len(t, runner.calls, 1)

	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, "compile", res.FailedStage)
	require.Len(t, res.Stages, 3)
	assert.Equal(t, StatusFail, res.Stages[0].Status)
	assert.Equal(t, KindExit, res.Stages[0].Kind)
	assert.Equal(t, "tool output", res.Stages[0].Note)
	assert.Equal(t, StatusSkip, res.Stages[1].Status)
	assert.Equal(t, StatusSkip, res.Stages[2].Status)
}

func TestRunFlashFailureSkipsRun(t *testing.T) {
	runner := &fakeRunner{failOn: "flash"}
	p := &Pipeline{Runner: runner}

	res, err := p.Run(context.Background(), "run-4", testPlan(true))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "flash", stageErr.Stage)

	// compile, create-project, build, flash ran; run never did.
	require.Len(t, runner.calls, 4)
	assert.Equal(t, StatusSkip, res.Stages[4].Status)
	assert.Contains(t, res.Stages[4].Note, "flash")
}

func TestRunSkippedStageArgsNeverConstructed(t *testing.T) {
	runner := &fakeRunner{failOn: "compile"}
	p := &Pipeline{Runner: runner}

	built := map[string]bool{}
	record := func(name string, args []string) Stage {
		return Stage{Name: name, Args: func() []string {
			built[name] = true
			return args
		}}
	}
	stages := []Stage{
		record("compile", []string{"compile", "m.tflite"}),
		record("create-project", []string{"micro", "create-project"}),
		record("build", []string{"micro", "build"}),
	}

	res, err := p.execute(context.Background(), &Result{RunID: "run-5", Status: StatusPass}, stages)
	require.Error(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, map[string]bool{"compile": true}, built)
	assert.Equal(t, "compile", res.FailedStage)
}

func TestRunSpawnFailure(t *testing.T) {
	runner := &fakeRunner{
		failOn: "create-project",
		err:    &tvmc.SpawnError{Err: os.ErrNotExist},
	}
	p := &Pipeline{Runner: runner}

	res, err := p.Run(context.Background(), "run-6", testPlan(false))

	var spawnErr *tvmc.SpawnError
	require.ErrorAs(t, err, &spawnErr)

	assert.Equal(t, "create-project", res.FailedStage)
	assert.Equal(t, -1, res.Stages[1].ExitStatus)
	// Spawn failures and signal-killed exits both report -1; the kind
	// tells them apart.
	assert.Equal(t, KindSpawn, res.Stages[1].Kind)
}

func TestRunWritesReports(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore(dir)
	p := &Pipeline{Runner: &fakeRunner{failOn: "build"}, Store: store}

	_, err := p.Run(context.Background(), "run-7", testPlan(false))
	require.Error(t, err)

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-7", last.RunID)
	assert.Equal(t, StatusFail, last.Status)
	assert.Equal(t, "build", last.FailedStage)
	assert.Equal(t, "qemu_x86", last.Board)

	// Per-stage files exist for attempted stages only.
	_, err = os.Stat(filepath.Join(dir, "stages", "compile.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "stages", "flash.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestPlanStagesOrder(t *testing.T) {
	stages := testPlan(true).Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"compile", "create-project", "build", "flash", "run"}, names)
}
