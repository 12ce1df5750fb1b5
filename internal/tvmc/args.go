// Package tvmc builds argument lists for, and runs, the external tvmc
// compiler driver. Builders are pure; all process I/O lives in Runner.
package tvmc

import (
	"github.com/bartekus/microdrive/internal/boards"
)

// Workflow policy for the validation pipeline. These are fixed: the whole
// point of the pipeline is parity with the validated baseline, so none of
// them is user-configurable.
const (
	outputFormat = "mlf"
	passConfig   = "tir.disable_vectorize=1"
	disabledPass = "AlterOpLayout"

	projectTypeOption = "project_type=host_driven"
)

// DefaultFillMode populates input tensors for live-hardware runs.
const DefaultFillMode = "random"

// CompileOptions selects the runtime and executor for the compile stage.
type CompileOptions struct {
	Runtime  string
	Executor string
}

// DefaultCompileOptions matches the validated workflow: CRT runtime with
// the graph executor.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{Runtime: "crt", Executor: "graph"}
}

// CompileArgs builds the argument list for compiling a model into a
// model-library-format archive at packagePath.
func CompileArgs(modelPath, targetStr, packagePath string, opts CompileOptions) []string {
	return []string{
		"compile",
		modelPath,
		"--target=" + targetStr,
		"--runtime=" + opts.Runtime,
		"--runtime-crt-system-lib", "1",
		"--executor=" + opts.Executor,
		"--executor-graph-link-params", "0",
		"--output", packagePath,
		"--output-format", outputFormat,
		"--pass-config", passConfig,
		"--disabled-pass=" + disabledPass,
	}
}

// CreateProjectArgs builds the argument list for generating a firmware
// project from a package archive. The board option is appended only for
// platform families that require one.
func CreateProjectArgs(projectPath, packagePath string, platform boards.Platform, board string) []string {
	args := []string{
		"micro", "create-project",
		projectPath,
		packagePath,
		platform.Name,
		"--project-option", projectTypeOption,
	}
	if platform.RequiresBoardOption {
		args = append(args, platform.BoardOption(board))
	}
	return args
}

// BuildArgs builds the argument list for compiling the generated project.
func BuildArgs(projectPath string, platform boards.Platform, board string) []string {
	return []string{
		"micro", "build",
		projectPath,
		platform.Name,
		"--project-option", platform.BoardOption(board),
	}
}

// FlashArgs builds the argument list for flashing the built firmware onto
// the physical board.
func FlashArgs(projectPath string, platform boards.Platform, board string) []string {
	return []string{
		"micro", "flash",
		projectPath,
		platform.Name,
		"--project-option", platform.BoardOption(board),
	}
}

// RunArgs builds the argument list for executing the model on the flashed
// device. fillMode selects how input tensors are populated.
func RunArgs(projectPath string, platform boards.Platform, board, fillMode string) []string {
	if fillMode == "" {
		fillMode = DefaultFillMode
	}
	return []string{
		"run",
		"--device", "micro",
		projectPath,
		"--project-option", platform.BoardOption(board),
		"--fill-mode", fillMode,
	}
}
