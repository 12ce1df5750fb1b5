// Package workspace manages the run-scoped scratch directory holding a
// pipeline's intermediate artifacts.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is one run's scratch directory. It holds the package archive
// and the generated project, and nothing survives Remove.
type Workspace struct {
	runID string
	root  string
}

// New creates a fresh scratch directory under baseDir (os.TempDir when
// empty), named after a newly minted run ID so concurrent runs never
// collide.
func New(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	runID := uuid.NewString()
	root := filepath.Join(baseDir, "microdrive-"+runID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return &Workspace{runID: runID, root: root}, nil
}

// RunID identifies this run in logs and reports.
func (w *Workspace) RunID() string { return w.runID }

// Root is the scratch directory path.
func (w *Workspace) Root() string { return w.root }

// ModelArchive is the path the compile stage writes the package archive to.
func (w *Workspace) ModelArchive() string {
	return filepath.Join(w.root, "model.tar")
}

// ProjectDir is the path the create-project stage generates into.
func (w *Workspace) ProjectDir() string {
	return filepath.Join(w.root, "project")
}

// Remove deletes the scratch directory and everything under it. Removing
// an already-removed workspace is not an error.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.root)
}
