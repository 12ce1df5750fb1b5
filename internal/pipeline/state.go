package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReportStore persists pipeline run reports.
type ReportStore struct {
	baseDir string
}

// NewReportStore creates a store at the given base directory
// (e.g. .microdrive/run).
func NewReportStore(baseDir string) *ReportStore {
	return &ReportStore{baseDir: baseDir}
}

func (s *ReportStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

// ReadLastRun loads the last run summary. A missing file is clean state
// and returns (nil, nil).
func (s *ReportStore) ReadLastRun() (*Result, error) {
	f, err := os.Open(s.lastRunPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last run file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var res Result
	if err := json.NewDecoder(f).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &res, nil
}

// WriteLastRun saves the run summary.
func (s *ReportStore) WriteLastRun(res Result) error {
	return s.writeJSON(s.lastRunPath(), res)
}

// WriteStageResult saves a single stage's result.
func (s *ReportStore) WriteStageResult(res StageResult) error {
	return s.writeJSON(filepath.Join(s.baseDir, "stages", res.Stage+".json"), res)
}

// Reset clears the state directory.
func (s *ReportStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

func (s *ReportStore) writeJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
