// Package modelfetch supplies the trained model artifact, downloading it
// once and caching it locally.
package modelfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultModelURL is the micro_speech audio model used by the validation
// workflow.
const DefaultModelURL = "https://github.com/tensorflow/tflite-micro/raw/main/tensorflow/lite/micro/examples/micro_speech/micro_speech.tflite"

// DefaultModelFile is the cache filename for DefaultModelURL.
const DefaultModelFile = "micro_speech.tflite"

// Fetcher downloads model artifacts into a cache directory.
type Fetcher struct {
	// Client defaults to an http.Client with a 60s timeout.
	Client *http.Client
	// CacheDir defaults to <user cache dir>/microdrive/data.
	CacheDir string
}

// Fetch returns a local path for the artifact at url, downloading it only
// when the cache misses. The download is written to a temp file and
// renamed, so a partial download never poisons the cache.
func (f *Fetcher) Fetch(ctx context.Context, url, filename string) (string, error) {
	cacheDir, err := f.cacheDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating model cache: %w", err)
	}

	path := filepath.Join(cacheDir, filename)
	if _, err := os.Stat(path); err == nil {
		slog.Debug("model cache hit", "path", path)
		return path, nil
	}

	slog.Info("downloading model", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building model request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading model: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading model: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(cacheDir, filename+".download-*")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing download file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("caching model: %w", err)
	}
	return path, nil
}

func (f *Fetcher) cacheDir() (string, error) {
	if f.CacheDir != "" {
		return f.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	return filepath.Join(base, "microdrive", "data"), nil
}
