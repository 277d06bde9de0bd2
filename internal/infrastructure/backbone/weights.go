package backbone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"crack-classifier/internal/logger"
)

// EnsureWeights скачивает файл модели, если его ещё нет на диске
func EnsureWeights(ctx context.Context, client *http.Client, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat weights: %w", err)
	}

	if url == "" {
		return fmt.Errorf("weights %s not found and no download url configured", path)
	}
	if client == nil {
		client = http.DefaultClient
	}

	logger.Info(logger.Fields{"url": url, "path": path}, "downloading backbone weights")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download weights: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download weights: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create weights dir: %w", err)
	}

	// временный файл переименовывается только после полной записи
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write weights: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}

	logger.Info(logger.Fields{"bytes": n}, "backbone weights saved")
	return nil
}
