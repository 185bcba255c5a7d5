package hf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const checkpointPrefix = "checkpoint-"

// ResolveModelDir returns dir when it holds a model config. Otherwise it picks
// the checkpoint-N subdirectory with the highest N, as left by fine-tuning runs.
func ResolveModelDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("model directory is not configured")
	}
	if fileExists(filepath.Join(dir, "config.json")) {
		return dir, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read model directory: %w", err)
	}

	best, bestStep := "", -1
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), checkpointPrefix) {
			continue
		}
		step, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), checkpointPrefix))
		if err != nil {
			continue
		}
		if step > bestStep {
			best, bestStep = entry.Name(), step
		}
	}
	if best == "" {
		return "", fmt.Errorf("no model found in %s", dir)
	}
	return filepath.Join(dir, best), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
