// Package validation checks filesystem paths before the CLI starts
// reading exports or writing artifacts, so failures surface as one clear
// message instead of a mid-run error.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PathValidator validates input and output paths for aggregation runs.
type PathValidator struct {
	logger *slog.Logger
}

// NewPathValidator creates a path validator.
func NewPathValidator(logger *slog.Logger) *PathValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and is a directory. An
// empty directory is not an error here; the aggregation reports that case
// itself.
func (v *PathValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateInputFile checks that path exists, is a regular file and can be
// opened for reading.
func (v *PathValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()
	return nil
}

// ValidateOutputPath ensures the parent directory of path exists, creating
// it if necessary, and verifies it is writable.
func (v *PathValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}
