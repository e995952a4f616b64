package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"retrocli/pkg/contracts/domain"
)

// Discovery finds retrospective CSV exports under a base directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath. Relative
// directories passed to its methods are resolved against that root.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVExports lists the CSV files in dir sorted by name. Subdirectories
// are not descended into.
func (d *Discovery) FindCSVExports(dir string) ([]string, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			paths = append(paths, filepath.Join(fullPath, entry.Name()))
		}
	}
	sort.Strings(paths)

	slog.Debug("discovered CSV exports",
		slog.String("dir", fullPath),
		slog.Int("count", len(paths)))

	return paths, nil
}

// LoadSourceFiles reads each path fully into memory, preserving the given
// order. File names are reduced to their base name so the processing log
// reads the same regardless of where the exports live.
func LoadSourceFiles(paths []string) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.SourceFile{
			Name:    filepath.Base(path),
			Content: content,
		})
	}
	return files, nil
}
