package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathValidator_ValidateInputDirectory(t *testing.T) {
	v := NewPathValidator(nil)

	t.Run("existing directory", func(t *testing.T) {
		assert.NoError(t, v.ValidateInputDirectory(t.TempDir()))
	})

	t.Run("missing directory", func(t *testing.T) {
		err := v.ValidateInputDirectory(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("path is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.csv")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		err := v.ValidateInputDirectory(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})
}

func TestPathValidator_ValidateInputFile(t *testing.T) {
	v := NewPathValidator(nil)

	t.Run("readable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "retro.csv")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		assert.NoError(t, v.ValidateInputFile(path))
	})

	t.Run("missing file", func(t *testing.T) {
		err := v.ValidateInputFile(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory instead of file", func(t *testing.T) {
		err := v.ValidateInputFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestPathValidator_ValidateOutputPath(t *testing.T) {
	v := NewPathValidator(nil)

	t.Run("creates missing parent", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "reports", "analysis.csv")
		require.NoError(t, v.ValidateOutputPath(out))
		info, err := os.Stat(filepath.Dir(out))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing parent", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "analysis.md")
		assert.NoError(t, v.ValidateOutputPath(out))
	})
}
