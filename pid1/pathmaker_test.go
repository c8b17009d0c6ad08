package pid1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectoryCreatesParents(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c")

	EnsureDirectory(target)

	assert.True(t, IsDirectory(target))
}

func TestEnsureDirectoryIdempotent(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "again")

	EnsureDirectory(target)
	require.NotPanics(t, func() { EnsureDirectory(target) })
}

func TestEnsureFileCreatesEmptyFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "nested", "file.txt")

	EnsureFile(target)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Zero(t, info.Size())
}

func TestCopyFileStreamsContent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	require.NoError(t, os.WriteFile(src, []byte("127.0.0.1 localhost\n"), 0o644))

	CopyFile(src, dst)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(got))
}
