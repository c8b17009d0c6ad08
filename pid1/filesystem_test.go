package pid1

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSandboxRootDir(t *testing.T) {
	got := computeSandboxRootDir("/tmp/sandbox-session/execroot/main")
	assert.Equal(t, "/tmp/sandbox-session/root", got)
}

func TestRelativeStripsLeadingSlash(t *testing.T) {
	assert.Equal(t, "usr/bin", relative("/usr/bin"))
	assert.Equal(t, "", relative("/"))
}

func TestTmpfsOverlapsSandboxRoot(t *testing.T) {
	// The exact example from the original's comment: tmpfs_dir is an
	// ancestor of sandbox_root_dir, so mounting a fresh tmpfs over it would
	// destroy the sandbox root's own bind-self-mount.
	assert.True(t, tmpfsOverlapsSandboxRoot("/dev/shm/bazel-sandbox/1234/root", "/dev/shm"))
	assert.False(t, tmpfsOverlapsSandboxRoot("/dev/shm", "/dev/shm/bazel-sandbox/1234/root"))
	assert.False(t, tmpfsOverlapsSandboxRoot("/sandbox/root", "/tmp"))
	assert.False(t, tmpfsOverlapsSandboxRoot("", "/dev/shm"))
}

// TestBindMountEtcHostsCopiesRatherThanLinks verifies the /etc/hosts special
// case (spec §4.5, scenario 4 of spec.md §8): the destination is a real,
// independent copy of the source, not a bind mount or hardlink - mutating one
// afterward must not affect the other.
func TestBindMountEtcHostsCopiesRatherThanLinks(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "hosts")
	require.NoError(t, os.WriteFile(source, []byte("127.0.0.1 localhost\n"), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(cwd)) }()
	require.NoError(t, os.Chdir(root))

	// bindMount assumes "etc" already exists, same as it would once the
	// sandbox rootfs is laid down - it never creates the parent for the
	// /etc/hosts special case, only the destination file itself.
	require.NoError(t, os.Mkdir("etc", 0o755))

	st := &pipelineState{opt: &Options{}}
	st.bindMount(source, "/etc/hosts")

	dest := filepath.Join(root, "etc", "hosts")
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(got))

	// Mutate the destination and confirm the source is untouched - proof
	// this was a byte copy, not a link or mount sharing the same inode.
	require.NoError(t, os.WriteFile(dest, []byte("0.0.0.0 blocked\n"), 0o644))
	sourceContent, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(sourceContent))
}
