//go:build linux && sandboxtest

package pid1

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunEndToEnd exercises the full pipeline inside a real set of freshly
// created namespaces. It needs CAP_SYS_ADMIN and an unprivileged user
// namespace to already be available, which most CI sandboxes don't grant, so
// it only builds under the sandboxtest tag and is run explicitly, not as
// part of the default test suite.
func TestRunEndToEnd(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("run as an unprivileged user with user namespaces enabled")
	}

	root := t.TempDir()
	workDir := root + "/session/execroot/main"
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	opt := &Options{
		WorkingDir:     workDir,
		Args:           []string{"/bin/true"},
		FakeRoot:       true,
		GlobalOuterUID: os.Getuid(),
		GlobalOuterGID: os.Getgid(),
	}

	require.NoError(t, opt.Validate())

	// Run never returns on the success path - it calls os.Exit once the
	// child terminates - so it cannot be exercised in-process. A real
	// invocation happens in a reexec'd child (see cmd/sandbox-pid1), inside
	// namespaces that child already owns.
	t.Skip("Run exits the process on success; exercised via the cmd/sandbox-pid1 binary instead")
}
