package pid1

import "fmt"

// Options is the read-only configuration consumed by every component of the
// pipeline (spec §3, OptionsView). It is fully populated by the outer driver
// before Run is ever called; nothing in this package mutates it.
type Options struct {
	// WorkingDir is the absolute path where the child will be executed. It
	// must exist, or be creatable, beneath the eventual sandbox root.
	WorkingDir string

	// BindMountSources/BindMountTargets are parallel, equal-length ordered
	// sequences: BindMountSources[i] is bind-mounted at BindMountTargets[i]
	// inside the sandbox.
	BindMountSources []string
	BindMountTargets []string

	// TmpfsDirs is the ordered set of absolute in-sandbox paths to cover
	// with a fresh tmpfs.
	TmpfsDirs []string

	// WritableFiles is the set of absolute paths that must remain writable
	// once the rest of the tree is remounted read-only.
	WritableFiles []string

	FakeRoot     bool
	FakeUsername bool
	FakeHostname bool
	CreateNetNS  bool

	// Args is the non-empty argv for the child; Args[0] is the program.
	Args []string

	// GlobalOuterUID/GID are the unprivileged caller's identifiers,
	// captured before entering the user namespace.
	GlobalOuterUID int
	GlobalOuterGID int
}

// Validate checks the invariants spec §3 requires of an Options value before
// any component consumes it. It is the one place this package returns a
// plain error instead of calling die(): the failure happens before any OS
// state has been touched, so there is something meaningful to report back to
// a caller (e.g. a test) without killing the process.
func (o *Options) Validate() error {
	if len(o.BindMountSources) != len(o.BindMountTargets) {
		return fmt.Errorf("bind mount sources/targets length mismatch: %d != %d",
			len(o.BindMountSources), len(o.BindMountTargets))
	}
	if len(o.Args) == 0 {
		return fmt.Errorf("args must not be empty")
	}
	if o.WorkingDir == "" {
		return fmt.Errorf("working dir must not be empty")
	}
	return nil
}

// hasRootfsLayout implements the "contains /usr among bind-mount targets"
// heuristic from spec §4.5/§9. It is deliberately fragile - see
// DESIGN.md and the Open Questions in spec §9 for why it is kept as-is.
func (o *Options) hasRootfsLayout() bool {
	for _, t := range o.BindMountTargets {
		if t == "/usr" {
			return true
		}
	}
	return false
}
