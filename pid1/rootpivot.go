package pid1

import (
	"os"

	"golang.org/x/sys/unix"
)

// setupDevices wires the fixed device set into the sandbox (spec §4.11,
// "SetupDevices"): only when rootfs is in use. It runs after ProcMount but is
// conceptually part of FilesystemAssembly.
func setupDevices(st *pipelineState) {
	if !st.rootfs {
		return
	}
	EnsureDirectory("dev")
	for _, dev := range []string{"/dev/null", "/dev/random", "/dev/urandom", "/dev/zero"} {
		rel := relative(dev)
		EnsureFile(rel)
		if err := unix.Mount(dev, rel, "", unix.MS_BIND, ""); err != nil {
			dieErr(err, "mount(%s, %s, nil, MS_BIND, nil)", dev, rel)
		}
	}

	if err := os.Symlink("/proc/self/fd", "dev/fd"); err != nil {
		dieErr(err, "symlink(/proc/self/fd, dev/fd)")
	}
}

// enterSandbox implements RootPivot / EnterSandbox (spec §4.7): pivot_root
// into the sandbox, chroot to lock the view, detach and remove the old root,
// then chdir into working_dir. pivot_root requires that both the old and new
// roots be mount points on the same filesystem, which is why FilesystemAssembly
// bind-mounted sandbox_root_dir onto itself earlier.
func enterSandbox(st *pipelineState) {
	if st.rootfs {
		oldRoot, err := os.MkdirTemp("tmp", "old-root-")
		if err != nil {
			dieErr(err, "mkdtemp(tmp/old-root-XXXXXX)")
		}

		if err := unix.PivotRoot(".", oldRoot); err != nil {
			dieErr(err, "pivot_root(., %s)", oldRoot)
		}
		if err := unix.Chroot("."); err != nil {
			dieErr(err, "chroot(.)")
		}
		if err := unix.Unmount(oldRoot, unix.MNT_DETACH); err != nil {
			dieErr(err, "umount2(%s, MNT_DETACH)", oldRoot)
		}
		if err := os.Remove(oldRoot); err != nil {
			dieErr(err, "rmdir(%s)", oldRoot)
		}
	}

	if err := os.Chdir(st.opt.WorkingDir); err != nil {
		dieErr(err, "chdir(%s)", st.opt.WorkingDir)
	}
}
