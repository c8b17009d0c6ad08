package pid1

import "golang.org/x/sys/unix"

// mountProc mounts a fresh procfs at <pwd>/proc (spec §4.6). This is what
// makes PID 1 see only processes in its own PID namespace - the proc mount
// it inherited still refers to the parent namespace.
func mountProc() {
	EnsureDirectory("proc")
	if err := unix.Mount("proc", "proc", "proc", unix.MS_NODEV|unix.MS_NOEXEC|unix.MS_NOSUID, ""); err != nil {
		dieErr(err, "mount(proc, proc, proc, MS_NODEV|MS_NOEXEC|MS_NOSUID, nil)")
	}
}
