package pid1

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// spawnChild implements SpawnChild (spec §4.10): it execs args[0] with args
// as argv, in its own process group, with the controlling terminal handed
// off to that group. Signals this process catches revert to their default
// action in the child at exec; SIGTTIN and SIGTTOU, which
// setupSignalHandlers ignores, stay ignored in the child.
//
// Go cannot safely call fork() mid-process (the runtime's goroutines and
// threads would be left in an inconsistent state in the child), so unlike
// the original this goes through os/exec, whose SysProcAttr.{Setpgid,
// Foreground} fields perform the "own process group + terminal handoff"
// dance as part of the same fork+exec transaction the kernel sees - the
// idiomatic Go equivalent of the original's post-fork, pre-exec child code.
func spawnChild(opt *Options, childPID *atomicPID) *exec.Cmd {
	// Force umask to include read and execute for everyone, to make output
	// permissions predictable. os/exec has no pre-exec hook to set this only
	// in the child, so it is set here in the parent: nothing else in this
	// process creates files past this point.
	syscall.Umask(0o022)

	cmd := exec.Command(opt.Args[0], opt.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:    true,
		Foreground: true,
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, unix.ENOTTY) {
			// No controlling terminal to hand off - tolerated (spec §7 kind
			// 5). Retry without foreground handoff.
			cmd.SysProcAttr.Foreground = false
			if err := cmd.Start(); err != nil {
				dieErr(err, "execvp(%s)", opt.Args[0])
			}
		} else {
			dieErr(err, "execvp(%s)", opt.Args[0])
		}
	}

	childPID.set(cmd.Process.Pid)
	return cmd
}

// waitForChild implements WaitForChild (spec §4.10): it reaps every
// descendant - zombies from orphan adoption as well as our own child - until
// the spawned child terminates, then translates its exit status into a
// process exit code and never returns.
func waitForChild(childPID *atomicPID) {
	target := childPID.get()
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, 0, nil)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			dieErr(err, "waitpid")
		}
		debugf("waitpid returned %d", pid)

		if pid != target {
			continue
		}

		if status.Signaled() {
			debugf("child died due to signal %d", int(status.Signal()))
			os.Exit(128 + int(status.Signal()))
		}
		debugf("child exited with code %d", status.ExitStatus())
		os.Exit(status.ExitStatus())
	}
}
