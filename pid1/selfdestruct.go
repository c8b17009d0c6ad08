package pid1

import "golang.org/x/sys/unix"

// setupSelfDestruction arranges that this process dies if the outer driver
// dies (spec §4.3). It moves PID 1 into its own process group - otherwise
// the process group would still refer to the outer PID namespace, and a
// later `kill(0, sig)` could accidentally reach the outer parent - then
// confirms the parent is still alive via the three-step sync-pipe handshake
// the driver set up before cloning us.
//
// syncPipe is a (readFD, writeFD) pair whose read end the outer driver also
// holds open.
func setupSelfDestruction(syncPipe [2]int) {
	if err := unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0); err != nil {
		dieErr(err, "prctl(PR_SET_PDEATHSIG)")
	}

	if err := unix.Setpgid(0, 0); err != nil {
		dieErr(err, "setpgid")
	}

	if err := unix.Close(syncPipe[0]); err != nil {
		dieErr(err, "close(sync_pipe[0])")
	}
	if _, err := unix.Write(syncPipe[1], []byte{0}); err != nil {
		dieErr(err, "write(sync_pipe[1])")
	}
	if err := unix.Close(syncPipe[1]); err != nil {
		dieErr(err, "close(sync_pipe[1])")
	}
}
