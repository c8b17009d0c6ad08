package pid1

import "golang.org/x/sys/unix"

// Run sequences the entire pipeline (spec §4.11, Entrypoint). It must be
// called exactly once, as the process that will become PID 1 of a freshly
// created set of user, mount, UTS, IPC, and PID namespaces - the outer
// driver is responsible for having created those namespaces (via clone/
// unshare) before invoking Run.
//
// syncPipe is the (read, write) fd pair the outer driver allocated so this
// process can confirm the driver is still alive (spec §4.3, §6).
//
// Run only returns for the narrow class of errors that occur before any OS
// state has been altered (currently just Options.Validate failing). Every
// other failure terminates the process via the diagnostic hook; on success,
// Run never returns at all - it exits with the child's translated status.
func Run(opt *Options, syncPipe [2]int) error {
	if err := opt.Validate(); err != nil {
		return err
	}

	if unix.Getpid() != 1 {
		die("Using PID namespaces, but we are not PID 1")
	}

	setupSelfDestruction(syncPipe)
	setupMountNamespace()
	setupUserNamespace(opt)
	if opt.FakeHostname {
		setupUtsNamespace()
	}

	st := setupFilesystem(opt)
	mountProc()
	setupDevices(st)
	makeFilesystemMostlyReadOnly(st)
	setupNetworking(opt)
	enterSandbox(st)

	setupSignalHandlers(&st.childPID)
	spawnChild(opt, &st.childPID)
	waitForChild(&st.childPID)

	// waitForChild never returns on the success path; reaching here means
	// something escaped its loop without exiting, which is itself fatal.
	die("wait_for_child returned unexpectedly")
	return nil
}
