package pid1

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// fatalSignals get the default disposition - they should kill PID 1 outright
// rather than being forwarded (spec §4.9).
var fatalSignals = map[os.Signal]bool{
	unix.SIGABRT: true,
	unix.SIGBUS:  true,
	unix.SIGFPE:  true,
	unix.SIGILL:  true,
	unix.SIGSEGV: true,
	unix.SIGSYS:  true,
	unix.SIGTRAP: true,
}

// untouchable signals cannot be given a disposition at all.
var untouchableSignals = map[os.Signal]bool{
	unix.SIGKILL: true,
	unix.SIGSTOP: true,
}

// ignoredSignals are explicitly ignored because the child owns the terminal
// (spec §4.9).
var ignoredSignals = map[os.Signal]bool{
	unix.SIGTTIN: true,
	unix.SIGTTOU: true,
}

// restoreDefaultHandlers undoes every earlier signal.Notify and signal.Ignore
// in this process, returning each of those signals to the behaviour it had
// at process start (spec §4.9, RestoreSignalHandlersAndMask). It does not
// change the signal mask, and signals this process never touched keep
// whatever disposition they already had.
func restoreDefaultHandlers() {
	signal.Reset()
}

// setupSignalHandlers installs the per-signal dispositions of spec §4.9: the
// synchronous-fatal class and SIGCHLD keep their default handler, SIGKILL and
// SIGSTOP are left untouched, SIGTTIN/SIGTTOU are ignored, and every other
// signal is forwarded to the child's process group once childPID has been
// set by the supervisor.
//
// This starts exactly one goroutine for the lifetime of the process - the
// forwarding loop below - mirroring the one unavoidable background task
// spec §5 calls out.
func setupSignalHandlers(childPID *atomicPID) {
	restoreDefaultHandlers()

	c := make(chan os.Signal, 64)
	var toForward []os.Signal
	for i := 1; i < 65; i++ {
		s := unix.Signal(i)
		if fatalSignals[s] || s == unix.SIGCHLD || untouchableSignals[s] {
			continue
		}
		if ignoredSignals[s] {
			signal.Ignore(s)
			continue
		}
		toForward = append(toForward, s)
	}
	signal.Notify(c, toForward...)

	go forwardSignals(c, childPID)
}

// forwardSignals relays every received signal to the negated child pid, i.e.
// to the child's entire process group (spec §4.9's "forwarding uses the
// negated child pid"). It runs until the process exits; nothing joins it.
func forwardSignals(c chan os.Signal, childPID *atomicPID) {
	for s := range c {
		if !childPID.isSet() {
			continue
		}
		sig, ok := s.(unix.Signal)
		if !ok {
			continue
		}
		debugf("forwardSignal(%d)", int(sig))
		_ = unix.Kill(-childPID.get(), sig)
	}
}
