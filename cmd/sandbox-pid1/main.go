// Command sandbox-pid1 is a reference outer driver for package pid1.
//
// Namespace creation requires clone(2), which is unsafe to call mid-process
// in a multithreaded Go program unless immediately followed by exec(2). The
// Go runtime exposes this through os/exec's SysProcAttr.Cloneflags, which
// forces the same workaround faketree.go uses: re-exec the same binary with
// argv[0] carrying the next state, via docker/reexec's registration
// mechanism, until the final state calls pid1.Run and never returns.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/docker/docker/pkg/reexec"
	"github.com/google/uuid"
	"github.com/linuxsandbox/pid1/pid1"
	"github.com/spf13/pflag"
)

const reexecState = "run-pid1"

// runPid1 is the reexec'd entrypoint: it runs inside the freshly created
// namespaces as PID 1 and hands straight off to pid1.Run, which never
// returns on success.
func runPid1() {
	fs := pflag.NewFlagSet(reexecState, pflag.ExitOnError)
	flags := &driverFlags{}
	flags.register(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outerUID, err := strconv.Atoi(os.Getenv("SANDBOX_OUTER_UID"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "missing or invalid SANDBOX_OUTER_UID")
		os.Exit(1)
	}
	outerGID, err := strconv.Atoi(os.Getenv("SANDBOX_OUTER_GID"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "missing or invalid SANDBOX_OUTER_GID")
		os.Exit(1)
	}

	opt, err := flags.toOptions(outerUID, outerGID, fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	syncPipe := [2]int{syncReadFD, syncWriteFD}
	if err := pid1.Run(opt, syncPipe); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// syncReadFD and syncWriteFD are the well-known descriptor numbers the
// parent dups the sync pipe onto before starting the reexec'd child (spec
// §4.3, §6 - the outer driver owns pipe allocation, pid1 just consumes it).
const (
	syncReadFD  = 3
	syncWriteFD = 4
)

func enter() {
	args := append([]string{reexecState}, os.Args[1:]...)
	cmd := reexec.Command(args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		"SANDBOX_OUTER_UID="+strconv.Itoa(os.Getuid()),
		"SANDBOX_OUTER_GID="+strconv.Itoa(os.Getgid()),
	)

	syncRead, syncWrite, err := os.Pipe()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sync pipe:", err)
		os.Exit(1)
	}
	cmd.ExtraFiles = []*os.File{syncRead, syncWrite}

	// A fresh session id distinguishes this invocation's namespace set in
	// logs when several sandboxes run concurrently on one host.
	sessionID := uuid.New().String()

	cloneflags := syscall.CLONE_NEWNS |
		syscall.CLONE_NEWUTS |
		syscall.CLONE_NEWIPC |
		syscall.CLONE_NEWPID |
		syscall.CLONE_NEWUSER
	if peekCreateNetNS(os.Args[1:]) {
		cloneflags |= syscall.CLONE_NEWNET
	}

	// No UidMappings/GidMappings here: setting them would make the Go
	// runtime write /proc/<pid>/{uid_map,gid_map} itself right after clone,
	// which permanently consumes the new user namespace's one allowed
	// mapping write before pid1.Run ever gets a chance to write the
	// dynamically computed fake_root/fake_username/passthrough mapping in
	// setupUserNamespace. Leave the mapping unset and let the reexec'd
	// child write it from inside the namespace.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: uintptr(cloneflags),
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "session %s: starting sandbox: %v\n", sessionID, err)
		os.Exit(1)
	}
	// syncRead stays open for the life of this process: pid 1 writes its
	// handshake byte into the pipe, and that write fails with EPIPE once no
	// read end is left open.
	syncWrite.Close()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "session %s: %v\n", sessionID, err)
		os.Exit(1)
	}
}

// peekCreateNetNS parses just enough of the not-yet-reexec'd argv to learn
// whether --create-netns was requested, so enter() can decide whether to ask
// the kernel for a fresh network namespace before cloning. Parse errors are
// ignored here; runPid1 runs the real, error-reporting parse after reexec.
func peekCreateNetNS(args []string) bool {
	fs := pflag.NewFlagSet(reexecState, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := &driverFlags{}
	flags.register(fs)
	_ = fs.Parse(args)
	return flags.createNetNS
}

func main() {
	reexec.Register(reexecState, runPid1)
	if !reexec.Init() {
		enter()
	}
}
