package pid1

import (
	"fmt"

	"github.com/golang/glog"
)

// debugf emits a debug line. It is gated behind verbosity level 1, the same
// convention the rest of the corpus uses for "print but don't spam by
// default" tracing.
func debugf(format string, args ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

// die prints a diagnostic including the failing operation and terminates the
// process. There is no recovery path past this call: setup errors are not
// partially recoverable (spec §7).
func die(format string, args ...interface{}) {
	glog.ExitDepth(1, fmt.Sprintf(format, args...))
}

// dieErr is die() with a trailing ": <err>", for the common case of wrapping
// a failed syscall.
func dieErr(err error, format string, args ...interface{}) {
	die(format+": %v", append(args, err)...)
}
