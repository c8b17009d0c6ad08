// Package pid1 implements the inner init of a Linux sandbox: the program
// that runs as PID 1 inside a freshly created set of user, mount, UTS, IPC,
// and PID namespaces. It finishes constructing the isolated filesystem and
// network view, spawns the target command, and then acts as init for the
// namespace - reaping zombies, forwarding signals, and translating the
// child's exit status into its own.
//
// Namespace and clone(2)/unshare(2) creation, CLI assembly, and general
// logging configuration are the responsibility of the caller; this package
// consumes a fully populated Options value and two hooks implicit in its own
// behavior (emit a debug line, die with a diagnostic - see diag.go).
package pid1
