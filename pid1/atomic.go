package pid1

import "sync/atomic"

// atomicPID is the one piece of state shared between the main goroutine and
// the async-signal-handling goroutine: the spawned child's pid, set once by
// the supervisor and read by every subsequent signal delivery (spec §9,
// "expose only the child pid to it, as an atomic cell").
type atomicPID struct {
	v atomic.Int32
}

func (a *atomicPID) set(pid int) { a.v.Store(int32(pid)) }
func (a *atomicPID) get() int    { return int(a.v.Load()) }
func (a *atomicPID) isSet() bool { return a.v.Load() > 0 }
