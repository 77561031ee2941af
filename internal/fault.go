package internal

import (
	"fmt"
	"os"
)

// FaultKind classifies programmer faults. Faults are not exceptions: they
// indicate a broken ownership or protocol contract in the caller, and the
// runtime does not attempt to continue past them.
type FaultKind uint8

// Fault kinds.
const (
	// FaultOverRelease is releasing an object whose retain count is already
	// zero, including releasing an object that has been freed.
	FaultOverRelease FaultKind = iota + 1
	// FaultDestroyLive is destroying an object whose retain count is
	// positive.
	FaultDestroyLive
	// FaultFreed is sending to or mutating an object after it was freed.
	FaultFreed
	// FaultUnhandled is raising an exception with no perform frame active.
	FaultUnhandled
	// FaultNotUnderstood is sending a selector that neither the receiver nor
	// its forward method handles.
	FaultNotUnderstood
	// FaultFrameOrder is popping a collect or perform frame out of order.
	FaultFrameOrder
)

var faultNames = [...]string{
	FaultOverRelease:   "over-release",
	FaultDestroyLive:   "destroy of live object",
	FaultFreed:         "use of freed object",
	FaultUnhandled:     "unhandled exception",
	FaultNotUnderstood: "message not understood",
	FaultFrameOrder:    "frame order violation",
}

func (k FaultKind) String() string {
	if int(k) < len(faultNames) && faultNames[k] != "" {
		return faultNames[k]
	}
	return fmt.Sprintf("FaultKind(%d)", k)
}

// Fault is the panic value used when a fault occurs under FaultPanic.
type Fault struct {
	// Kind is the class of fault.
	Kind FaultKind
	// Selector is the selector involved, if any.
	Selector string
	// Value is the handle rendering of the offending value.
	Value string
	// Message describes the fault.
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("metaobj: %v: %s", f.Kind, f.Message)
}

// FaultMode selects what the runtime does after reporting a fault.
type FaultMode string

// Fault modes.
const (
	// FaultPanic panics with a *Fault. Deferred functions run, and tests can
	// recover the fault.
	FaultPanic FaultMode = "panic"
	// FaultExit exits the process with status 2.
	FaultExit FaultMode = "exit"
	// FaultAbort sends SIGABRT to the process where that is supported, so
	// that a core dump or debugger can capture the state.
	FaultAbort FaultMode = "abort"
)

// fault reports a fault and stops according to the configured fault mode.
// It never returns normally; the result type lets dispatch paths use it in
// tail position.
func (rt *Runtime) fault(kind FaultKind, sel *Object, v Value, format string, args ...interface{}) Value {
	f := &Fault{
		Kind:     kind,
		Selector: rt.symbolName(sel),
		Value:    v.String(),
		Message:  fmt.Sprintf(format, args...),
	}
	rt.stats.Faults++
	logFault.Critical(f.Message, "fault", kind.String(), "selector", f.Selector, "value", f.Value)
	switch rt.Config.OnFault {
	case FaultExit:
		os.Exit(2)
	case FaultAbort:
		abort()
		os.Exit(2)
	}
	panic(f)
}
