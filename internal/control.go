package internal

import "fmt"

// FrameState is the lifecycle state of a perform frame.
type FrameState int

// Perform frame states.
const (
	// FrameArmed is a pushed frame whose guarded body has not raised.
	FrameArmed FrameState = iota
	// FrameRaised is a frame holding an exception no handler has consumed.
	FrameRaised
	// FrameConsumed is a frame whose exception a handler has observed.
	FrameConsumed
	// FramePopped is a frame removed from the perform stack.
	FramePopped
)

var stateNames = [...]string{"armed", "raised", "consumed", "popped"}

// String returns a string representation of the FrameState.
func (s FrameState) String() string {
	if s < FrameArmed || s > FramePopped {
		return fmt.Sprintf("FrameState(%d)", s)
	}
	return stateNames[s]
}

// Frame is a perform frame: the target of a raise. A frame is armed by
// PerformPush, runs its body under Guard, and is removed by PerformPop.
type Frame struct {
	exception Value
	state     FrameState
	// depth is the frame's index in the perform stack.
	depth int
	// collects is the collect stack depth when the frame was pushed. An
	// exception caught by this frame pops collect frames above it.
	collects int
}

// State returns the frame's state.
func (f *Frame) State() FrameState {
	return f.state
}

// Raised returns whether the frame holds an exception that no handler has
// consumed.
func (f *Frame) Raised() bool {
	return f.state == FrameRaised
}

// Exception returns the exception raised to the frame, or Absent. The frame
// holds a reference to the exception until it is popped.
func (f *Frame) Exception() Value {
	return f.exception
}

// Consume marks a raised frame's exception as handled.
func (f *Frame) Consume() {
	if f.state == FrameRaised {
		f.state = FrameConsumed
	}
}

// unwind is the panic payload used to transfer control from Raise to the
// Guard running the target frame's body.
type unwind struct {
	frame *Frame
}

// PerformPush arms a new perform frame on top of the perform stack.
func (rt *Runtime) PerformPush() *Frame {
	f := &Frame{depth: len(rt.performs), collects: len(rt.collects)}
	rt.performs = append(rt.performs, f)
	return f
}

// PerformDepth returns the number of active perform frames.
func (rt *Runtime) PerformDepth() int {
	return len(rt.performs)
}

// topFrame returns the innermost perform frame, or nil.
func (rt *Runtime) topFrame() *Frame {
	if len(rt.performs) == 0 {
		return nil
	}
	return rt.performs[len(rt.performs)-1]
}

// Guard runs body with f as the target of any raise inside it. It returns true
// if body raised an exception to f, in which case any collect frames body left
// open have been popped. Panics that are not raises to f continue unwinding
// after f and every frame pushed inside body are popped.
func (rt *Runtime) Guard(f *Frame, body func()) (raised bool) {
	if f.state != FrameArmed || rt.topFrame() != f {
		rt.fault(FaultFrameOrder, nil, Absent, "guard on %v frame %d that is not the innermost armed frame", f.state, f.depth)
		return false
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		u, ok := r.(unwind)
		if !ok || u.frame != f {
			rt.abandonFrames(f)
			panic(r)
		}
		rt.unwindCollects(f.collects)
		raised = true
	}()
	body()
	return false
}

// Raise raises exc to the innermost perform frame and does not return. The
// frame retains exc until it is popped. If the innermost frame has already
// been raised to, so that exc is raised from its handler, that frame is
// discarded and exc goes to the next one out. Raising with no perform frame
// is a fault that reports exc's description.
func (rt *Runtime) Raise(exc Value) {
	rt.Retain(exc)
	rt.stats.Raised++
	top := rt.topFrame()
	if top != nil && top.state == FrameRaised {
		logPerform.Debugf("raise from handler discards frame %d holding %s", top.depth, top.exception)
		rt.discardFrame(top)
		top = rt.topFrame()
	}
	if top == nil {
		desc := rt.Describe(exc)
		rt.Release(exc)
		rt.fault(FaultUnhandled, nil, exc, "unhandled exception: %s", desc)
		return
	}
	top.exception = exc
	top.state = FrameRaised
	panic(unwind{frame: top})
}

// abandonFrames pops f and every perform frame above it, along with the
// collect frames pushed since f.
func (rt *Runtime) abandonFrames(f *Frame) {
	if f.state == FramePopped {
		return
	}
	for len(rt.performs) > f.depth {
		rt.discardFrame(rt.topFrame())
	}
	rt.unwindCollects(f.collects)
	logPerform.Debugf("abandoned perform frame %d to a panic", f.depth)
}

// discardFrame pops the innermost frame without order checks.
func (rt *Runtime) discardFrame(f *Frame) {
	rt.performs = rt.performs[:len(rt.performs)-1]
	f.state = FramePopped
	exc := f.exception
	f.exception = Absent
	rt.Release(exc)
}

// PerformPop removes f from the perform stack and releases its exception. f
// must be the innermost perform frame, and every collect frame pushed after
// it must already be popped. Popping a frame that a raise already discarded
// does nothing.
func (rt *Runtime) PerformPop(f *Frame) {
	if f.state == FramePopped {
		return
	}
	if rt.topFrame() != f {
		rt.fault(FaultFrameOrder, nil, Absent, "perform frame %d popped out of order (stack depth %d)", f.depth, len(rt.performs))
		return
	}
	if len(rt.collects) != f.collects {
		rt.fault(FaultFrameOrder, nil, Absent, "perform frame %d popped with %d collect frames still active inside it", f.depth, len(rt.collects)-f.collects)
		return
	}
	rt.discardFrame(f)
}

// Try runs body in a new perform frame. If body raises, handle receives the
// exception while the frame is still raised; raising again from handle
// propagates to the enclosing frame. handle may be nil to swallow the
// exception. The frame is popped before Try returns, and the result reports
// whether body raised.
func (rt *Runtime) Try(body func(), handle func(exc Value)) bool {
	f := rt.PerformPush()
	raised := rt.Guard(f, body)
	if raised {
		if handle != nil {
			handle(f.exception)
		}
		f.Consume()
	}
	rt.PerformPop(f)
	return raised
}

// Protect runs body and converts an exception raised inside it into a Go
// error. The error is an *Exception.
func (rt *Runtime) Protect(body func()) (err error) {
	rt.Try(body, func(exc Value) {
		err = rt.AsError(exc)
	})
	return err
}
