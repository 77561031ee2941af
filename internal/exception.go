package internal

import (
	"fmt"
)

// Exception is the value of an exception object. It also serves as the Go
// error that Protect returns.
type Exception struct {
	// Name classifies the exception.
	Name string
	// Reason describes what went wrong.
	Reason string
	// Info is arbitrary attached data. An exception object retains its Info.
	Info Value
}

func (e *Exception) Error() string {
	if e.Reason == "" {
		return e.Name
	}
	return e.Name + ": " + e.Reason
}

func (e *Exception) String() string {
	return e.Error()
}

// NewException creates a transient exception object. info is retained for
// the exception's lifetime.
func (rt *Runtime) NewException(name, reason string, info Value) *Object {
	rt.Retain(info)
	return rt.Instantiate(rt.ExceptionClass, &Exception{Name: name, Reason: reason, Info: info})
}

// Raisef raises a new exception with a formatted reason.
func (rt *Runtime) Raisef(name, format string, args ...interface{}) {
	rt.Raise(Ref(rt.NewException(name, fmt.Sprintf(format, args...), Absent)))
}

// ExceptionOf returns the Exception state of v, or nil if v is not an
// exception object.
func ExceptionOf(v Value) *Exception {
	o := v.Object()
	if o == nil || o.Freed() {
		return nil
	}
	e, _ := o.Value.(*Exception)
	return e
}

// AsError converts a raised value to a Go error. Exception objects keep their
// name and reason; anything else becomes an exception named Raise whose
// reason is the value's description. The result does not refer to exc.
func (rt *Runtime) AsError(exc Value) error {
	if e := ExceptionOf(exc); e != nil {
		return &Exception{Name: e.Name, Reason: e.Reason}
	}
	return &Exception{Name: "Raise", Reason: rt.Describe(exc)}
}

// initException creates the Exception class.
func (rt *Runtime) initException() {
	slots := Methods{
		"create":      exceptionCreate,
		"destroy":     exceptionDestroy,
		"raise":       exceptionRaise,
		"name":        exceptionName,
		"reason":      exceptionReason,
		"info":        exceptionInfo,
		"description": exceptionDescription,
	}
	c, err := rt.DefineClass("Exception", nil, 0, slots)
	if err != nil {
		panic(fmt.Errorf("metaobj: couldn't initialize Exception: %w", err))
	}
	rt.ExceptionClass = c
}

// exceptionCreate makes an exception from name and reason symbols and an
// optional info value.
func exceptionCreate(rt *Runtime, self Value, call *Call) Value {
	name, ok := SymbolName(call.Arg(0))
	if !ok {
		name = "Exception"
	}
	reason, _ := SymbolName(call.Arg(1))
	return Ref(rt.NewException(name, reason, call.Arg(2)))
}

// exceptionDestroy releases the attached info.
func exceptionDestroy(rt *Runtime, self Value, call *Call) Value {
	if e := ExceptionOf(self); e != nil {
		rt.Release(e.Info)
		e.Info = Absent
	}
	return Absent
}

// exceptionRaise raises the receiver.
func exceptionRaise(rt *Runtime, self Value, call *Call) Value {
	rt.Raise(self)
	return Absent
}

// exceptionName returns the name as a symbol.
func exceptionName(rt *Runtime, self Value, call *Call) Value {
	if e := ExceptionOf(self); e != nil {
		return Ref(rt.Intern(e.Name))
	}
	return Absent
}

// exceptionReason returns the reason as a symbol.
func exceptionReason(rt *Runtime, self Value, call *Call) Value {
	if e := ExceptionOf(self); e != nil {
		return Ref(rt.Intern(e.Reason))
	}
	return Absent
}

// exceptionInfo returns the attached info.
func exceptionInfo(rt *Runtime, self Value, call *Call) Value {
	if e := ExceptionOf(self); e != nil {
		return e.Info
	}
	return Absent
}

// exceptionDescription returns the receiver, whose Go value renders itself.
func exceptionDescription(rt *Runtime, self Value, call *Call) Value {
	return self
}
