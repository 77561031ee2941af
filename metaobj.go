/*
Package metaobj implements a small dynamic-object runtime.

Every runtime value is a Value: either an immediate, which holds its whole
state in the handle (booleans, float64s, uint64s, and references to Go-coded
methods), or a reference to a heap Object. Each Object carries a header made
of its meta-object and a packed retain count with two flag bits.

A meta-object describes a value's behavior: its delegation parent, its
instance size, and its method table. Instances of a class share the class's
meta-object. The first time a method is added directly to a single instance,
that instance receives a private meta-object whose parent is the shared one,
so the override affects that instance alone. This is prototype promotion.

Messages are sent by selector, an interned symbol:

	rt, err := metaobj.NewRuntime(metaobj.DefaultConfig())
	if err != nil {
		// handle err
	}
	greeter, _ := rt.DefineClass("Greeter", nil, 0, metaobj.Methods{
		"greet": func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
			return metaobj.Ref(rt.Intern("hello"))
		},
	})
	rt.Collect(func() {
		g := rt.Create(greeter)
		fmt.Println(rt.Describe(rt.SendName(g, "greet")))
	})

Lookup walks the meta-object chain and memoizes hits per meta-object. Adding
or removing a method invalidates the memoized lookups of every meta-object
that delegates to the changed one. A method can continue the search above its
own definition with SuperSend. A receiver without a method for a selector
gets a forward message instead, if it responds to one.

Memory is managed by reference counting. New objects start with a retain
count of one and are registered with the innermost collect region, which
releases them when it ends; Retain keeps an object alive past its region.
Eternize makes an object immortal. Class objects and symbols are immortal.

Exceptions are raised with Raise and caught by perform frames, usually
through Try or Protect. Raising unwinds Go frames with a private panic, so
deferred functions run, and collect regions opened inside the guarded body
are popped.

Contract violations such as releasing a freed object or sending a message
nobody understands are faults. A fault logs a critical diagnostic and then
panics, exits, or aborts the process, depending on Config.OnFault.

Built-in types (numbers, booleans, strings, arrays, dictionaries, dates) live
in the coreext packages. Import github.com/zephyrtronium/metaobj/coreext for
its side effects to install all of them in every new Runtime.
*/
package metaobj

import "github.com/zephyrtronium/metaobj/internal"

// Runtime is an execution context for dynamic objects.
type Runtime = internal.Runtime

// Value is the handle used for every runtime value.
type Value = internal.Value

// Kind identifies which variant a Value holds.
type Kind = internal.Kind

// Object is a heap-resident value.
//
// Always use Runtime.Instantiate, Runtime.Create, or a type-specific
// constructor to obtain new objects. An Object created directly has no
// meta-object and is treated as already freed.
type Object = internal.Object

// Header is an object's packed retain count and flags.
type Header = internal.Header

// Meta is a meta-object.
type Meta = internal.Meta

// Identifier is implemented by table keys with a stable integer identity.
type Identifier = internal.Identifier

// TableStats describes the shape of a table.
type TableStats = internal.TableStats

// Method is executable code registered under a selector.
type Method = internal.Method

// Fn is the Go implementation of a method.
type Fn = internal.Fn

// Methods maps selector names to implementations.
type Methods = internal.Methods

// Call describes a single activation of a method.
type Call = internal.Call

// Symbol is the value of an interned string.
type Symbol = internal.Symbol

// Exception is the value of an exception object and the error type returned
// by Runtime.Protect.
type Exception = internal.Exception

// CollectFrame is a collect region.
type CollectFrame = internal.CollectFrame

// Frame is a perform frame.
type Frame = internal.Frame

// FrameState is the lifecycle state of a perform frame.
type FrameState = internal.FrameState

// Fault is the panic value for a fault under FaultPanic.
type Fault = internal.Fault

// FaultKind classifies faults.
type FaultKind = internal.FaultKind

// FaultMode selects what happens after a fault is reported.
type FaultMode = internal.FaultMode

// Config controls runtime construction and fault handling.
type Config = internal.Config

// Stats counts runtime events.
type Stats = internal.Stats

// Value kinds.
const (
	KindAbsent = internal.KindAbsent
	KindMore   = internal.KindMore
	KindBool   = internal.KindBool
	KindFloat  = internal.KindFloat
	KindUint   = internal.KindUint
	KindCode   = internal.KindCode
	KindObject = internal.KindObject
)

// Header flags.
const (
	FlagMutable = internal.FlagMutable
	FlagInline  = internal.FlagInline
)

// Perform frame states.
const (
	FrameArmed    = internal.FrameArmed
	FrameRaised   = internal.FrameRaised
	FrameConsumed = internal.FrameConsumed
	FramePopped   = internal.FramePopped
)

// Fault kinds.
const (
	FaultOverRelease   = internal.FaultOverRelease
	FaultDestroyLive   = internal.FaultDestroyLive
	FaultFreed         = internal.FaultFreed
	FaultUnhandled     = internal.FaultUnhandled
	FaultNotUnderstood = internal.FaultNotUnderstood
	FaultFrameOrder    = internal.FaultFrameOrder
)

// Fault modes.
const (
	FaultPanic = internal.FaultPanic
	FaultExit  = internal.FaultExit
	FaultAbort = internal.FaultAbort
)

// Errors returned by the registration and configuration APIs.
var (
	ErrImmediate      = internal.ErrImmediate
	ErrSharedMeta     = internal.ErrSharedMeta
	ErrNoMethod       = internal.ErrNoMethod
	ErrDuplicateClass = internal.ErrDuplicateClass
	ErrConfig         = internal.ErrConfig
)

// Absent is the value that represents the absence of a value.
var Absent = internal.Absent

// More terminates explicit argument lists.
var More = internal.More

// NewRuntime creates a runtime with the root classes and every registered
// core extension installed.
func NewRuntime(cfg Config) (*Runtime, error) {
	return internal.NewRuntime(cfg)
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// Bool returns a boolean immediate.
func Bool(b bool) Value {
	return internal.Bool(b)
}

// Float returns a float64 immediate.
func Float(f float64) Value {
	return internal.Float(f)
}

// Uint returns a uint64 immediate.
func Uint(u uint64) Value {
	return internal.Uint(u)
}

// Code returns a Value referring to a method.
func Code(m *Method) Value {
	return internal.Code(m)
}

// Ref returns a Value referring to an object.
func Ref(o *Object) Value {
	return internal.Ref(o)
}

// NewMethod wraps fn as a method.
func NewMethod(name string, fn Fn) *Method {
	return internal.NewMethod(name, fn)
}

// NewTable creates a Robin Hood hash table with at least the given capacity.
// hash and eq are optional; see internal.NewTable.
func NewTable[K comparable, V any](capacity int, hash func(K) uint64, eq func(a, b K) bool) *internal.Table[K, V] {
	return internal.NewTable[K, V](capacity, hash, eq)
}

// NewHeader returns a header with the given retain count and flags.
func NewHeader(count uint64, flags Header) Header {
	return internal.NewHeader(count, flags)
}

// SymbolName returns the text of the symbol v.
func SymbolName(v Value) (string, bool) {
	return internal.SymbolName(v)
}

// NumbersEqual returns whether two floats or unsigned integers are
// numerically equal.
func NumbersEqual(a, b Value) bool {
	return internal.NumbersEqual(a, b)
}

// IsSymbol returns whether v is an interned symbol.
func IsSymbol(v Value) bool {
	return internal.IsSymbol(v)
}

// ExceptionOf returns the Exception state of v, or nil.
func ExceptionOf(v Value) *Exception {
	return internal.ExceptionOf(v)
}
