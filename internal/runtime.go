package internal

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// Runtime is an execution context for dynamic objects. It owns the class
// registry, the symbol table, and the collect and perform stacks. A Runtime
// is not safe for concurrent use; separate goroutines should use separate
// runtimes.
type Runtime struct {
	// Config is the configuration the runtime was created with.
	Config Config

	// Root classes.
	BaseObject     *Object
	SymbolClass    *Object
	ExceptionClass *Object
	MethodClass    *Object

	// classes maps class names to class objects.
	classes map[string]*Object
	// symbols is the intern table.
	symbols *Table[string, *Object]
	// immediates holds the class whose meta dispatches for each immediate
	// kind.
	immediates [numKinds]*Object

	collects []*CollectFrame
	performs []*Frame

	// sel holds the interned capability selectors.
	sel selectors

	stats Stats
}

type selectors struct {
	create, destroy, hash, equals, copy, mutableCopy *Object
	asString, description, isKindOf, forward         *Object
}

// Stats counts runtime events.
type Stats struct {
	Lookups       uint64
	CacheHits     uint64
	Forwards      uint64
	Promotions    uint64
	Invalidations uint64
	Created       uint64
	Destroyed     uint64
	Leaked        uint64
	Raised        uint64
	Faults        uint64
}

// ErrDuplicateClass is returned when defining a class whose name is taken.
var ErrDuplicateClass = errors.New("metaobj: duplicate class name")

// NewRuntime creates a runtime with the root classes and every registered
// extension installed. Returns an error if cfg is invalid.
func NewRuntime(cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	haveRuntime = true
	rt := &Runtime{
		Config:  cfg,
		classes: make(map[string]*Object),
		symbols: NewTable[string, *Object](cfg.InternCapacity, xxh3.HashString, nil),
	}
	// The root and Symbol classes come first so that interning works, then
	// the selectors, then everything that registers methods.
	rt.BaseObject = rt.newClass("Object", nil, 0)
	rt.SymbolClass = rt.newClass("Symbol", rt.BaseObject.meta.get(), 0)
	rt.initSelectors()
	rt.initObject()
	rt.initSymbol()
	rt.initMethod()
	rt.initException()
	for _, ext := range coreExt {
		if err := ext(rt); err != nil {
			return nil, fmt.Errorf("couldn't install core extension: %w", err)
		}
	}
	logRuntime.Infof("runtime ready with %d classes and %d symbols", len(rt.classes), rt.symbols.Len())
	return rt, nil
}

// newClass creates an immortal class object owning a fresh meta and records
// it in the registry. It does not check for duplicates.
func (rt *Runtime) newClass(name string, parent *Meta, size int) *Object {
	c := &Object{header: NewHeader(0, 0).Eternal(), id: nextID()}
	c.meta.m = rt.newMeta(c, parent, name, size, rt.Config.MethodCapacity)
	rt.classes[name] = c
	return c
}

func (rt *Runtime) initSelectors() {
	rt.sel = selectors{
		create:      rt.Intern("create"),
		destroy:     rt.Intern("destroy"),
		hash:        rt.Intern("hash"),
		equals:      rt.Intern("equals"),
		copy:        rt.Intern("copy"),
		mutableCopy: rt.Intern("mutableCopy"),
		asString:    rt.Intern("asString"),
		description: rt.Intern("description"),
		isKindOf:    rt.Intern("isKindOf"),
		forward:     rt.Intern("forward"),
	}
}

// DefineClass creates a class named name which delegates to parent, or to
// the root class if parent is nil, and installs methods on it. If parent
// does not own its meta-object, it is promoted first so that the new class
// inherits from parent itself rather than from parent's class. The class
// object is immortal, and so becomes parent.
func (rt *Runtime) DefineClass(name string, parent *Object, size int, methods Methods) (*Object, error) {
	if prev, ok := rt.classes[name]; ok {
		return nil, fmt.Errorf("couldn't define class %s: %w (taken by %v)", name, ErrDuplicateClass, prev)
	}
	if parent == nil {
		parent = rt.BaseObject
	}
	rt.checkLive(parent, nil)
	if !parent.Immortal() {
		// Class metas live forever, and so must everything they delegate to.
		rt.Eternize(Ref(parent))
		logMeta.Debugf("eternized %v as the prototype of class %s", parent, name)
	}
	pm := parent.meta.own(rt, parent)
	c := rt.newClass(name, pm, size)
	if err := rt.AddMethods(Ref(c), methods); err != nil {
		return nil, err
	}
	logMeta.Debugf("defined class %s under %s", name, pm.name)
	return c, nil
}

// Class returns the class registered under name.
func (rt *Runtime) Class(name string) (*Object, bool) {
	c, ok := rt.classes[name]
	return c, ok
}

// SetImmediateClass sets the class whose methods immediates of kind k use.
func (rt *Runtime) SetImmediateClass(k Kind, class *Object) {
	rt.immediates[k] = class
}

// ImmediateClass returns the class registered for immediates of kind k.
func (rt *Runtime) ImmediateClass(k Kind) *Object {
	return rt.immediates[k]
}

// Instantiate creates a new object sharing proto's meta-object, holding
// value. The new object has a retain count of one and is registered with the
// current collect frame.
func (rt *Runtime) Instantiate(proto *Object, value interface{}) *Object {
	rt.checkLive(proto, nil)
	m := proto.meta.get()
	m.users++
	o := &Object{
		meta:   metaCell{m: m},
		header: NewHeader(1, 0),
		Value:  value,
		id:     nextID(),
	}
	rt.stats.Created++
	rt.CollectAdd(Ref(o))
	return o
}

// Create sends create to class with the given arguments.
func (rt *Runtime) Create(class *Object, args ...Value) Value {
	return rt.Send(Ref(class), rt.sel.create, args...)
}

// Stats returns a snapshot of the runtime's event counters.
func (rt *Runtime) Stats() Stats {
	return rt.stats
}

// SymbolCount returns the number of interned symbols.
func (rt *Runtime) SymbolCount() int {
	return rt.symbols.Len()
}

// Hash returns a 64-bit digest of v. Objects with a hash method are hashed by
// it; other objects hash by identity. Immediates hash by kind and payload,
// except that integral floats hash as the equal unsigned integer.
func (rt *Runtime) Hash(v Value) uint64 {
	if o := v.Object(); o != nil {
		if rt.RespondsTo(v, rt.sel.hash) {
			if h := rt.Send(v, rt.sel.hash); h.Kind() == KindUint {
				return h.AsUint()
			}
		}
		return mix(uint64(o.id), KindObject)
	}
	if v.Kind() == KindFloat {
		if u, ok := integral(v.AsFloat()); ok {
			return mix(u, KindUint)
		}
	}
	return mix(v.Bits(), v.Kind())
}

// integral returns f as an unsigned integer if it is exactly one.
func integral(f float64) (uint64, bool) {
	if f >= 0 && f < 1<<64 && f == math.Trunc(f) {
		return uint64(f), true
	}
	return 0, false
}

// NumbersEqual returns whether a and b are numerically equal. Each must be a
// float or an unsigned integer. A float equals an unsigned integer only when
// it has exactly that value.
func NumbersEqual(a, b Value) bool {
	switch {
	case a.Kind() == KindUint && b.Kind() == KindUint:
		return a.AsUint() == b.AsUint()
	case a.Kind() == KindFloat && b.Kind() == KindFloat:
		return a.AsFloat() == b.AsFloat()
	case a.Kind() == KindFloat:
		a, b = b, a
	}
	u, ok := integral(b.AsFloat())
	return ok && u == a.AsUint()
}

func mix(w uint64, k Kind) uint64 {
	var b [9]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(w >> (8 * i))
	}
	b[8] = byte(k)
	return xxh3.Hash(b[:])
}

// Equal returns whether a and b are equal. An object with an equals method
// decides by it; otherwise objects are equal only to themselves. Numbers
// compare numerically across kinds, so 1 equals 1.0 and NaN is unequal to
// itself.
func (rt *Runtime) Equal(a, b Value) bool {
	if numeric(a) && numeric(b) {
		return NumbersEqual(a, b)
	}
	if o := a.Object(); o != nil && rt.RespondsTo(a, rt.sel.equals) {
		return rt.Truthy(rt.Send(a, rt.sel.equals, b))
	}
	return a == b
}

func numeric(v Value) bool {
	return v.Kind() == KindFloat || v.Kind() == KindUint
}

// Truthy interprets v as a condition. Absent and false are false; everything
// else, including zero numbers, is true.
func (rt *Runtime) Truthy(v Value) bool {
	switch v.Kind() {
	case KindAbsent:
		return false
	case KindBool:
		return v.AsBool()
	}
	return true
}

// checkLive faults if o has been freed.
func (rt *Runtime) checkLive(o *Object, sel *Object) {
	if o.Freed() {
		rt.fault(FaultFreed, sel, Ref(o), "%v used after it was freed", o)
	}
}

// symbolName returns the text of a selector for diagnostics.
func (rt *Runtime) symbolName(sel *Object) string {
	if sym, ok := sel.valueSymbol(); ok {
		return sym.Name
	}
	if sel == nil {
		return ""
	}
	return sel.String()
}

// initObject installs the root class's methods.
func (rt *Runtime) initObject() {
	slots := Methods{
		"create":      objectCreate,
		"destroy":     objectDestroy,
		"hash":        objectHash,
		"equals":      objectEquals,
		"copy":        objectCopy,
		"mutableCopy": objectMutableCopy,
		"isKindOf":    objectIsKindOf,
		"respondsTo":  objectRespondsTo,
		"proto":       objectProto,
		"retainCount": objectRetainCount,
	}
	if err := rt.AddMethods(Ref(rt.BaseObject), slots); err != nil {
		panic(fmt.Errorf("metaobj: couldn't initialize Object: %w", err))
	}
}

// objectCreate is the root create method. It makes a new instance of the
// receiver with no state.
func objectCreate(rt *Runtime, self Value, call *Call) Value {
	o := self.Object()
	if o == nil {
		return rt.fault(FaultNotUnderstood, call.Selector, self, "immediate %v cannot create instances", self)
	}
	return Ref(rt.Instantiate(o, nil))
}

// objectDestroy is the root destroy method. There is nothing to release.
func objectDestroy(rt *Runtime, self Value, call *Call) Value {
	return Absent
}

// objectHash hashes by identity.
func objectHash(rt *Runtime, self Value, call *Call) Value {
	return Uint(mix(self.Bits(), self.Kind()))
}

// objectEquals compares by identity.
func objectEquals(rt *Runtime, self Value, call *Call) Value {
	return Bool(self == call.Arg(0))
}

// objectCopy returns the receiver itself for immutable objects, retained on
// behalf of the caller. Mutable objects get a shallow mutable copy.
func objectCopy(rt *Runtime, self Value, call *Call) Value {
	o := self.Object()
	if o == nil || !o.Mutable() {
		return rt.CollectAdd(rt.Retain(self))
	}
	return objectMutableCopy(rt, self, call)
}

// objectMutableCopy makes a new mutable object sharing the receiver's
// meta-object and holding the same Value.
func objectMutableCopy(rt *Runtime, self Value, call *Call) Value {
	o := self.Object()
	if o == nil {
		return self
	}
	r := rt.Instantiate(o, o.Value)
	r.SetMutable(true)
	return Ref(r)
}

// objectIsKindOf returns whether the receiver descends from the argument.
func objectIsKindOf(rt *Runtime, self Value, call *Call) Value {
	return Bool(rt.IsKindOf(self, call.Arg(0).Object()))
}

// objectRespondsTo returns whether the receiver has a method for the symbol
// argument.
func objectRespondsTo(rt *Runtime, self Value, call *Call) Value {
	sel := call.Arg(0).Object()
	if _, ok := sel.valueSymbol(); !ok {
		return Bool(false)
	}
	return Bool(rt.RespondsTo(self, sel))
}

// objectProto returns the receiver's effective parent.
func objectProto(rt *Runtime, self Value, call *Call) Value {
	return Ref(rt.Proto(self))
}

// objectRetainCount returns the receiver's retain count, or the largest
// representable count for immortal objects and immediates.
func objectRetainCount(rt *Runtime, self Value, call *Call) Value {
	o := self.Object()
	if o == nil || o.Immortal() {
		return Uint(math.MaxUint64)
	}
	return Uint(o.RetainCount())
}

// Register registers a core extension. Extensions run in registration order
// during NewRuntime; extensions that depend on other extensions need only
// import them. Register should be called from within init funcs. Panics if a
// runtime has already been created.
func Register(f func(*Runtime) error) {
	if haveRuntime {
		panic("metaobj/internal: Register must be called before any Runtime is created")
	}
	coreExt = append(coreExt, f)
}

// coreExt is the list of registered core extensions.
var coreExt = make([]func(*Runtime) error, 0, 8)

// haveRuntime becomes true once NewRuntime has been called.
var haveRuntime = false
