package internal

import (
	"fmt"
	"sync/atomic"
)

// Object is a heap-resident value. Every object starts with the common
// header: its meta-object and its packed retain count and flags. The trailing
// state of built-in and external types lives in Value.
//
// Always use Runtime.Instantiate, Runtime.Create, or a type-specific
// constructor to obtain new objects. Creating objects directly leaves them
// without a meta-object, which the runtime treats as already freed.
type Object struct {
	meta   metaCell
	header Header

	// Value is the object's type-specific state.
	Value interface{}

	// id is the object's unique ID.
	id uintptr
}

// metaCell is an object's reference to its meta-object. It starts out
// pointing at the meta shared by the object's class and is replaced by a
// private clone the first time the object needs methods of its own.
type metaCell struct {
	m *Meta
}

// get returns the current meta, shared or private.
func (c *metaCell) get() *Meta {
	return c.m
}

// owned returns whether o holds a private meta.
func (c *metaCell) owned(o *Object) bool {
	return c.m != nil && c.m.owner == o
}

// own returns o's private meta, first replacing a shared meta with a clone
// reparented onto it.
func (c *metaCell) own(rt *Runtime, o *Object) *Meta {
	if !c.owned(o) {
		c.m.users--
		c.m = rt.cloneMeta(c.m, o)
	}
	return c.m
}

// UniqueID returns the object's unique ID.
func (o *Object) UniqueID() uintptr {
	return o.id
}

// Identity returns the object's unique ID for identity-hashed tables.
func (o *Object) Identity() uint64 {
	return uint64(o.id)
}

// Meta returns the object's current meta-object, or nil if it has been freed.
func (o *Object) Meta() *Meta {
	return o.meta.get()
}

// OwnsMeta returns whether the object holds a private meta-object.
func (o *Object) OwnsMeta() bool {
	return o.meta.owned(o)
}

// Header returns the object's packed retain count and flags.
func (o *Object) Header() Header {
	return o.header
}

// RetainCount returns the object's retain count.
func (o *Object) RetainCount() uint64 {
	return o.header.Count()
}

// Immortal returns whether the object is exempt from retain/release.
func (o *Object) Immortal() bool {
	return o.header.Immortal()
}

// Mutable returns whether the object's mutable flag is set.
func (o *Object) Mutable() bool {
	return o.header.Mutable()
}

// SetMutable sets or clears the object's mutable flag.
func (o *Object) SetMutable(m bool) {
	f := o.header.Flags() &^ FlagMutable
	if m {
		f |= FlagMutable
	}
	o.header = o.header.WithFlags(f)
}

// Freed returns whether the object has been destroyed.
func (o *Object) Freed() bool {
	return o.meta.get() == nil
}

// String returns a short diagnostic rendering of the object. It never
// dispatches.
func (o *Object) String() string {
	if o.Freed() {
		return fmt.Sprintf("freed_%#x", o.id)
	}
	return fmt.Sprintf("%s_%#x", o.meta.get().name, o.id)
}

// idcounter is the global counter for object, meta, and method IDs. All
// accesses to this must be atomic, as separate runtimes may live on separate
// goroutines.
var idcounter uintptr

// nextID increments the ID counter and returns its value as a unique ID.
func nextID() uintptr {
	return atomic.AddUintptr(&idcounter, 1)
}
