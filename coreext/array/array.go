// Package array provides ordered sequences of values.
package array

import (
	"encoding/binary"
	"strings"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"

	"github.com/zeebo/xxh3"
)

// Array is the value of an Array object. An array holds a reference to each
// of its items.
type Array struct {
	Items []metaobj.Value
}

// Class returns the Array class of rt.
func Class(rt *metaobj.Runtime) *metaobj.Object {
	c, ok := rt.Class("Array")
	if !ok {
		panic("metaobj/array: Array is not installed")
	}
	return c
}

// New creates a transient immutable Array holding items, retaining each.
func New(rt *metaobj.Runtime, items ...metaobj.Value) metaobj.Value {
	a := &Array{Items: make([]metaobj.Value, len(items))}
	for i, v := range items {
		a.Items[i] = rt.Retain(v)
	}
	return metaobj.Ref(rt.Instantiate(Class(rt), a))
}

// NewMutable creates a transient mutable Array holding items, retaining each.
func NewMutable(rt *metaobj.Runtime, items ...metaobj.Value) metaobj.Value {
	r := New(rt, items...)
	r.Object().SetMutable(true)
	return r
}

// Of returns the Array value of v.
func Of(v metaobj.Value) (*Array, bool) {
	o := v.Object()
	if o == nil || o.Freed() {
		return nil, false
	}
	a, ok := o.Value.(*Array)
	return a, ok
}

func init() {
	internal.Register(initArray)
}

func initArray(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"create":      create,
		"destroy":     destroy,
		"size":        size,
		"at":          at,
		"atPut":       atPut,
		"append":      appendItem,
		"indexOf":     indexOf,
		"copy":        arrayCopy,
		"mutableCopy": mutableCopy,
		"hash":        hash,
		"equals":      equals,
		"description": description,
	}
	_, err := rt.DefineClass("Array", nil, 0, slots)
	return err
}

// items returns the receiver's Array, raising a TypeError if the receiver is
// the class or another object without one.
func items(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) *Array {
	a, ok := Of(self)
	if !ok {
		rt.Raisef("TypeError", "receiver of %s must be Array, not %s", call.Name(), rt.TypeName(self))
	}
	return a
}

// index returns the nth argument as an index.
func index(rt *metaobj.Runtime, call *metaobj.Call, n int) uint64 {
	v := call.Arg(n)
	if v.Kind() != metaobj.KindUint {
		rt.Raisef("TypeError", "argument %d to %s must be an unsigned integer, not %s", n, call.Name(), rt.TypeName(v))
	}
	return v.AsUint()
}

// mutable raises an Immutable exception if self is not mutable.
func mutable(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) {
	if !self.Object().Mutable() {
		rt.Raisef("Immutable", "cannot %s an immutable Array", call.Name())
	}
}

// create is an Array method.
//
// create makes an immutable Array holding the arguments.
func create(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, call.Args...)
}

// destroy is an Array method.
//
// destroy releases the items.
func destroy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a, ok := Of(self)
	if !ok {
		return metaobj.Absent
	}
	for _, v := range a.Items {
		rt.Release(v)
	}
	a.Items = nil
	return metaobj.Absent
}

// size is an Array method.
func size(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(len(items(rt, self, call).Items)))
}

// at is an Array method.
//
// at returns the item at the given index, or More past the end.
func at(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a := items(rt, self, call)
	i := index(rt, call, 0)
	if i >= uint64(len(a.Items)) {
		return metaobj.More
	}
	return a.Items[i]
}

// atPut is an Array method.
//
// atPut replaces the item at the given index of a mutable array and returns
// the receiver.
func atPut(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a := items(rt, self, call)
	mutable(rt, self, call)
	i := index(rt, call, 0)
	if i >= uint64(len(a.Items)) {
		rt.Raisef("IndexError", "index %d out of bounds for Array of size %d", i, len(a.Items))
	}
	old := a.Items[i]
	a.Items[i] = rt.Retain(call.Arg(1))
	rt.Release(old)
	return self
}

// appendItem is an Array method.
//
// append adds its arguments to the end of a mutable array and returns the
// receiver.
func appendItem(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a := items(rt, self, call)
	mutable(rt, self, call)
	for _, v := range call.Args {
		a.Items = append(a.Items, rt.Retain(v))
	}
	return self
}

// indexOf is an Array method.
//
// indexOf returns the index of the first item equal to the argument, or More
// if there is none.
func indexOf(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a := items(rt, self, call)
	x := call.Arg(0)
	for i, v := range a.Items {
		if rt.Equal(v, x) {
			return metaobj.Uint(uint64(i))
		}
	}
	return metaobj.More
}

// arrayCopy is an Array method.
//
// copy returns the receiver if it is immutable, or else a new immutable array
// with the same items.
func arrayCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a := items(rt, self, call)
	if !self.Object().Mutable() {
		return rt.CollectAdd(rt.Retain(self))
	}
	return New(rt, a.Items...)
}

// mutableCopy is an Array method.
func mutableCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return NewMutable(rt, items(rt, self, call).Items...)
}

// hash is an Array method.
//
// hash combines the hashes of the items in order.
func hash(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self)
	}
	h := xxh3.New()
	var b [8]byte
	for _, v := range a.Items {
		binary.LittleEndian.PutUint64(b[:], rt.Hash(v))
		h.Write(b[:])
	}
	return metaobj.Uint(h.Sum64())
}

// equals is an Array method.
//
// equals returns whether the argument is an array of the same size whose
// items are pairwise equal.
func equals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self, call.Args...)
	}
	b, ok := Of(call.Arg(0))
	if !ok || len(a.Items) != len(b.Items) {
		return metaobj.Bool(false)
	}
	for i := range a.Items {
		if !rt.Equal(a.Items[i], b.Items[i]) {
			return metaobj.Bool(false)
		}
	}
	return metaobj.Bool(true)
}

// description is an Array method.
//
// description renders the items in parentheses.
func description(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	a, ok := Of(self)
	if !ok {
		return str.New(rt, "Array")
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range a.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rt.Describe(v))
	}
	b.WriteByte(')')
	return str.New(rt, b.String())
}
