// Package dict provides hash maps keyed by arbitrary values.
package dict

import (
	"strings"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/array"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"
)

// Dict is the value of a Dict object. Keys hash and compare through their
// hash and equals methods. A dict holds a reference to each key and value.
type Dict struct {
	t *internal.Table[metaobj.Value, entry]
}

// entry keeps the stored key alongside its value, so that the key the dict
// retained is the one it releases.
type entry struct {
	key, value metaobj.Value
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return d.t.Len()
}

// Get returns the value stored under key.
func (d *Dict) Get(key metaobj.Value) (metaobj.Value, bool) {
	e, ok := d.t.Get(key)
	return e.value, ok
}

// Range calls f for each entry until f returns false.
func (d *Dict) Range(f func(key, value metaobj.Value) bool) {
	d.t.Range(func(_ metaobj.Value, e entry) bool {
		return f(e.key, e.value)
	})
}

// Class returns the Dict class of rt.
func Class(rt *metaobj.Runtime) *metaobj.Object {
	c, ok := rt.Class("Dict")
	if !ok {
		panic("metaobj/dict: Dict is not installed")
	}
	return c
}

func newDict(rt *metaobj.Runtime) *Dict {
	return &Dict{t: metaobj.NewTable[metaobj.Value, entry](rt.Config.MethodCapacity, rt.Hash, rt.Equal)}
}

// put stores key and value, retaining both and releasing whatever they
// replace.
func (d *Dict) put(rt *metaobj.Runtime, key, value metaobj.Value) {
	rt.Retain(value)
	if old, ok := d.t.Get(key); ok {
		d.t.Put(key, entry{key: old.key, value: value})
		rt.Release(old.value)
		return
	}
	d.t.Put(key, entry{key: rt.Retain(key), value: value})
}

// New creates a transient immutable Dict from alternating keys and values.
func New(rt *metaobj.Runtime, kvs ...metaobj.Value) metaobj.Value {
	d := newDict(rt)
	for i := 0; i+1 < len(kvs); i += 2 {
		d.put(rt, kvs[i], kvs[i+1])
	}
	return metaobj.Ref(rt.Instantiate(Class(rt), d))
}

// NewMutable creates a transient mutable Dict from alternating keys and
// values.
func NewMutable(rt *metaobj.Runtime, kvs ...metaobj.Value) metaobj.Value {
	r := New(rt, kvs...)
	r.Object().SetMutable(true)
	return r
}

// Of returns the Dict value of v.
func Of(v metaobj.Value) (*Dict, bool) {
	o := v.Object()
	if o == nil || o.Freed() {
		return nil, false
	}
	d, ok := o.Value.(*Dict)
	return d, ok
}

func init() {
	internal.Register(initDict)
}

func initDict(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"create":      create,
		"destroy":     destroy,
		"size":        size,
		"at":          at,
		"atPut":       atPut,
		"remove":      remove,
		"hasKey":      hasKey,
		"keys":        keys,
		"copy":        dictCopy,
		"mutableCopy": mutableCopy,
		"description": description,
	}
	_, err := rt.DefineClass("Dict", nil, 0, slots)
	return err
}

func receiver(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) *Dict {
	d, ok := Of(self)
	if !ok {
		rt.Raisef("TypeError", "receiver of %s must be Dict, not %s", call.Name(), rt.TypeName(self))
	}
	return d
}

func mutable(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) {
	if !self.Object().Mutable() {
		rt.Raisef("Immutable", "cannot %s an immutable Dict", call.Name())
	}
}

// create is a Dict method.
//
// create makes an immutable Dict from alternating key and value arguments.
func create(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if call.ArgCount()%2 != 0 {
		rt.Raisef("ArgumentError", "create needs keys and values in pairs, got %d arguments", call.ArgCount())
	}
	return New(rt, call.Args...)
}

// destroy is a Dict method.
//
// destroy releases every key and value.
func destroy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return metaobj.Absent
	}
	var held []metaobj.Value
	d.Range(func(key, value metaobj.Value) bool {
		held = append(held, key, value)
		return true
	})
	d.t.Clear()
	for _, v := range held {
		rt.Release(v)
	}
	return metaobj.Absent
}

// size is a Dict method.
func size(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(receiver(rt, self, call).Len()))
}

// at is a Dict method.
//
// at returns the value stored under the argument, or More if there is none.
func at(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	v, ok := receiver(rt, self, call).Get(call.Arg(0))
	if !ok {
		return metaobj.More
	}
	return v
}

// atPut is a Dict method.
//
// atPut stores a value under a key in a mutable dict and returns the
// receiver.
func atPut(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	mutable(rt, self, call)
	d.put(rt, call.Arg(0), call.Arg(1))
	return self
}

// remove is a Dict method.
//
// remove deletes a key from a mutable dict and returns the receiver.
func remove(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	mutable(rt, self, call)
	if e, ok := d.t.Delete(call.Arg(0)); ok {
		rt.Release(e.key)
		rt.Release(e.value)
	}
	return self
}

// hasKey is a Dict method.
func hasKey(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(receiver(rt, self, call).t.Has(call.Arg(0)))
}

// keys is a Dict method.
//
// keys returns an Array of the dict's keys in no particular order.
func keys(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	ks := make([]metaobj.Value, 0, d.Len())
	d.Range(func(key, _ metaobj.Value) bool {
		ks = append(ks, key)
		return true
	})
	return array.New(rt, ks...)
}

func pairs(d *Dict) []metaobj.Value {
	kvs := make([]metaobj.Value, 0, 2*d.Len())
	d.Range(func(key, value metaobj.Value) bool {
		kvs = append(kvs, key, value)
		return true
	})
	return kvs
}

// dictCopy is a Dict method.
//
// copy returns the receiver if it is immutable, or else a new immutable dict
// with the same entries.
func dictCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	if !self.Object().Mutable() {
		return rt.CollectAdd(rt.Retain(self))
	}
	return New(rt, pairs(d)...)
}

// mutableCopy is a Dict method.
func mutableCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return NewMutable(rt, pairs(receiver(rt, self, call))...)
}

// description is a Dict method.
func description(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return str.New(rt, "Dict")
	}
	var b strings.Builder
	b.WriteByte('{')
	first := true
	d.Range(func(key, value metaobj.Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(rt.Describe(key))
		b.WriteString(": ")
		b.WriteString(rt.Describe(value))
		return true
	})
	b.WriteByte('}')
	return str.New(rt, b.String())
}
