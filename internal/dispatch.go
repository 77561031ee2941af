package internal

import (
	"fmt"
	"reflect"
	"runtime"
)

// Fn is the Go implementation of a method. self is the receiver and call
// carries the selector, the arguments, and the meta where a super send
// continues the search.
type Fn func(rt *Runtime, self Value, call *Call) Value

// Method is executable code registered under a selector.
type Method struct {
	// Fn is the implementation.
	Fn Fn
	// Name is used in diagnostics.
	Name string

	id uintptr
}

// Methods maps selector names to implementations, for registering several
// methods at once.
type Methods = map[string]Fn

// NewMethod wraps fn as a method. If name is empty, the name of the Go
// function is used.
func NewMethod(name string, fn Fn) *Method {
	if name == "" {
		name = runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	}
	return &Method{Fn: fn, Name: name, id: nextID()}
}

// Identity returns the method's unique ID.
func (m *Method) Identity() uint64 {
	return uint64(m.id)
}

// Call describes a single activation of a method.
type Call struct {
	// Selector is the interned selector the method was found under.
	Selector *Object
	// Args holds the arguments, without any terminating More.
	Args []Value
	// Super is the meta where a super send from this activation begins. It
	// is nil when the method was found on the root meta.
	Super *Meta
	// Method is the method being activated.
	Method *Method
}

// Arg returns the ith argument, or Absent if there are not that many.
func (c *Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Absent
	}
	return c.Args[i]
}

// ArgCount returns the number of arguments.
func (c *Call) ArgCount() int {
	return len(c.Args)
}

// Name returns the selector text.
func (c *Call) Name() string {
	return c.Selector.Value.(Symbol).Name
}

// lookupFrom searches start and its ancestors for sel. It returns the method
// and the meta after the one which defined it.
func (rt *Runtime) lookupFrom(start *Meta, sel *Object) (method *Method, next *Meta, ok bool) {
	rt.stats.Lookups++
	if rt.Config.MethodCache {
		if r, ok := start.cache.Get(sel); ok {
			rt.stats.CacheHits++
			return r.method, r.next, true
		}
	}
	for m := start; m != nil; m = m.parent {
		if method, ok := m.methods.Get(sel); ok {
			if rt.Config.MethodCache {
				start.cache.Put(sel, lookupResult{method: method, next: m.parent})
			}
			return method, m.parent, true
		}
	}
	return nil, nil, false
}

// Lookup finds the method v responds to under sel. next is the meta from
// which a super send inside that method continues.
func (rt *Runtime) Lookup(v Value, sel *Object) (method *Method, next *Meta, ok bool) {
	if o := v.Object(); o != nil {
		rt.checkLive(o, sel)
	}
	m := rt.MetaOf(v)
	if m == nil {
		return nil, nil, false
	}
	return rt.lookupFrom(m, sel)
}

// RespondsTo returns whether v has a method for sel, without considering the
// forward fallback.
func (rt *Runtime) RespondsTo(v Value, sel *Object) bool {
	_, _, ok := rt.Lookup(v, sel)
	return ok
}

// Send dispatches sel to v with the given arguments. Arguments after a More
// sentinel are ignored. If v has no method for sel, its forward method
// receives the call instead, with the original selector in the Call; if it
// has no forward method either, that is a fault.
func (rt *Runtime) Send(v Value, sel *Object, args ...Value) Value {
	if o := v.Object(); o != nil {
		rt.checkLive(o, sel)
	}
	start := rt.MetaOf(v)
	return rt.sendFrom(start, v, sel, args)
}

// SendName interns name and sends it to v.
func (rt *Runtime) SendName(v Value, name string, args ...Value) Value {
	return rt.Send(v, rt.Intern(name), args...)
}

// SuperSend dispatches the selector of the current call to self, beginning
// the search at the meta after the one which defined the current method.
func (rt *Runtime) SuperSend(call *Call, self Value, args ...Value) Value {
	return rt.sendFrom(call.Super, self, call.Selector, args)
}

func (rt *Runtime) sendFrom(start *Meta, v Value, sel *Object, args []Value) Value {
	args = argList(args)
	if start != nil {
		if method, next, ok := rt.lookupFrom(start, sel); ok {
			return method.Fn(rt, v, &Call{Selector: sel, Args: args, Super: next, Method: method})
		}
		if method, next, ok := rt.lookupFrom(start, rt.sel.forward); ok {
			rt.stats.Forwards++
			return method.Fn(rt, v, &Call{Selector: sel, Args: args, Super: next, Method: method})
		}
	}
	return rt.fault(FaultNotUnderstood, sel, v, "%s does not respond to %s", rt.TypeName(v), rt.symbolName(sel))
}

// IsKindOf returns whether v's meta chain includes the meta owned by class.
func (rt *Runtime) IsKindOf(v Value, class *Object) bool {
	if class == nil || class.Freed() {
		return false
	}
	target := class.meta.get()
	if target.owner != class {
		// class shares a meta, so nothing can descend from it.
		return v.Object() == class
	}
	m := rt.MetaOf(v)
	return m != nil && m.IsDescendantOf(target)
}

// TypeName returns the name of the meta-object v dispatches through.
func (rt *Runtime) TypeName(v Value) string {
	if o := v.Object(); o != nil && o.Freed() {
		return "freed"
	}
	if m := rt.MetaOf(v); m != nil {
		return m.name
	}
	return v.Kind().String()
}

// Describe renders v for diagnostics through its description or asString
// method, falling back to the handle's own rendering. Exceptions raised by
// those methods are swallowed into the fallback.
func (rt *Runtime) Describe(v Value) (s string) {
	if o := v.Object(); o != nil && o.Freed() {
		return o.String()
	}
	for _, sel := range []*Object{rt.sel.description, rt.sel.asString} {
		if !rt.RespondsTo(v, sel) {
			continue
		}
		ok := false
		rt.Try(func() {
			r := rt.Send(v, sel)
			if sym, isSym := r.Object().valueSymbol(); isSym {
				s, ok = sym.Name, true
			} else if str, isStr := r.Object().valueStringer(); isStr {
				s, ok = str.String(), true
			}
		}, nil)
		if ok {
			return s
		}
	}
	if o := v.Object(); o != nil {
		return o.String()
	}
	return v.String()
}

// valueSymbol returns o's value as a Symbol. o may be nil.
func (o *Object) valueSymbol() (Symbol, bool) {
	if o == nil {
		return Symbol{}, false
	}
	s, ok := o.Value.(Symbol)
	return s, ok
}

// valueStringer returns o's value as a fmt.Stringer. o may be nil.
func (o *Object) valueStringer() (fmt.Stringer, bool) {
	if o == nil || o.Freed() {
		return nil, false
	}
	s, ok := o.Value.(fmt.Stringer)
	return s, ok
}
