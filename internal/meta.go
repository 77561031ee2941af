package internal

import (
	"errors"
	"fmt"

	"github.com/zephyrtronium/contains"
)

// Meta is a meta-object: the record describing a value's delegation parent,
// instance size, and methods. Instances of a class share the class's meta;
// an instance which receives a method of its own gets a private clone whose
// parent is the shared meta.
type Meta struct {
	// owner is the object which privately owns this meta. For class metas it
	// is the class object.
	owner *Object
	// parent is the meta this one delegates to. The root meta has none.
	parent *Meta
	// name is the type name used in diagnostics.
	name string
	// size is the instance size recorded when the class was defined.
	size int

	methods *Table[*Object, *Method]
	// cache memoizes lookups that start at this meta, including hits found
	// on ancestors.
	cache *Table[*Object, lookupResult]
	// children holds the metas whose parent is this one, so that method
	// changes here can invalidate their caches.
	children *Table[*Meta, struct{}]
	// users counts live objects other than the owner which share this meta.
	users int

	id uintptr
}

// lookupResult is a memoized dispatch result.
type lookupResult struct {
	method *Method
	next   *Meta
}

// Errors returned by the registration API.
var (
	// ErrImmediate is returned when an operation requires a heap object but
	// was given an immediate value.
	ErrImmediate = errors.New("metaobj: value is immediate")
	// ErrSharedMeta is returned when removing a method from an object which
	// still shares its class's meta-object.
	ErrSharedMeta = errors.New("metaobj: object shares its meta-object")
	// ErrNoMethod is returned when removing a selector that has no method.
	ErrNoMethod = errors.New("metaobj: no such method")
)

// Identity returns the meta's unique ID for identity-hashed tables.
func (m *Meta) Identity() uint64 {
	return uint64(m.id)
}

// Owner returns the object which privately owns the meta.
func (m *Meta) Owner() *Object {
	return m.owner
}

// Parent returns the meta this one delegates to, or nil for the root.
func (m *Meta) Parent() *Meta {
	return m.parent
}

// Name returns the type name of the meta.
func (m *Meta) Name() string {
	return m.name
}

// InstanceSize returns the instance size recorded for the meta's class.
func (m *Meta) InstanceSize() int {
	return m.size
}

// LocalMethod returns the method this meta itself has for sel, without
// checking its ancestors.
func (m *Meta) LocalMethod(sel *Object) (*Method, bool) {
	return m.methods.Get(sel)
}

// MethodCount returns the number of methods defined directly on the meta.
func (m *Meta) MethodCount() int {
	return m.methods.Len()
}

// ChildCount returns the number of metas which delegate directly to m.
func (m *Meta) ChildCount() int {
	return m.children.Len()
}

// CacheLen returns the number of memoized lookups on the meta.
func (m *Meta) CacheLen() int {
	return m.cache.Len()
}

// ForeachMethod calls f for each method defined directly on the meta until f
// returns false.
func (m *Meta) ForeachMethod(f func(sel *Object, method *Method) bool) {
	m.methods.Range(f)
}

// IsDescendantOf returns whether m is anc or has anc among its ancestors.
func (m *Meta) IsDescendantOf(anc *Meta) bool {
	for p := m; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

func (m *Meta) String() string {
	if m.owner == nil {
		return fmt.Sprintf("Meta(%s)", m.name)
	}
	return fmt.Sprintf("Meta(%s of %#x)", m.name, m.owner.id)
}

// newMeta creates a meta with tables of the given capacity and registers it
// with its parent.
func (rt *Runtime) newMeta(owner *Object, parent *Meta, name string, size, capacity int) *Meta {
	m := &Meta{
		owner:    owner,
		parent:   parent,
		name:     name,
		size:     size,
		methods:  NewTable[*Object, *Method](capacity, nil, nil),
		cache:    NewTable[*Object, lookupResult](capacity, nil, nil),
		children: NewTable[*Meta, struct{}](capacity, nil, nil),
		id:       nextID(),
	}
	if parent != nil {
		parent.children.Put(m, struct{}{})
	}
	return m
}

// cloneMeta creates a private meta for owner which delegates to parent, with
// tables sized from the parent's.
func (rt *Runtime) cloneMeta(parent *Meta, owner *Object) *Meta {
	m := &Meta{
		owner:    owner,
		parent:   parent,
		name:     parent.name,
		size:     parent.size,
		methods:  NewTable[*Object, *Method](parent.methods.Cap(), nil, nil),
		cache:    NewTable[*Object, lookupResult](parent.cache.Cap(), nil, nil),
		children: NewTable[*Meta, struct{}](parent.children.Cap(), nil, nil),
		id:       nextID(),
	}
	parent.children.Put(m, struct{}{})
	rt.stats.Promotions++
	logMeta.Debugf("promoted %v to private %v", owner, m)
	return m
}

// detachMeta unregisters a private meta from its parent when its owner is
// destroyed. A meta that still has children or users stays registered so
// that method changes above it keep reaching their caches; it is detached
// once the last of them goes away.
func (rt *Runtime) detachMeta(m *Meta) {
	for m.parent != nil {
		if m.children.Len() != 0 || m.users != 0 {
			logMeta.Debugf("keeping %v with %d children and %d users", m, m.children.Len(), m.users)
			return
		}
		p := m.parent
		p.children.Delete(m)
		if !p.owner.Freed() {
			return
		}
		// The parent outlived its owner only for m's sake.
		m = p
	}
}

// invalidate removes sel from the caches of m and every meta descending from
// it.
func (rt *Runtime) invalidate(m *Meta, sel *Object) {
	seen := contains.Set{}
	stack := []*Meta{m}
	seen.Add(m.id)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := cur.cache.Delete(sel); ok {
			rt.stats.Invalidations++
		}
		cur.children.Range(func(child *Meta, _ struct{}) bool {
			if seen.Add(child.id) {
				stack = append(stack, child)
			}
			return true
		})
	}
}

// AddMethod installs method under sel directly on target. If target shares its
// meta-object with other values, it first receives a private clone, so the
// new method affects target alone. The selector becomes immortal.
func (rt *Runtime) AddMethod(target Value, sel *Object, method *Method) error {
	o := target.Object()
	if o == nil {
		return fmt.Errorf("cannot add method %s to %v: %w", rt.symbolName(sel), target, ErrImmediate)
	}
	rt.checkLive(o, sel)
	m := o.meta.own(rt, o)
	m.methods.Put(sel, method)
	rt.Eternize(Ref(sel))
	rt.invalidate(m, sel)
	return nil
}

// AddMethods installs each function in methods on target under its interned
// name.
func (rt *Runtime) AddMethods(target Value, methods Methods) error {
	for name, fn := range methods {
		if err := rt.AddMethod(target, rt.Intern(name), NewMethod(name, fn)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMethod removes the method target itself defines for sel. Objects
// sharing a class meta-object have no methods of their own to remove.
func (rt *Runtime) RemoveMethod(target Value, sel *Object) error {
	o := target.Object()
	if o == nil {
		return fmt.Errorf("cannot remove method %s from %v: %w", rt.symbolName(sel), target, ErrImmediate)
	}
	rt.checkLive(o, sel)
	if !o.meta.owned(o) {
		return fmt.Errorf("cannot remove method %s from %v: %w", rt.symbolName(sel), o, ErrSharedMeta)
	}
	m := o.meta.get()
	if _, ok := m.methods.Delete(sel); !ok {
		return fmt.Errorf("cannot remove method %s from %v: %w", rt.symbolName(sel), o, ErrNoMethod)
	}
	rt.invalidate(m, sel)
	return nil
}

// Proto returns the effective parent of target: the owner of its meta's
// parent if target owns its meta, otherwise the owner of the shared meta.
// For immediates, it is the class registered for the value's kind. The
// result is nil at the root.
func (rt *Runtime) Proto(target Value) *Object {
	o := target.Object()
	if o == nil {
		return rt.immediates[target.Kind()]
	}
	rt.checkLive(o, nil)
	m := o.meta.get()
	if m.owner != o {
		return m.owner
	}
	if m.parent == nil {
		return nil
	}
	return m.parent.owner
}

// MetaOf returns the meta-object which dispatch starts from for v, or nil if
// v is an immediate of a kind with no registered class.
func (rt *Runtime) MetaOf(v Value) *Meta {
	if o := v.Object(); o != nil {
		return o.meta.get()
	}
	if c := rt.immediates[v.Kind()]; c != nil {
		return c.meta.get()
	}
	return nil
}
