package internal

// Retain increments v's retain count and returns v. Immediates and immortal
// objects are unaffected. The count saturates at the immortal sentinel.
func (rt *Runtime) Retain(v Value) Value {
	o := v.Object()
	if o == nil {
		return v
	}
	rt.checkLive(o, nil)
	o.header = o.header.Retained()
	return v
}

// Release decrements v's retain count. When the count reaches zero, the
// object's destroy method runs and the object is freed. Releasing an object
// whose count is already zero, or one that has been freed, is a fault.
// Immediates and immortal objects are unaffected.
func (rt *Runtime) Release(v Value) {
	o := v.Object()
	if o == nil {
		return
	}
	if o.Freed() {
		rt.fault(FaultOverRelease, nil, v, "release of freed %v", o)
		return
	}
	h, zero, ok := o.header.Released()
	if !ok {
		rt.fault(FaultOverRelease, nil, v, "release of %v with retain count zero", o)
		return
	}
	o.header = h
	if zero {
		rt.destroy(o)
	}
}

// Eternize makes v immortal. Immortal objects are never destroyed, and retain
// and release leave them unchanged.
func (rt *Runtime) Eternize(v Value) Value {
	o := v.Object()
	if o == nil {
		return v
	}
	rt.checkLive(o, nil)
	o.header = o.header.Eternal()
	return v
}

// Destroy frees v immediately. v's retain count must be zero; destroying a
// live or immortal object is a fault.
func (rt *Runtime) Destroy(v Value) {
	o := v.Object()
	if o == nil {
		return
	}
	rt.checkLive(o, rt.sel.destroy)
	if o.header.Immortal() || o.header.Count() != 0 {
		rt.fault(FaultDestroyLive, rt.sel.destroy, v, "destroy of %v with %v", o, o.header)
		return
	}
	rt.destroy(o)
}

// destroy runs o's destroy method and marks it freed. Any private meta it
// owns is detached from its parent.
func (rt *Runtime) destroy(o *Object) {
	v := Ref(o)
	rt.Send(v, rt.sel.destroy)
	m := o.meta.get()
	owned := o.meta.owned(o)
	logLifecycle.Debugf("freed %v", o)
	o.meta.m = nil
	if owned {
		rt.detachMeta(m)
	} else {
		m.users--
		if m.users == 0 && m.owner.Freed() {
			rt.detachMeta(m)
		}
	}
	o.Value = nil
	rt.stats.Destroyed++
}
