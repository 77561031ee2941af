package internal

// CollectFrame is a collect region: a scope whose newly created objects are
// released when the scope ends.
type CollectFrame struct {
	objects []*Object
	// depth is the frame's index in the collect stack.
	depth int
	// performs is the perform stack depth when the frame was pushed.
	performs int
	popped   bool
}

// Len returns the number of objects registered in the frame.
func (f *CollectFrame) Len() int {
	return len(f.objects)
}

// CollectPush begins a collect region.
func (rt *Runtime) CollectPush() *CollectFrame {
	f := &CollectFrame{
		objects:  make([]*Object, 0, 8),
		depth:    len(rt.collects),
		performs: len(rt.performs),
	}
	rt.collects = append(rt.collects, f)
	return f
}

// CollectPop ends a collect region, releasing each object registered in it
// exactly once, most recently registered first. f must be the innermost
// collect frame, and no perform frame pushed inside it may still be active.
func (rt *Runtime) CollectPop(f *CollectFrame) {
	if f.popped || len(rt.collects) == 0 || rt.collects[len(rt.collects)-1] != f {
		rt.fault(FaultFrameOrder, nil, Absent, "collect frame %d popped out of order (stack depth %d)", f.depth, len(rt.collects))
		return
	}
	if len(rt.performs) != f.performs {
		rt.fault(FaultFrameOrder, nil, Absent, "collect frame %d popped with %d perform frames still active inside it", f.depth, len(rt.performs)-f.performs)
		return
	}
	rt.collects = rt.collects[:len(rt.collects)-1]
	rt.releaseFrame(f)
}

// releaseFrame releases a popped frame's objects in reverse order.
func (rt *Runtime) releaseFrame(f *CollectFrame) {
	f.popped = true
	objs := f.objects
	f.objects = nil
	for i := len(objs) - 1; i >= 0; i-- {
		rt.Release(Ref(objs[i]))
	}
}

// CollectAdd registers v with the innermost collect frame, so that it is
// released when that frame is popped. Immediates and immortal objects are
// ignored. With no collect frame active, v is leaked on purpose: nothing owns
// it, so nothing may free it.
func (rt *Runtime) CollectAdd(v Value) Value {
	o := v.Object()
	if o == nil || o.Immortal() {
		return v
	}
	if len(rt.collects) == 0 {
		rt.stats.Leaked++
		if rt.Config.WarnLeaks {
			logLifecycle.Warningf("%v created outside any collect frame; it will never be freed unless released explicitly", o)
		}
		return v
	}
	f := rt.collects[len(rt.collects)-1]
	f.objects = append(f.objects, o)
	return v
}

// Collect runs f inside a new collect region. The region is popped when f
// returns, or when an exception unwinds through it.
func (rt *Runtime) Collect(f func()) {
	fr := rt.CollectPush()
	defer func() {
		if !fr.popped {
			// Unwinding. Frames pushed inside f were abandoned along with fr.
			rt.unwindCollects(fr.depth)
		}
	}()
	f()
	rt.CollectPop(fr)
}

// CollectDepth returns the number of active collect frames.
func (rt *Runtime) CollectDepth() int {
	return len(rt.collects)
}

// unwindCollects pops collect frames until depth remain.
func (rt *Runtime) unwindCollects(depth int) {
	for len(rt.collects) > depth {
		f := rt.collects[len(rt.collects)-1]
		logPerform.Debugf("unwinding collect frame %d with %d objects", f.depth, len(f.objects))
		rt.collects = rt.collects[:len(rt.collects)-1]
		rt.releaseFrame(f)
	}
}
