package internal_test

import (
	"math"
	"strings"
	"testing"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/testutils"
)

// TestHashEqual tests the runtime's semantic hashing and equality.
func TestHashEqual(t *testing.T) {
	rt := testutils.Runtime(t)
	c := defineClass(t, rt, "Plain", nil, nil)
	rt.Collect(func() {
		a, b := rt.Create(c), rt.Create(c)
		cases := map[string]struct {
			x, y metaobj.Value
			eq   bool
		}{
			"SameObject":  {a, a, true},
			"OtherObject": {a, b, false},
			"Zeros":       {metaobj.Float(0), metaobj.Float(math.Copysign(0, -1)), true},
			"Floats":      {metaobj.Float(1.5), metaobj.Float(1.5), true},
			"Uints":       {metaobj.Uint(3), metaobj.Uint(3), true},
			"UintFloat":   {metaobj.Uint(3), metaobj.Float(3), true},
			"FloatUint":   {metaobj.Float(3), metaobj.Uint(3), true},
			"Fraction":    {metaobj.Uint(3), metaobj.Float(3.5), false},
			"Negative":    {metaobj.Float(-3), metaobj.Uint(3), false},
			"Rounded":     {metaobj.Uint(1<<53 + 1), metaobj.Float(1 << 53), false},
			"UintBool":    {metaobj.Uint(1), metaobj.Bool(true), false},
			"Bools":       {metaobj.Bool(true), metaobj.Bool(true), true},
			"Symbols":     {metaobj.Ref(rt.Intern("s")), metaobj.Ref(rt.Intern("s")), true},
			"Absent":      {metaobj.Absent, metaobj.Absent, true},
		}
		for name, cs := range cases {
			t.Run(name, func(t *testing.T) {
				if r := rt.Equal(cs.x, cs.y); r != cs.eq {
					t.Errorf("Equal: want %t, have %t", cs.eq, r)
				}
				if cs.eq && rt.Hash(cs.x) != rt.Hash(cs.y) {
					t.Errorf("equal values hash differently")
				}
			})
		}
		nan := metaobj.Float(math.NaN())
		if rt.Equal(nan, nan) {
			t.Errorf("NaN equals itself")
		}
	})
}

// TestDescribe tests diagnostic rendering.
func TestDescribe(t *testing.T) {
	rt := testutils.Runtime(t)
	c := defineClass(t, rt, "Described", nil, nil)
	broken := defineClass(t, rt, "Broken", nil, metaobj.Methods{
		"description": func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
			rt.Raisef("Broken", "cannot describe")
			return metaobj.Absent
		},
	})
	rt.Collect(func() {
		cases := map[string]struct {
			v      metaobj.Value
			prefix string
		}{
			"Symbol":    {metaobj.Ref(rt.Intern("sym")), "sym"},
			"Exception": {metaobj.Ref(rt.NewException("E", "why", metaobj.Absent)), "E: why"},
			"Plain":     {rt.Create(c), "Described_0x"},
			"Broken":    {rt.Create(broken), "Broken_0x"},
			"Uint":      {metaobj.Uint(5), "5u"},
			"Absent":    {metaobj.Absent, "<absent>"},
		}
		for name, cs := range cases {
			t.Run(name, func(t *testing.T) {
				if s := rt.Describe(cs.v); !strings.HasPrefix(s, cs.prefix) {
					t.Errorf("want prefix %q, have %q", cs.prefix, s)
				}
			})
		}
	})
}

// TestTypeName tests type names for values.
func TestTypeName(t *testing.T) {
	rt := testutils.Runtime(t)
	cases := map[string]struct {
		v    metaobj.Value
		want string
	}{
		"Class":  {metaobj.Ref(rt.ExceptionClass), "Exception"},
		"Symbol": {metaobj.Ref(rt.Intern("x")), "Symbol"},
		"Code":   {metaobj.Code(metaobj.NewMethod("m", nil)), "Method"},
		"Bool":   {metaobj.Bool(true), "bool"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if s := rt.TypeName(c.v); s != c.want {
				t.Errorf("want %q, have %q", c.want, s)
			}
		})
	}
}

// TestMethodValues tests code values as receivers.
func TestMethodValues(t *testing.T) {
	rt := testutils.Runtime(t)
	double := metaobj.NewMethod("double", func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
		return metaobj.Uint(self.AsUint()*2 + uint64(call.ArgCount()))
	})
	code := metaobj.Code(double)
	if r := rt.SendName(code, "activate", metaobj.Uint(20), metaobj.Absent); r != metaobj.Uint(41) {
		t.Errorf("activate: %v", r)
	}
	if name, _ := metaobj.SymbolName(rt.SendName(code, "name")); name != "double" {
		t.Errorf("name: %q", name)
	}
	if rt.Proto(code) != rt.MethodClass {
		t.Errorf("code values do not dispatch through Method")
	}
}

// TestCopy tests the root copy methods.
func TestCopy(t *testing.T) {
	rt := testutils.Runtime(t)
	c := defineClass(t, rt, "Copyable", nil, nil)
	rt.Collect(func() {
		v := rt.Create(c)
		v.Object().Value = 7
		cp := rt.SendName(v, "copy")
		if cp != v {
			t.Errorf("copy of an immutable object is a new object")
		}
		if v.Object().RetainCount() != 2 {
			t.Errorf("copy did not retain: %v", v.Object().Header())
		}
		m := rt.SendName(v, "mutableCopy")
		if m == v || !m.Object().Mutable() || m.Object().Value != 7 {
			t.Errorf("mutableCopy gave %v", m)
		}
		m2 := rt.SendName(m, "copy")
		if m2 == m || !m2.Object().Mutable() {
			t.Errorf("copy of a mutable object gave %v", m2)
		}
	})
}

// TestNewRuntimeIndependent tests that runtimes share no state.
func TestNewRuntimeIndependent(t *testing.T) {
	a, b := testutils.Runtime(t), testutils.Runtime(t)
	if a.Intern("x") == b.Intern("x") {
		t.Errorf("runtimes share symbols")
	}
	if a.BaseObject == b.BaseObject {
		t.Errorf("runtimes share root classes")
	}
	f := a.CollectPush()
	if b.CollectDepth() != 0 {
		t.Errorf("runtimes share collect stacks")
	}
	a.CollectPop(f)
}
