package number_test

import (
	"math"
	"testing"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/number"
	"github.com/zephyrtronium/metaobj/testutils"
)

func TestNumberClass(t *testing.T) {
	rt := testutils.Runtime(t)
	c, ok := rt.Class("Number")
	if !ok {
		t.Fatal("no Number class")
	}
	testutils.CheckClass(t, rt, "Number", c, rt.BaseObject)
	testutils.CheckMethods(t, rt, c, []string{
		"+", "-", "*", "/", "%", "compare", "equals", "hash", "asString",
		"asFloat", "asUint", "isNaN", "floor",
	})
	for _, k := range []metaobj.Kind{metaobj.KindFloat, metaobj.KindUint} {
		if rt.ImmediateClass(k) != c {
			t.Errorf("%v immediates do not dispatch through Number", k)
		}
	}
}

func num(v metaobj.Value) func(*metaobj.Runtime) metaobj.Value {
	return func(*metaobj.Runtime) metaobj.Value { return v }
}

func arg(v metaobj.Value) func(*metaobj.Runtime) []metaobj.Value {
	return func(*metaobj.Runtime) []metaobj.Value { return []metaobj.Value{v} }
}

func TestNumberMethods(t *testing.T) {
	u, f := metaobj.Uint, metaobj.Float
	cases := map[string]testutils.SendTestCase{
		"AddUint":         {Receiver: num(u(2)), Selector: "+", Args: arg(u(3)), Pass: testutils.PassIdentical(u(5))},
		"AddMixed":        {Receiver: num(u(2)), Selector: "+", Args: arg(f(0.5)), Pass: testutils.PassIdentical(f(2.5))},
		"AddNotNumber":    {Receiver: num(u(2)), Selector: "+", Args: arg(metaobj.Bool(true)), Pass: testutils.PassFailure("TypeError")},
		"SubUint":         {Receiver: num(u(5)), Selector: "-", Args: arg(u(3)), Pass: testutils.PassIdentical(u(2))},
		"SubNegative":     {Receiver: num(u(3)), Selector: "-", Args: arg(u(5)), Pass: testutils.PassIdentical(f(-2))},
		"MulFloat":        {Receiver: num(f(1.5)), Selector: "*", Args: arg(f(2)), Pass: testutils.PassIdentical(f(3))},
		"DivUint":         {Receiver: num(u(7)), Selector: "/", Args: arg(u(2)), Pass: testutils.PassIdentical(u(3))},
		"DivZero":         {Receiver: num(u(7)), Selector: "/", Args: arg(u(0)), Pass: testutils.PassFailure("ZeroDivision")},
		"DivFloatZero":    {Receiver: num(f(1)), Selector: "/", Args: arg(f(0)), Pass: testutils.PassIdentical(f(math.Inf(1)))},
		"ModUint":         {Receiver: num(u(7)), Selector: "%", Args: arg(u(4)), Pass: testutils.PassIdentical(u(3))},
		"ModZero":         {Receiver: num(u(7)), Selector: "%", Args: arg(u(0)), Pass: testutils.PassFailure("ZeroDivision")},
		"CompareLess":     {Receiver: num(u(1)), Selector: "compare", Args: arg(f(1.5)), Pass: testutils.PassIdentical(f(-1))},
		"CompareEqual":    {Receiver: num(u(2)), Selector: "compare", Args: arg(u(2)), Pass: testutils.PassIdentical(f(0))},
		"CompareGreater":  {Receiver: num(f(3)), Selector: "compare", Args: arg(u(2)), Pass: testutils.PassIdentical(f(1))},
		"EqualsMixed":     {Receiver: num(u(1)), Selector: "equals", Args: arg(f(1)), Pass: testutils.PassIdentical(metaobj.Bool(true))},
		"EqualsInexact":   {Receiver: num(u(1<<53 + 1)), Selector: "equals", Args: arg(f(1 << 53)), Pass: testutils.PassIdentical(metaobj.Bool(false))},
		"EqualsNotNumber": {Receiver: num(u(1)), Selector: "equals", Args: arg(metaobj.Bool(true)), Pass: testutils.PassIdentical(metaobj.Bool(false))},
		"EqualsNaN":       {Receiver: num(f(math.NaN())), Selector: "equals", Args: arg(f(math.NaN())), Pass: testutils.PassIdentical(metaobj.Bool(false))},
		"AsStringUint":    {Receiver: num(u(12)), Selector: "asString", Pass: testutils.PassDescription("12")},
		"AsStringFloat":   {Receiver: num(f(0.25)), Selector: "asString", Pass: testutils.PassDescription("0.25")},
		"AsFloat":         {Receiver: num(u(4)), Selector: "asFloat", Pass: testutils.PassIdentical(f(4))},
		"AsUint":          {Receiver: num(f(4.75)), Selector: "asUint", Pass: testutils.PassIdentical(u(4))},
		"AsUintNegative":  {Receiver: num(f(-1)), Selector: "asUint", Pass: testutils.PassFailure("RangeError")},
		"AsUintNaN":       {Receiver: num(f(math.NaN())), Selector: "asUint", Pass: testutils.PassFailure("RangeError")},
		"IsNaN":           {Receiver: num(f(math.NaN())), Selector: "isNaN", Pass: testutils.PassIdentical(metaobj.Bool(true))},
		"IsNaNUint":       {Receiver: num(u(0)), Selector: "isNaN", Pass: testutils.PassIdentical(metaobj.Bool(false))},
		"Floor":           {Receiver: num(f(-1.5)), Selector: "floor", Pass: testutils.PassIdentical(f(-2))},
		"ClassReceiver": {
			Receiver: func(rt *metaobj.Runtime) metaobj.Value {
				c, _ := rt.Class("Number")
				return metaobj.Ref(c)
			},
			Selector: "+",
			Args:     arg(u(1)),
			Pass:     testutils.PassFailure("TypeError"),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// TestNumberHash tests that numerically equal numbers hash alike.
func TestNumberHash(t *testing.T) {
	rt := testutils.Runtime(t)
	h := func(v metaobj.Value) uint64 {
		return rt.SendName(v, "hash").AsUint()
	}
	if h(metaobj.Uint(3)) != h(metaobj.Float(3)) {
		t.Errorf("3 and 3.0 hash differently")
	}
	if h(metaobj.Float(0)) != h(metaobj.Float(math.Copysign(0, -1))) {
		t.Errorf("0 and -0 hash differently")
	}
	if h(metaobj.Float(3)) != rt.Hash(metaobj.Float(3)) {
		t.Errorf("hash method disagrees with the runtime")
	}
	if !rt.Equal(metaobj.Uint(3), metaobj.Float(3)) || !rt.Equal(metaobj.Float(3), metaobj.Uint(3)) {
		t.Errorf("runtime equality disagrees with equals")
	}
	if h(metaobj.Uint(3)) == h(metaobj.Uint(4)) {
		t.Errorf("3 and 4 hash alike")
	}
	c, _ := rt.Class("Number")
	if !rt.Equal(metaobj.Ref(c), metaobj.Ref(c)) {
		t.Errorf("Number class is unequal to itself")
	}
	rt.Hash(metaobj.Ref(c))
}

func TestIsNumber(t *testing.T) {
	cases := map[string]struct {
		v    metaobj.Value
		want bool
	}{
		"Uint":   {metaobj.Uint(1), true},
		"Float":  {metaobj.Float(1), true},
		"Bool":   {metaobj.Bool(true), false},
		"Absent": {metaobj.Absent, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := number.IsNumber(c.v); got != c.want {
				t.Errorf("wrong result: want %t, have %t", c.want, got)
			}
		})
	}
}
