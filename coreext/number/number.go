// Package number installs the Number class, through which float and unsigned
// integer immediates dispatch.
package number

import (
	"math"
	"strconv"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"
)

// IsNumber returns whether v is a float or unsigned integer.
func IsNumber(v metaobj.Value) bool {
	k := v.Kind()
	return k == metaobj.KindFloat || k == metaobj.KindUint
}

// AsFloat converts a number to float64.
func AsFloat(v metaobj.Value) float64 {
	if v.Kind() == metaobj.KindUint {
		return float64(v.AsUint())
	}
	return v.AsFloat()
}

// ArgAt returns the nth argument of call, which must be a number. Otherwise,
// a TypeError is raised.
func ArgAt(rt *metaobj.Runtime, call *metaobj.Call, n int) metaobj.Value {
	v := call.Arg(n)
	if !IsNumber(v) {
		rt.Raisef("TypeError", "argument %d to %s must be Number, not %s", n, call.Name(), rt.TypeName(v))
	}
	return v
}

func init() {
	internal.Register(initNumber)
}

func initNumber(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"+":        add,
		"-":        sub,
		"*":        mul,
		"/":        div,
		"%":        mod,
		"compare":  compare,
		"equals":   equals,
		"hash":     hash,
		"asString": asString,
		"asFloat":  asFloat,
		"asUint":   asUint,
		"isNaN":    isNaN,
		"floor":    floor,
	}
	c, err := rt.DefineClass("Number", nil, 0, slots)
	if err != nil {
		return err
	}
	rt.SetImmediateClass(metaobj.KindFloat, c)
	rt.SetImmediateClass(metaobj.KindUint, c)
	return nil
}

// receiver raises a TypeError if a Number method was found through an object
// rather than a number, as when it is sent to the class itself.
func receiver(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) {
	if !IsNumber(self) {
		rt.Raisef("TypeError", "receiver of %s must be Number, not %s", call.Name(), rt.TypeName(self))
	}
}

// both reports whether self and the first argument are both unsigned
// integers. Mixed operands are computed in floating point.
func both(self, other metaobj.Value) bool {
	return self.Kind() == metaobj.KindUint && other.Kind() == metaobj.KindUint
}

// add is a Number method.
//
// + returns the sum of the receiver and the argument. Unsigned sums wrap.
func add(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) {
		return metaobj.Uint(self.AsUint() + y.AsUint())
	}
	return metaobj.Float(AsFloat(self) + AsFloat(y))
}

// sub is a Number method.
//
// - returns the difference of the receiver and the argument. An unsigned
// difference that would be negative is computed in floating point instead.
func sub(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) && self.AsUint() >= y.AsUint() {
		return metaobj.Uint(self.AsUint() - y.AsUint())
	}
	return metaobj.Float(AsFloat(self) - AsFloat(y))
}

// mul is a Number method.
//
// * returns the product of the receiver and the argument. Unsigned products
// wrap.
func mul(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) {
		return metaobj.Uint(self.AsUint() * y.AsUint())
	}
	return metaobj.Float(AsFloat(self) * AsFloat(y))
}

// div is a Number method.
//
// / divides the receiver by the argument. Unsigned division truncates and
// raises ZeroDivision for a zero divisor; float division follows IEEE 754.
func div(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) {
		if y.AsUint() == 0 {
			rt.Raisef("ZeroDivision", "%d / 0", self.AsUint())
		}
		return metaobj.Uint(self.AsUint() / y.AsUint())
	}
	return metaobj.Float(AsFloat(self) / AsFloat(y))
}

// mod is a Number method.
//
// % returns the remainder of dividing the receiver by the argument.
func mod(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) {
		if y.AsUint() == 0 {
			rt.Raisef("ZeroDivision", "%d %% 0", self.AsUint())
		}
		return metaobj.Uint(self.AsUint() % y.AsUint())
	}
	return metaobj.Float(math.Mod(AsFloat(self), AsFloat(y)))
}

// compare is a Number method.
//
// compare returns -1, 0, or 1 as the receiver is less than, equal to, or
// greater than the argument, or NaN if they are unordered.
func compare(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	y := ArgAt(rt, call, 0)
	if both(self, y) {
		a, b := self.AsUint(), y.AsUint()
		switch {
		case a < b:
			return metaobj.Float(-1)
		case a > b:
			return metaobj.Float(1)
		}
		return metaobj.Float(0)
	}
	a, b := AsFloat(self), AsFloat(y)
	switch {
	case a < b:
		return metaobj.Float(-1)
	case a > b:
		return metaobj.Float(1)
	case a == b:
		return metaobj.Float(0)
	}
	return metaobj.Float(math.NaN())
}

// equals is a Number method.
//
// equals compares numerically, so 1 equals 1.0. Non-numbers are unequal.
// The class object itself compares by identity.
func equals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if !IsNumber(self) {
		return rt.SuperSend(call, self, call.Args...)
	}
	y := call.Arg(0)
	if !IsNumber(y) {
		return metaobj.Bool(false)
	}
	return metaobj.Bool(metaobj.NumbersEqual(self, y))
}

// hash is a Number method.
//
// hash gives numbers that are equal the same digest. Integral floats hash as
// the corresponding unsigned integer.
func hash(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if !IsNumber(self) {
		return rt.SuperSend(call, self)
	}
	return metaobj.Uint(rt.Hash(self))
}

// asString is a Number method.
//
// asString formats the number in the shortest form that parses back to it.
func asString(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	if self.Kind() == metaobj.KindUint {
		return str.New(rt, strconv.FormatUint(self.AsUint(), 10))
	}
	return str.New(rt, strconv.FormatFloat(self.AsFloat(), 'g', -1, 64))
}

// asFloat is a Number method.
func asFloat(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	return metaobj.Float(AsFloat(self))
}

// asUint is a Number method.
//
// asUint truncates the receiver toward zero. Negative, infinite, and NaN
// receivers raise a RangeError.
func asUint(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	if self.Kind() == metaobj.KindUint {
		return self
	}
	f := math.Trunc(self.AsFloat())
	if !(f >= 0 && f < (1<<64)) {
		rt.Raisef("RangeError", "%v has no unsigned integer value", self.AsFloat())
	}
	return metaobj.Uint(uint64(f))
}

// isNaN is a Number method.
func isNaN(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(self.Kind() == metaobj.KindFloat && math.IsNaN(self.AsFloat()))
}

// floor is a Number method.
func floor(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	receiver(rt, self, call)
	if self.Kind() == metaobj.KindUint {
		return self
	}
	return metaobj.Float(math.Floor(self.AsFloat()))
}
