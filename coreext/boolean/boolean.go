// Package boolean installs the Boolean class for boolean immediates.
package boolean

import (
	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"
)

func init() {
	internal.Register(initBoolean)
}

func initBoolean(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"not":      not,
		"and":      and,
		"or":       or,
		"xor":      xor,
		"asString": asString,
	}
	c, err := rt.DefineClass("Boolean", nil, 0, slots)
	if err != nil {
		return err
	}
	rt.SetImmediateClass(metaobj.KindBool, c)
	return nil
}

// truth returns the receiver as a Go bool, raising a TypeError for objects
// that found a Boolean method by inheritance.
func truth(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) bool {
	if self.Kind() != metaobj.KindBool {
		rt.Raisef("TypeError", "receiver of %s must be Boolean, not %s", call.Name(), rt.TypeName(self))
	}
	return self.AsBool()
}

// not is a Boolean method.
func not(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(!truth(rt, self, call))
}

// and is a Boolean method.
//
// and returns whether both the receiver and the argument are truthy.
func and(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(truth(rt, self, call) && rt.Truthy(call.Arg(0)))
}

// or is a Boolean method.
//
// or returns whether either the receiver or the argument is truthy.
func or(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(truth(rt, self, call) || rt.Truthy(call.Arg(0)))
}

// xor is a Boolean method.
func xor(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(truth(rt, self, call) != rt.Truthy(call.Arg(0)))
}

// asString is a Boolean method.
func asString(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if truth(rt, self, call) {
		return str.New(rt, "true")
	}
	return str.New(rt, "false")
}
