// Package str provides heap strings for metaobj runtimes.
package str

import (
	"strconv"
	"strings"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/internal"

	"github.com/zeebo/xxh3"
)

// Text is the value of a String object. Immutable strings never change after
// creation; mutable strings may be appended to.
type Text struct {
	S string
}

func (t *Text) String() string {
	return t.S
}

// Class returns the String class of rt.
func Class(rt *metaobj.Runtime) *metaobj.Object {
	c, ok := rt.Class("String")
	if !ok {
		panic("metaobj/str: String is not installed")
	}
	return c
}

// New creates a transient immutable String.
func New(rt *metaobj.Runtime, s string) metaobj.Value {
	return metaobj.Ref(rt.Instantiate(Class(rt), &Text{S: s}))
}

// NewMutable creates a transient mutable String.
func NewMutable(rt *metaobj.Runtime, s string) metaobj.Value {
	o := rt.Instantiate(Class(rt), &Text{S: s})
	o.SetMutable(true)
	return metaobj.Ref(o)
}

// Of returns the text of a String or Symbol value.
func Of(v metaobj.Value) (string, bool) {
	if s, ok := metaobj.SymbolName(v); ok {
		return s, true
	}
	t, ok := textOf(v)
	if !ok {
		return "", false
	}
	return t.S, true
}

// ArgAt returns the nth argument of call as a string. If the argument is not
// a String or Symbol, a TypeError is raised.
func ArgAt(rt *metaobj.Runtime, call *metaobj.Call, n int) string {
	v := call.Arg(n)
	s, ok := Of(v)
	if !ok {
		rt.Raisef("TypeError", "argument %d to %s must be String, not %s", n, call.Name(), rt.TypeName(v))
	}
	return s
}

func init() {
	internal.Register(initString)
}

func initString(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"create":      create,
		"hash":        hash,
		"equals":      equals,
		"copy":        strCopy,
		"mutableCopy": mutableCopy,
		"asString":    strSelf,
		"description": strSelf,
		"asSymbol":    asSymbol,
		"asNumber":    asNumber,
		"size":        size,
		"at":          at,
		"append":      appendStr,
		"concat":      concat,
		"contains":    contains,
		"upper":       upper,
		"lower":       lower,
	}
	if _, err := rt.DefineClass("String", nil, 0, slots); err != nil {
		return err
	}
	// Strings compare equal to symbols with the same text, so symbols must
	// compare equal to strings in turn.
	return rt.AddMethod(metaobj.Ref(rt.SymbolClass), rt.Intern("equals"), metaobj.NewMethod("equals", symbolEquals))
}

// textOf returns the Text of a String object.
func textOf(v metaobj.Value) (*Text, bool) {
	o := v.Object()
	if o == nil || o.Freed() {
		return nil, false
	}
	t, ok := o.Value.(*Text)
	return t, ok
}

// text returns the receiver's Text, raising a TypeError if the receiver is
// the class or another object without one.
func text(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) *Text {
	t, ok := textOf(self)
	if !ok {
		rt.Raisef("TypeError", "receiver of %s must be String, not %s", call.Name(), rt.TypeName(self))
	}
	return t
}

// create is a String method.
//
// create makes a new immutable String from its argument, or an empty one.
func create(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if call.ArgCount() == 0 {
		return New(rt, "")
	}
	return New(rt, ArgAt(rt, call, 0))
}

// hash is a String method.
//
// hash returns the xxh3 digest of the string's bytes.
func hash(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	t, ok := textOf(self)
	if !ok {
		return rt.SuperSend(call, self)
	}
	return metaobj.Uint(xxh3.HashString(t.S))
}

// equals is a String method.
//
// equals compares text with another String or a Symbol.
func equals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	t, ok := textOf(self)
	if !ok {
		return rt.SuperSend(call, self, call.Args...)
	}
	s, ok := Of(call.Arg(0))
	return metaobj.Bool(ok && s == t.S)
}

// symbolEquals is a Symbol method.
//
// equals compares a symbol with another Symbol by identity and with a String
// by text.
func symbolEquals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	name, ok := metaobj.SymbolName(self)
	if !ok {
		return rt.SuperSend(call, self, call.Args...)
	}
	arg := call.Arg(0)
	if metaobj.IsSymbol(arg) {
		return metaobj.Bool(arg == self)
	}
	t, ok := textOf(arg)
	return metaobj.Bool(ok && t.S == name)
}

// strCopy is a String method.
//
// copy returns an immutable String with the same text. Immutable strings
// return themselves.
func strCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	t, ok := textOf(self)
	if !ok {
		return rt.SuperSend(call, self)
	}
	if !self.Object().Mutable() {
		return rt.CollectAdd(rt.Retain(self))
	}
	return New(rt, t.S)
}

// mutableCopy is a String method.
//
// mutableCopy returns a new mutable String with the same text.
func mutableCopy(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return NewMutable(rt, text(rt, self, call).S)
}

// strSelf is a String method.
//
// asString and description return the receiver.
func strSelf(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	text(rt, self, call)
	return self
}

// asSymbol is a String method.
//
// asSymbol interns the string.
func asSymbol(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Ref(rt.Intern(text(rt, self, call).S))
}

// asNumber is a String method.
//
// asNumber parses the string as a number. Strings of decimal digits give
// unsigned integers; anything else strconv accepts gives a float.
func asNumber(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	s := strings.TrimSpace(text(rt, self, call).S)
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return metaobj.Uint(u)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		rt.Raisef("ParseError", "%q is not a number", s)
	}
	return metaobj.Float(f)
}

// size is a String method.
//
// size returns the number of bytes in the string.
func size(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(len(text(rt, self, call).S)))
}

// at is a String method.
//
// at returns the byte at the given index, or More past the end.
func at(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	i := call.Arg(0)
	if i.Kind() != metaobj.KindUint {
		rt.Raisef("TypeError", "argument 0 to at must be an unsigned integer, not %s", rt.TypeName(i))
	}
	s := text(rt, self, call).S
	if i.AsUint() >= uint64(len(s)) {
		return metaobj.More
	}
	return metaobj.Uint(uint64(s[i.AsUint()]))
}

// appendStr is a String method.
//
// append adds its argument's text to a mutable string and returns the
// receiver. Appending to an immutable string raises an Immutable exception.
func appendStr(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	t := text(rt, self, call)
	if !self.Object().Mutable() {
		rt.Raisef("Immutable", "cannot append to an immutable String")
	}
	t.S += ArgAt(rt, call, 0)
	return self
}

// concat is a String method.
//
// concat returns a new immutable String joining the receiver and its
// argument.
func concat(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, text(rt, self, call).S+ArgAt(rt, call, 0))
}

// contains is a String method.
//
// contains returns whether the argument occurs in the string.
func contains(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(strings.Contains(text(rt, self, call).S, ArgAt(rt, call, 0)))
}

// upper is a String method.
func upper(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, strings.ToUpper(text(rt, self, call).S))
}

// lower is a String method.
func lower(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, strings.ToLower(text(rt, self, call).S))
}
