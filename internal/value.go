package internal

import (
	"fmt"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds.
const (
	// KindAbsent is the kind of the zero Value.
	KindAbsent Kind = iota
	// KindMore is the kind of the More sentinel.
	KindMore
	// KindBool is a boolean immediate.
	KindBool
	// KindFloat is a float64 immediate.
	KindFloat
	// KindUint is a uint64 immediate.
	KindUint
	// KindCode is a reference to a Method.
	KindCode
	// KindObject is a reference to a heap-resident Object.
	KindObject

	numKinds
)

var kindNames = [...]string{"absent", "more", "bool", "float", "uint", "code", "object"}

// String returns the name of the kind.
func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Value is the handle used for every runtime value. Immediate values hold
// their entire state in the handle; object values refer to an Object, whose
// header carries the meta-object and retain count.
//
// Values are comparable. Two object Values are equal iff they refer to the
// same Object.
type Value struct {
	obj  *Object
	code *Method
	word uint64
	kind Kind
}

// Absent is the value that represents the absence of a value. It is the zero
// Value.
var Absent Value

// More is the sentinel which terminates explicit argument lists and signals
// that a collection protocol has no further element.
var More = Value{kind: KindMore}

// Bool returns a boolean immediate.
func Bool(b bool) Value {
	if b {
		return Value{word: 1, kind: KindBool}
	}
	return Value{kind: KindBool}
}

// Float returns a float64 immediate.
func Float(f float64) Value {
	return Value{word: math.Float64bits(f), kind: KindFloat}
}

// Uint returns a uint64 immediate.
func Uint(u uint64) Value {
	return Value{word: u, kind: KindUint}
}

// Code returns a Value referring to a method.
func Code(m *Method) Value {
	if m == nil {
		return Absent
	}
	return Value{code: m, kind: KindCode}
}

// Ref returns a Value referring to an object. Ref(nil) is Absent.
func Ref(o *Object) Value {
	if o == nil {
		return Absent
	}
	return Value{obj: o, kind: KindObject}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent returns whether v is the Absent sentinel.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// IsMore returns whether v is the More sentinel.
func (v Value) IsMore() bool {
	return v.kind == KindMore
}

// IsObject returns whether v refers to a heap object.
func (v Value) IsObject() bool {
	return v.kind == KindObject
}

// IsImmediate returns whether v holds its whole state in the handle.
func (v Value) IsImmediate() bool {
	return v.kind != KindObject
}

// AsBool returns the boolean payload. Panics if v is not a boolean.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic("metaobj: Value.AsBool: not a bool: " + v.kind.String())
	}
	return v.word != 0
}

// AsFloat returns the float64 payload. Panics if v is not a float.
func (v Value) AsFloat() float64 {
	if v.kind != KindFloat {
		panic("metaobj: Value.AsFloat: not a float: " + v.kind.String())
	}
	return math.Float64frombits(v.word)
}

// AsUint returns the uint64 payload. Panics if v is not a uint.
func (v Value) AsUint() uint64 {
	if v.kind != KindUint {
		panic("metaobj: Value.AsUint: not a uint: " + v.kind.String())
	}
	return v.word
}

// AsCode returns the referenced method, or nil if v is not code.
func (v Value) AsCode() *Method {
	return v.code
}

// Object returns the referenced object, or nil if v is immediate.
func (v Value) Object() *Object {
	return v.obj
}

// Bits returns the raw payload word of an immediate. For objects and code it
// is the unique ID of the referent.
func (v Value) Bits() uint64 {
	switch v.kind {
	case KindObject:
		return uint64(v.obj.id)
	case KindCode:
		return uint64(v.code.id)
	}
	return v.word
}

// String returns a Go-syntax-ish rendering of the handle itself. It never
// dispatches; use Runtime.Describe for a rendering through asString.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindMore:
		return "<more>"
	case KindBool:
		if v.word != 0 {
			return "true"
		}
		return "false"
	case KindFloat:
		return fmt.Sprint(math.Float64frombits(v.word))
	case KindUint:
		return fmt.Sprintf("%du", v.word)
	case KindCode:
		return "<code " + v.code.Name + ">"
	case KindObject:
		return fmt.Sprintf("<object %#x>", v.obj.id)
	}
	return fmt.Sprintf("Value(%d)", v.kind)
}

// argList returns args truncated at the first More sentinel, if any.
func argList(args []Value) []Value {
	for i, a := range args {
		if a.kind == KindMore {
			return args[:i]
		}
	}
	return args
}
