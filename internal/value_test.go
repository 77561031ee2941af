package internal

import (
	"math"
	"testing"
)

func TestValueKinds(t *testing.T) {
	o := &Object{id: nextID()}
	m := NewMethod("m", nil)
	cases := map[string]struct {
		v    Value
		kind Kind
		imm  bool
	}{
		"Absent": {Absent, KindAbsent, true},
		"More":   {More, KindMore, true},
		"Bool":   {Bool(true), KindBool, true},
		"Float":  {Float(1.5), KindFloat, true},
		"Uint":   {Uint(7), KindUint, true},
		"Code":   {Code(m), KindCode, true},
		"Object": {Ref(o), KindObject, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if c.v.Kind() != c.kind {
				t.Errorf("wrong kind: want %v, have %v", c.kind, c.v.Kind())
			}
			if c.v.IsImmediate() != c.imm {
				t.Errorf("wrong immediacy: want %t", c.imm)
			}
		})
	}
}

func TestValuePayloads(t *testing.T) {
	if !Bool(true).AsBool() || Bool(false).AsBool() {
		t.Error("bool payload")
	}
	if Float(-2.25).AsFloat() != -2.25 {
		t.Error("float payload")
	}
	if !math.IsNaN(Float(math.NaN()).AsFloat()) {
		t.Error("NaN payload")
	}
	if Uint(math.MaxUint64).AsUint() != math.MaxUint64 {
		t.Error("uint payload")
	}
	o := &Object{id: nextID()}
	if Ref(o).Object() != o || Ref(o).Bits() != uint64(o.id) {
		t.Error("object payload")
	}
	if Ref(nil) != Absent || Code(nil) != Absent {
		t.Error("nil references should be absent")
	}
}

func TestValueIdentity(t *testing.T) {
	a, b := &Object{id: nextID()}, &Object{id: nextID()}
	if Ref(a) != Ref(a) {
		t.Error("same object compares unequal")
	}
	if Ref(a) == Ref(b) {
		t.Error("different objects compare equal")
	}
	if Uint(1) == Float(1) {
		t.Error("uint and float compare equal")
	}
	if Bool(false) == Absent {
		t.Error("false compares equal to absent")
	}
}

func TestValueAsWrongKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AsFloat on a uint did not panic")
		}
	}()
	Uint(1).AsFloat()
}

func TestArgList(t *testing.T) {
	cases := map[string]struct {
		in   []Value
		want int
	}{
		"Nil":      {nil, 0},
		"NoMore":   {[]Value{Uint(1), Uint(2)}, 2},
		"More":     {[]Value{Uint(1), More, Uint(3)}, 1},
		"OnlyMore": {[]Value{More}, 0},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if n := len(argList(c.in)); n != c.want {
				t.Errorf("wrong length: want %d, have %d", c.want, n)
			}
		})
	}
}
