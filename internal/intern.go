package internal

import (
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"
)

// Symbol is the value of an interned string. Symbols are unique per runtime:
// two symbols with the same text are the same object, so selectors compare
// and hash by identity.
type Symbol struct {
	// Name is the NFC-normalized text of the symbol.
	Name string
	// Hash is the xxh3 digest of Name.
	Hash uint64
}

func (s Symbol) String() string {
	return s.Name
}

// Intern returns the unique immortal symbol object for name. Names are
// normalized to NFC first, so canonically equivalent spellings intern to the
// same symbol.
func (rt *Runtime) Intern(name string) *Object {
	name = norm.NFC.String(name)
	if s, ok := rt.symbols.Get(name); ok {
		return s
	}
	m := rt.SymbolClass.meta.get()
	m.users++
	s := &Object{
		meta:   metaCell{m: m},
		header: NewHeader(0, FlagInline).Eternal(),
		Value:  Symbol{Name: name, Hash: xxh3.HashString(name)},
		id:     nextID(),
	}
	rt.symbols.Put(name, s)
	return s
}

// Interned returns the symbol for name if it has been interned.
func (rt *Runtime) Interned(name string) (*Object, bool) {
	return rt.symbols.Get(norm.NFC.String(name))
}

// IsSymbol returns whether v is an interned symbol.
func IsSymbol(v Value) bool {
	_, ok := v.Object().valueSymbol()
	return ok
}

// SymbolName returns the text of the symbol v, or false if v is not a symbol.
func SymbolName(v Value) (string, bool) {
	s, ok := v.Object().valueSymbol()
	return s.Name, ok
}

// initSymbol installs the Symbol class's methods.
func (rt *Runtime) initSymbol() {
	slots := Methods{
		"hash":        symbolHash,
		"asString":    symbolSelf,
		"description": symbolSelf,
		"copy":        symbolSelf,
		"size":        symbolSize,
	}
	if err := rt.AddMethods(Ref(rt.SymbolClass), slots); err != nil {
		panic(fmt.Errorf("metaobj: couldn't initialize Symbol: %w", err))
	}
}

// symbolHash returns the digest of the symbol's text.
func symbolHash(rt *Runtime, self Value, call *Call) Value {
	s, _ := self.Object().valueSymbol()
	return Uint(s.Hash)
}

// symbolSelf returns the receiver. Symbols are immortal and immutable, so
// they stand for themselves.
func symbolSelf(rt *Runtime, self Value, call *Call) Value {
	return self
}

// symbolSize returns the number of bytes in the symbol's text.
func symbolSize(rt *Runtime, self Value, call *Call) Value {
	s, _ := self.Object().valueSymbol()
	return Uint(uint64(len(s.Name)))
}

// initMethod creates the class for code values.
func (rt *Runtime) initMethod() {
	slots := Methods{
		"name":     methodName,
		"activate": methodActivate,
	}
	c, err := rt.DefineClass("Method", nil, 0, slots)
	if err != nil {
		panic(fmt.Errorf("metaobj: couldn't initialize Method: %w", err))
	}
	rt.MethodClass = c
	rt.SetImmediateClass(KindCode, c)
}

// methodName returns the method's name as a symbol.
func methodName(rt *Runtime, self Value, call *Call) Value {
	m := self.AsCode()
	if m == nil {
		return Absent
	}
	return Ref(rt.Intern(m.Name))
}

// methodActivate runs the method with the first argument as the receiver and
// the rest as arguments. The activation has no super meta.
func methodActivate(rt *Runtime, self Value, call *Call) Value {
	m := self.AsCode()
	if m == nil {
		return Absent
	}
	var args []Value
	if len(call.Args) > 1 {
		args = call.Args[1:]
	}
	return m.Fn(rt, call.Arg(0), &Call{Selector: call.Selector, Args: args, Method: m})
}
