package internal

import "fmt"

// Header is an object's packed retain count and flags. The low two bits are
// flags; the remaining bits are the retain count. A count field with every bit
// set marks an immortal object, which is never decremented or freed.
//
// All arithmetic on the packed word goes through Header's methods.
type Header uint64

const (
	// FlagMutable marks an object whose contents may change after creation.
	FlagMutable Header = 1 << iota
	// FlagInline marks an object whose state lives entirely in its header and
	// Value, with no separately owned resources.
	FlagInline

	flagMask   = FlagMutable | FlagInline
	countShift = 2
	countUnit  = Header(1) << countShift
	countMask  = ^flagMask

	// MaxCount is the largest retain count a mortal object can hold.
	MaxCount = uint64(countMask>>countShift) - 1
)

// NewHeader returns a header with the given retain count and flags. Counts
// above MaxCount produce an immortal header.
func NewHeader(count uint64, flags Header) Header {
	if count > MaxCount {
		return countMask | flags&flagMask
	}
	return Header(count)<<countShift | flags&flagMask
}

// Count returns the retain count. The count of an immortal header is
// MaxCount+1.
func (h Header) Count() uint64 {
	return uint64(h >> countShift)
}

// Flags returns only the flag bits.
func (h Header) Flags() Header {
	return h & flagMask
}

// Mutable reports whether FlagMutable is set.
func (h Header) Mutable() bool {
	return h&FlagMutable != 0
}

// Inline reports whether FlagInline is set.
func (h Header) Inline() bool {
	return h&FlagInline != 0
}

// Immortal reports whether the count field holds the immortal sentinel.
func (h Header) Immortal() bool {
	return h&countMask == countMask
}

// WithFlags returns h with its flag bits replaced.
func (h Header) WithFlags(flags Header) Header {
	return h&countMask | flags&flagMask
}

// Retained returns h with the count incremented. The count saturates at the
// immortal sentinel instead of wrapping.
func (h Header) Retained() Header {
	if h.Immortal() {
		return h
	}
	if h.Count() >= MaxCount {
		return h.Eternal()
	}
	return h + countUnit
}

// Released returns h with the count decremented and whether the count reached
// zero. ok is false if the count was already zero; the header is then
// returned unchanged. Immortal headers are returned unchanged with ok true.
func (h Header) Released() (r Header, zero, ok bool) {
	if h.Immortal() {
		return h, false, true
	}
	if h.Count() == 0 {
		return h, false, false
	}
	r = h - countUnit
	return r, r.Count() == 0, true
}

// Eternal returns h with its count set to the immortal sentinel, keeping the
// flags.
func (h Header) Eternal() Header {
	return h | countMask
}

// String formats the header for diagnostics.
func (h Header) String() string {
	c := "immortal"
	if !h.Immortal() {
		c = fmt.Sprint(h.Count())
	}
	f := ""
	if h.Mutable() {
		f += "m"
	}
	if h.Inline() {
		f += "i"
	}
	return fmt.Sprintf("rc=%s flags=%q", c, f)
}
