// Package duration provides the Duration class, an immutable span of time.
package duration

import (
	"fmt"
	"strings"
	"time"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/number"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"
)

// DefaultFormat is the format asString uses without an argument.
const DefaultFormat = "%Y years %d days %H:%M:%S"

const (
	year = 365 * 24 * time.Hour
	day  = 24 * time.Hour
)

// Class returns the Duration class of rt.
func Class(rt *metaobj.Runtime) *metaobj.Object {
	c, ok := rt.Class("Duration")
	if !ok {
		panic("metaobj/duration: Duration is not installed")
	}
	return c
}

// New creates a transient Duration holding d.
func New(rt *metaobj.Runtime, d time.Duration) metaobj.Value {
	return metaobj.Ref(rt.Instantiate(Class(rt), d))
}

// Of returns the time.Duration held by a Duration value.
func Of(v metaobj.Value) (time.Duration, bool) {
	o := v.Object()
	if o == nil || o.Freed() {
		return 0, false
	}
	d, ok := o.Value.(time.Duration)
	return d, ok
}

// ArgAt returns the nth argument of call as a time.Duration. If the argument
// is not a Duration, a TypeError is raised.
func ArgAt(rt *metaobj.Runtime, call *metaobj.Call, n int) time.Duration {
	v := call.Arg(n)
	d, ok := Of(v)
	if !ok {
		rt.Raisef("TypeError", "argument %d to %s must be Duration, not %s", n, call.Name(), rt.TypeName(v))
	}
	return d
}

// Format renders d with the directives %Y (years), %y (years, four digits),
// %d (days), %H (hours), %M (minutes), and %S (seconds with microseconds).
func Format(format string, d time.Duration) string {
	rep := strings.NewReplacer(
		"%Y", fmt.Sprintf("%d", d/year),
		"%y", fmt.Sprintf("%04d", d/year),
		"%d", fmt.Sprintf("%02d", d%year/day),
		"%H", fmt.Sprintf("%02d", d%day/time.Hour),
		"%M", fmt.Sprintf("%02d", d%time.Hour/time.Minute),
		"%S", fmt.Sprintf("%09.6f", float64(d%time.Minute)/float64(time.Second)))
	return rep.Replace(format)
}

func init() {
	internal.Register(initDuration)
}

func initDuration(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"+":          plus,
		"-":          minus,
		"asNumber":   asNumber,
		"asString":   asString,
		"compare":    compare,
		"create":     create,
		"days":       days,
		"equals":     equals,
		"fromNumber": create,
		"hash":       hash,
		"hours":      hours,
		"minutes":    minutes,
		"seconds":    seconds,
		"years":      years,
	}
	_, err := rt.DefineClass("Duration", nil, 0, slots)
	return err
}

func receiver(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) time.Duration {
	d, ok := Of(self)
	if !ok {
		rt.Raisef("TypeError", "receiver of %s must be Duration, not %s", call.Name(), rt.TypeName(self))
	}
	return d
}

// create is a Duration method.
//
// create and fromNumber make a Duration of the given number of seconds, or
// zero.
func create(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if call.ArgCount() == 0 {
		return New(rt, 0)
	}
	s := number.AsFloat(number.ArgAt(rt, call, 0))
	return New(rt, time.Duration(s*float64(time.Second)))
}

// asNumber is a Duration method.
//
// asNumber returns the duration in seconds.
func asNumber(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(receiver(rt, self, call).Seconds())
}

// asString is a Duration method.
//
// asString formats the duration. The optional format argument may use %Y,
// %y, %d, %H, %M, and %S.
func asString(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	format := DefaultFormat
	if call.ArgCount() > 0 {
		format = str.ArgAt(rt, call, 0)
	}
	return str.New(rt, Format(format, d))
}

// plus is a Duration method.
func plus(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, receiver(rt, self, call)+ArgAt(rt, call, 0))
}

// minus is a Duration method.
func minus(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, receiver(rt, self, call)-ArgAt(rt, call, 0))
}

// compare is a Duration method.
func compare(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, e := receiver(rt, self, call), ArgAt(rt, call, 0)
	switch {
	case d < e:
		return metaobj.Float(-1)
	case d > e:
		return metaobj.Float(1)
	}
	return metaobj.Float(0)
}

// equals is a Duration method.
func equals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self, call.Args...)
	}
	e, ok := Of(call.Arg(0))
	return metaobj.Bool(ok && d == e)
}

// hash is a Duration method.
func hash(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self)
	}
	return metaobj.Uint(rt.Hash(metaobj.Uint(uint64(d))))
}

// years is a Duration method.
//
// years returns the whole 365-day years in the duration.
func years(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call) / year))
}

// days is a Duration method.
//
// days returns the days in the duration after removing whole years.
func days(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call) % year / day))
}

// hours is a Duration method.
func hours(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call) % day / time.Hour))
}

// minutes is a Duration method.
func minutes(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call) % time.Hour / time.Minute))
}

// seconds is a Duration method.
//
// seconds returns the seconds after removing whole minutes, including the
// fractional part.
func seconds(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call)%time.Minute) / float64(time.Second))
}
