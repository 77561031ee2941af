// Package date provides the Date class, an immutable instant with a time
// zone.
package date

import (
	"math"
	"time"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/duration"
	"github.com/zephyrtronium/metaobj/coreext/number"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/internal"

	"gitlab.com/variadico/lctime"
)

// DefaultFormat is the strftime format asString uses without an argument.
const DefaultFormat = "%Y-%m-%d %H:%M:%S %Z"

// Class returns the Date class of rt.
func Class(rt *metaobj.Runtime) *metaobj.Object {
	c, ok := rt.Class("Date")
	if !ok {
		panic("metaobj/date: Date is not installed")
	}
	return c
}

// New creates a transient Date holding d.
func New(rt *metaobj.Runtime, d time.Time) metaobj.Value {
	return metaobj.Ref(rt.Instantiate(Class(rt), d))
}

// Of returns the time held by a Date value.
func Of(v metaobj.Value) (time.Time, bool) {
	o := v.Object()
	if o == nil || o.Freed() {
		return time.Time{}, false
	}
	d, ok := o.Value.(time.Time)
	return d, ok
}

// ArgAt returns the nth argument of call as a time.Time. If the argument is
// not a Date, a TypeError is raised.
func ArgAt(rt *metaobj.Runtime, call *metaobj.Call, n int) time.Time {
	v := call.Arg(n)
	d, ok := Of(v)
	if !ok {
		rt.Raisef("TypeError", "argument %d to %s must be Date, not %s", n, call.Name(), rt.TypeName(v))
	}
	return d
}

func init() {
	internal.Register(initDate)
}

func initDate(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"+":            plus,
		"-":            minus,
		"asNumber":     asNumber,
		"asString":     asString,
		"compare":      compare,
		"convertToUTC": convertToUTC,
		"create":       create,
		"day":          day,
		"equals":       equals,
		"fromNumber":   fromNumber,
		"hash":         hash,
		"hour":         hour,
		"isPast":       isPast,
		"minute":       minute,
		"month":        month,
		"now":          now,
		"second":       second,
		"secondsSince": secondsSince,
		"year":         year,
	}
	_, err := rt.DefineClass("Date", nil, 0, slots)
	return err
}

func receiver(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) time.Time {
	d, ok := Of(self)
	if !ok {
		rt.Raisef("TypeError", "receiver of %s must be Date, not %s", call.Name(), rt.TypeName(self))
	}
	return d
}

// fromSeconds converts seconds since the Unix epoch to a time.
func fromSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// create is a Date method.
//
// create makes a Date at the current time, or at the given number of seconds
// since 1970-01-01 00:00:00 UTC.
func create(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	if call.ArgCount() == 0 {
		return New(rt, time.Now())
	}
	return New(rt, fromSeconds(number.AsFloat(number.ArgAt(rt, call, 0))))
}

// now is a Date method.
//
// now returns a new Date at the current time.
func now(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, time.Now())
}

// fromNumber is a Date method.
//
// fromNumber returns a new Date at the given number of seconds since
// 1970-01-01 00:00:00 UTC, in the receiver's time zone.
func fromNumber(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := fromSeconds(number.AsFloat(number.ArgAt(rt, call, 0)))
	if loc, ok := Of(self); ok {
		d = d.In(loc.Location())
	}
	return New(rt, d)
}

// asNumber is a Date method.
//
// asNumber converts the date into seconds since 1970-01-01 00:00:00 UTC.
func asNumber(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	return metaobj.Float(float64(d.UnixNano()) / 1e9)
}

// asString is a Date method.
//
// asString converts the date to a string representation using ANSI C datetime
// formatting. See https://godoc.org/github.com/variadico/lctime for the full
// list of supported directives.
func asString(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	format := DefaultFormat
	if call.ArgCount() > 0 {
		format = str.ArgAt(rt, call, 0)
	}
	return str.New(rt, lctime.Strftime(format, d))
}

// convertToUTC is a Date method.
//
// convertToUTC returns the same instant in UTC.
func convertToUTC(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return New(rt, receiver(rt, self, call).UTC())
}

// plus is a Date method.
//
// + returns the date offset by a number of seconds.
func plus(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	s := number.AsFloat(number.ArgAt(rt, call, 0))
	return New(rt, d.Add(time.Duration(s*float64(time.Second))))
}

// minus is a Date method.
//
// - returns the Duration from the argument to the receiver.
func minus(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	return duration.New(rt, d.Sub(ArgAt(rt, call, 0)))
}

// secondsSince is a Date method.
//
// secondsSince returns the number of seconds between the argument and the
// receiver, negative if the argument is later.
func secondsSince(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	return metaobj.Float(d.Sub(ArgAt(rt, call, 0)).Seconds())
}

// isPast is a Date method.
func isPast(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Bool(receiver(rt, self, call).Before(time.Now()))
}

// compare is a Date method.
//
// compare returns -1, 0, or 1 as the receiver is before, at, or after the
// argument.
func compare(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	e := ArgAt(rt, call, 0)
	switch {
	case d.Before(e):
		return metaobj.Float(-1)
	case d.After(e):
		return metaobj.Float(1)
	}
	return metaobj.Float(0)
}

// equals is a Date method.
//
// equals returns whether the argument is a Date at the same instant,
// regardless of time zone.
func equals(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self, call.Args...)
	}
	e, ok := Of(call.Arg(0))
	return metaobj.Bool(ok && d.Equal(e))
}

// hash is a Date method.
func hash(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d, ok := Of(self)
	if !ok {
		return rt.SuperSend(call, self)
	}
	return metaobj.Uint(rt.Hash(metaobj.Uint(uint64(d.UnixNano()))))
}

// year is a Date method.
func year(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Float(float64(receiver(rt, self, call).Year()))
}

// month is a Date method.
//
// month returns the month of the date, from 1 to 12.
func month(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(receiver(rt, self, call).Month()))
}

// day is a Date method.
func day(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(receiver(rt, self, call).Day()))
}

// hour is a Date method.
func hour(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(receiver(rt, self, call).Hour()))
}

// minute is a Date method.
func minute(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(receiver(rt, self, call).Minute()))
}

// second is a Date method.
//
// second returns the seconds of the date, including the fractional part.
func second(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	d := receiver(rt, self, call)
	return metaobj.Float(float64(d.Second()) + float64(d.Nanosecond())/1e9)
}
