// Package collector installs the Collector class, which reports on a
// runtime's object lifecycle and dispatch counters.
package collector

import (
	"fmt"
	"io"
	"os"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/dict"
	"github.com/zephyrtronium/metaobj/internal"
)

// Objects are freed deterministically when their counts reach zero, so
// Collector has nothing to sweep. It exposes the counters and collect regions
// instead.

// Output is where showStats writes.
var Output io.Writer = os.Stdout

func init() {
	internal.Register(initCollector)
}

func initCollector(rt *metaobj.Runtime) error {
	slots := metaobj.Methods{
		"collect":      collectorCollect,
		"collectDepth": collectorCollectDepth,
		"performDepth": collectorPerformDepth,
		"showStats":    collectorShowStats,
		"stats":        collectorStats,
		"symbolCount":  collectorSymbolCount,
	}
	_, err := rt.DefineClass("Collector", nil, 0, slots)
	return err
}

// counters lists the runtime's event counters by name, in display order.
func counters(s metaobj.Stats) []struct {
	name string
	n    uint64
} {
	return []struct {
		name string
		n    uint64
	}{
		{"created", s.Created},
		{"destroyed", s.Destroyed},
		{"leaked", s.Leaked},
		{"lookups", s.Lookups},
		{"cacheHits", s.CacheHits},
		{"forwards", s.Forwards},
		{"promotions", s.Promotions},
		{"invalidations", s.Invalidations},
		{"raised", s.Raised},
		{"faults", s.Faults},
	}
}

// collectorCollect is a Collector method.
//
// collect activates its Method argument with the receiver inside a new
// collect region. Everything created during the activation that is not
// retained elsewhere is freed before collect returns, so the result is
// always Absent.
func collectorCollect(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	m := call.Arg(0).AsCode()
	if m == nil {
		rt.Raisef("TypeError", "argument 0 to collect must be Method, not %s", rt.TypeName(call.Arg(0)))
	}
	rt.Collect(func() {
		rt.SendName(call.Arg(0), "activate", self)
	})
	return metaobj.Absent
}

// collectorCollectDepth is a Collector method.
//
// collectDepth returns the number of active collect regions.
func collectorCollectDepth(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(rt.CollectDepth()))
}

// collectorPerformDepth is a Collector method.
//
// performDepth returns the number of active perform frames.
func collectorPerformDepth(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(rt.PerformDepth()))
}

// collectorSymbolCount is a Collector method.
func collectorSymbolCount(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	return metaobj.Uint(uint64(rt.SymbolCount()))
}

// collectorStats is a Collector method.
//
// stats returns a Dict mapping counter names, as symbols, to their values.
func collectorStats(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	// Take the snapshot first so that creating the dict is not counted.
	c := counters(rt.Stats())
	kvs := make([]metaobj.Value, 0, 2*len(c))
	for _, x := range c {
		kvs = append(kvs, metaobj.Ref(rt.Intern(x.name)), metaobj.Uint(x.n))
	}
	return dict.New(rt, kvs...)
}

// collectorShowStats is a Collector method.
//
// showStats prints the runtime's counters to Output.
func collectorShowStats(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
	fmt.Fprintf(Output, "collect depth %d, perform depth %d, %d symbols\n", rt.CollectDepth(), rt.PerformDepth(), rt.SymbolCount())
	for _, x := range counters(rt.Stats()) {
		fmt.Fprintf(Output, "%14s %d\n", x.name, x.n)
	}
	return self
}
