package collector_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zephyrtronium/metaobj"
	"github.com/zephyrtronium/metaobj/coreext/collector"
	"github.com/zephyrtronium/metaobj/coreext/dict"
	"github.com/zephyrtronium/metaobj/testutils"
)

func class(t *testing.T, rt *metaobj.Runtime) metaobj.Value {
	t.Helper()
	c, ok := rt.Class("Collector")
	if !ok {
		t.Fatal("no Collector class")
	}
	return metaobj.Ref(c)
}

func TestCollectorClass(t *testing.T) {
	rt := testutils.Runtime(t)
	c := class(t, rt)
	testutils.CheckClass(t, rt, "Collector", c.Object(), rt.BaseObject)
	testutils.CheckMethods(t, rt, c.Object(), []string{
		"collect", "collectDepth", "performDepth", "showStats", "stats", "symbolCount",
	})
}

// TestCollectorCollect tests that collect frees what its argument creates.
func TestCollectorCollect(t *testing.T) {
	rt := testutils.Runtime(t)
	var made *metaobj.Object
	var depth metaobj.Value
	m := metaobj.NewMethod("make", func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
		depth = rt.SendName(self, "collectDepth")
		made = rt.Instantiate(rt.BaseObject, nil)
		return metaobj.Ref(made)
	})
	r := rt.SendName(class(t, rt), "collect", metaobj.Code(m))
	if r != metaobj.Absent {
		t.Errorf("collect returned %v", r)
	}
	if depth != metaobj.Uint(1) {
		t.Errorf("method ran at collect depth %v, want 1", depth)
	}
	if made == nil || !made.Freed() {
		t.Errorf("object made inside collect survived")
	}
}

func TestCollectorCollectNotMethod(t *testing.T) {
	rt := testutils.Runtime(t)
	err := rt.Protect(func() {
		rt.SendName(class(t, rt), "collect", metaobj.Uint(1))
	})
	if exc, ok := err.(*metaobj.Exception); !ok || exc.Name != "TypeError" {
		t.Errorf("wrong error: %v", err)
	}
}

func TestCollectorStats(t *testing.T) {
	rt := testutils.Runtime(t)
	rt.Collect(func() {
		before := rt.Stats()
		s := rt.SendName(class(t, rt), "stats")
		d, ok := dict.Of(s)
		if !ok {
			t.Fatalf("stats returned %s", rt.Describe(s))
		}
		if d.Len() != 10 {
			t.Errorf("stats has %d entries, want 10", d.Len())
		}
		v, ok := d.Get(metaobj.Ref(rt.Intern("created")))
		if !ok || v != metaobj.Uint(before.Created) {
			t.Errorf("created is %v, want %d", v, before.Created)
		}
	})
}

func TestCollectorShowStats(t *testing.T) {
	rt := testutils.Runtime(t)
	var b bytes.Buffer
	old := collector.Output
	collector.Output = &b
	defer func() { collector.Output = old }()
	rt.SendName(class(t, rt), "showStats")
	out := b.String()
	for _, want := range []string{"collect depth 0", "perform depth 0", "lookups", "faults"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
