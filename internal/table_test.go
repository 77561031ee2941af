package internal

import (
	"math/rand"
	"testing"

	"github.com/zeebo/xxh3"
)

// checkTable verifies the structural invariants of t: the count matches the
// live entries, every stored probe is the entry's true distance, no probe
// exceeds probeMax, and the Robin Hood ordering holds along each run.
func checkTable[K comparable, V any](tb testing.TB, t *Table[K, V]) {
	tb.Helper()
	n := 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.probe == 0 {
			continue
		}
		n++
		home := t.hash(e.key) & t.mask
		dist := (uint64(i) - home) & t.mask
		if uint64(e.probe) != dist+1 {
			tb.Errorf("slot %d: stored probe %d, true distance %d", i, e.probe, dist+1)
		}
		if e.probe > t.probeMax {
			tb.Errorf("slot %d: probe %d exceeds probeMax %d", i, e.probe, t.probeMax)
		}
		prev := &t.entries[(uint64(i)-1)&t.mask]
		if e.probe > 1 && prev.probe+1 < e.probe {
			tb.Errorf("slot %d: probe %d follows probe %d", i, e.probe, prev.probe)
		}
	}
	if n != t.count {
		tb.Errorf("count %d but %d live entries", t.count, n)
	}
	if t.count > len(t.entries) {
		tb.Errorf("count %d exceeds capacity %d", t.count, len(t.entries))
	}
}

func TestTableGrowScenario(t *testing.T) {
	tbl := NewTable[uint64, int](8, nil, nil)
	if tbl.Cap() != 8 {
		t.Fatalf("wrong initial capacity %d", tbl.Cap())
	}
	for i := uint64(1); i <= 7; i++ {
		tbl.Put(i*3, int(i))
	}
	st := tbl.Stats()
	if st.Grows != 1 || st.Cap != 16 {
		t.Errorf("want exactly one resize to 16, have %d grows to %d", st.Grows, st.Cap)
	}
	for i := uint64(1); i <= 7; i++ {
		if v, ok := tbl.Get(i * 3); !ok || v != int(i) {
			t.Errorf("key %d: have %d, %t", i*3, v, ok)
		}
	}
	checkTable(t, tbl)
}

func TestTableCapacityRounding(t *testing.T) {
	cases := map[string]struct{ in, want int }{
		"Zero":  {0, 2},
		"One":   {1, 2},
		"Three": {3, 4},
		"Pow2":  {64, 64},
		"Odd":   {100, 128},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if n := NewTable[int, int](c.in, nil, nil).Cap(); n != c.want {
				t.Errorf("want %d, have %d", c.want, n)
			}
		})
	}
}

func TestTableRoundTrip(t *testing.T) {
	tbl := NewTable[string, int](4, xxh3.HashString, nil)
	want := map[string]int{}
	r := rand.New(rand.NewSource(1))
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i := 0; i < 2000; i++ {
		k := keys[r.Intn(len(keys))]
		switch r.Intn(3) {
		case 0, 1:
			old, replaced := tbl.Put(k, i)
			prev, had := want[k]
			if replaced != had || (had && old != prev) {
				t.Fatalf("put %q: have %d, %t; want %d, %t", k, old, replaced, prev, had)
			}
			want[k] = i
		case 2:
			old, ok := tbl.Delete(k)
			prev, had := want[k]
			if ok != had || (had && old != prev) {
				t.Fatalf("delete %q: have %d, %t; want %d, %t", k, old, ok, prev, had)
			}
			delete(want, k)
		}
		for k, v := range want {
			if have, ok := tbl.Get(k); !ok || have != v {
				t.Fatalf("step %d: get %q: have %d, %t; want %d", i, k, have, ok, v)
			}
		}
		if tbl.Len() != len(want) {
			t.Fatalf("step %d: len %d, want %d", i, tbl.Len(), len(want))
		}
	}
	checkTable(t, tbl)
}

func TestTableLoadBounds(t *testing.T) {
	tbl := NewTable[uint64, struct{}](2, nil, nil)
	for i := uint64(0); i < 1000; i++ {
		tbl.Put(i, struct{}{})
		if tbl.Len()*4 > tbl.Cap()*3 {
			t.Fatalf("after insert %d: %d entries in %d slots", i, tbl.Len(), tbl.Cap())
		}
	}
	for i := uint64(0); i < 1000; i++ {
		tbl.Delete(i)
		if tbl.Cap() > 2 && tbl.Len()*4 < tbl.Cap() {
			t.Fatalf("after delete %d: %d entries in %d slots", i, tbl.Len(), tbl.Cap())
		}
	}
	if tbl.Cap() != 2 {
		t.Errorf("table did not shrink to its minimum: %d", tbl.Cap())
	}
	st := tbl.Stats()
	if st.Grows == 0 || st.Shrinks == 0 {
		t.Errorf("resize history %+v", st)
	}
}

func TestTableMinimumCapacity(t *testing.T) {
	tbl := NewTable[uint64, int](32, nil, nil)
	tbl.Put(1, 1)
	tbl.Delete(1)
	if tbl.Cap() != 32 {
		t.Errorf("table shrank below its creation capacity: %d", tbl.Cap())
	}
}

// TestTableDeleteKeepsProbes checks that delete and insert cycles in a
// crowded table keep every stored probe distance exact.
func TestTableDeleteKeepsProbes(t *testing.T) {
	// All keys collide modulo the capacity, so runs are long.
	tbl := NewTable[uint64, uint64](64, nil, nil)
	r := rand.New(rand.NewSource(2))
	live := map[uint64]bool{}
	for i := 0; i < 5000; i++ {
		k := uint64(r.Intn(40)) * 64
		if live[k] {
			tbl.Delete(k)
			delete(live, k)
		} else {
			tbl.Put(k, k)
			live[k] = true
		}
		if i%97 == 0 {
			checkTable(t, tbl)
		}
	}
	checkTable(t, tbl)
	for k := range live {
		if v, ok := tbl.Get(k); !ok || v != k {
			t.Errorf("lost key %d", k)
		}
	}
	if tbl.Has(64 * 1000) {
		t.Errorf("found key never inserted")
	}
}

type identKey struct{ id uint64 }

func (k *identKey) Identity() uint64 { return k.id }

func TestTableIdentifierKeys(t *testing.T) {
	tbl := NewTable[*identKey, string](4, nil, nil)
	a, b := &identKey{1}, &identKey{1}
	tbl.Put(a, "a")
	tbl.Put(b, "b")
	if tbl.Len() != 2 {
		t.Fatalf("distinct pointers with equal identity collapsed: %d entries", tbl.Len())
	}
	if v, _ := tbl.Get(a); v != "a" {
		t.Errorf("get a: %q", v)
	}
	if v, _ := tbl.Get(b); v != "b" {
		t.Errorf("get b: %q", v)
	}
}

func TestTableCustomEquality(t *testing.T) {
	fold := func(s string) string {
		b := []byte(s)
		for i, c := range b {
			if 'A' <= c && c <= 'Z' {
				b[i] = c + 'a' - 'A'
			}
		}
		return string(b)
	}
	hash := func(s string) uint64 { return xxh3.HashString(fold(s)) }
	eq := func(a, b string) bool { return fold(a) == fold(b) }
	tbl := NewTable[string, int](8, hash, eq)
	tbl.Put("Hello", 1)
	if _, replaced := tbl.Put("HELLO", 2); !replaced {
		t.Errorf("case-folded key was not replaced")
	}
	if v, ok := tbl.Get("hello"); !ok || v != 2 {
		t.Errorf("get: %d, %t", v, ok)
	}
}

func TestTableRangeClear(t *testing.T) {
	tbl := NewTable[int, int](4, nil, nil)
	for i := 0; i < 20; i++ {
		tbl.Put(i, i*i)
	}
	sum := 0
	tbl.Range(func(k, v int) bool {
		if v != k*k {
			t.Errorf("key %d has %d", k, v)
		}
		sum += k
		return true
	})
	if sum != 190 {
		t.Errorf("range visited keys summing to %d", sum)
	}
	n := 0
	tbl.Range(func(k, v int) bool {
		n++
		return n < 3
	})
	if n != 3 {
		t.Errorf("range did not stop: %d calls", n)
	}
	tbl.Clear()
	if tbl.Len() != 0 || tbl.Cap() != 4 || tbl.Has(3) {
		t.Errorf("clear left %d entries in %d slots", tbl.Len(), tbl.Cap())
	}
}

func TestTableUnhashableKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("string key without hash function did not panic")
		}
	}()
	NewTable[string, int](2, nil, nil).Put("x", 1)
}

func BenchmarkTableGet(b *testing.B) {
	tbl := NewTable[uint64, uint64](8, nil, nil)
	for i := uint64(0); i < 1024; i++ {
		tbl.Put(i*2654435761, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Get(uint64(i&1023) * 2654435761)
	}
}
