package internal

import "fmt"

/*
This file contains the hash table used for method tables, method caches,
children sets, and the intern table. It is an open-addressing table with
Robin Hood displacement: on insertion, whenever the probed resident is closer
to its ideal slot than the incoming entry, the two are swapped and the evicted
resident continues probing. That bounds the longest probe sequence and keeps
the variance of probe lengths low, which in turn lets lookups stop early.

Each entry stores its probe distance plus one, so that a zero probe marks an
empty slot. The table also remembers the longest distance it has stored,
probeMax; no lookup needs to look further than that.

Deletion shifts the following run of displaced entries back by one slot
instead of leaving a tombstone. After a backward shift every entry's stored
distance is still its true distance, so both early-exit rules in find remain
valid across any sequence of inserts and deletes.
*/

// Table is a Robin Hood hash table with power-of-two capacity. The zero value
// is not usable; use NewTable.
type Table[K comparable, V any] struct {
	entries  []tableEntry[K, V]
	mask     uint64
	count    int
	probeMax uint32
	minCap   int

	hash func(K) uint64
	eq   func(a, b K) bool

	grows, shrinks int
}

type tableEntry[K comparable, V any] struct {
	// probe is the distance from the ideal slot plus one. Zero means empty.
	probe uint32
	key   K
	value V
}

// Identifier is implemented by keys which carry a stable integer identity.
// Tables created without a hash function use it directly as the hash.
type Identifier interface {
	Identity() uint64
}

// NewTable creates a table with at least the given capacity, rounded up to a
// power of two. The table never shrinks below that capacity.
//
// hash and eq are optional. Without hash, the key's own integer value is the
// hash: keys must be unsigned or signed integers, or implement Identifier.
// Without eq, keys are compared with ==.
func NewTable[K comparable, V any](capacity int, hash func(K) uint64, eq func(a, b K) bool) *Table[K, V] {
	c := 2
	for c < capacity {
		c <<= 1
	}
	if hash == nil {
		hash = identityHash[K]
	}
	return &Table[K, V]{
		entries: make([]tableEntry[K, V], c),
		mask:    uint64(c - 1),
		minCap:  c,
		hash:    hash,
		eq:      eq,
	}
}

// identityHash uses the key itself as its hash.
func identityHash[K comparable](key K) uint64 {
	switch k := any(key).(type) {
	case Identifier:
		return k.Identity()
	case uint64:
		return k
	case uintptr:
		return uint64(k)
	case uint:
		return uint64(k)
	case uint32:
		return uint64(k)
	case int:
		return uint64(k)
	case int64:
		return uint64(k)
	case int32:
		return uint64(k)
	}
	panic(fmt.Sprintf("metaobj: table key %T needs a hash function", key))
}

func (t *Table[K, V]) equal(a, b K) bool {
	if t.eq == nil {
		return a == b
	}
	return t.eq(a, b)
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int {
	return t.count
}

// Cap returns the number of slots.
func (t *Table[K, V]) Cap() int {
	return len(t.entries)
}

// ProbeMax returns the longest probe distance the table may need to inspect.
func (t *Table[K, V]) ProbeMax() int {
	return int(t.probeMax)
}

// find returns the slot holding key, or -1.
func (t *Table[K, V]) find(key K) int {
	if t.count == 0 {
		return -1
	}
	i := t.hash(key) & t.mask
	for d := uint32(1); d <= t.probeMax; d++ {
		cur := &t.entries[i]
		if cur.probe == 0 || cur.probe < d {
			// Either the run ended, or we reached an entry closer to home
			// than we are; key would have displaced it on insertion.
			return -1
		}
		if cur.probe == d && t.equal(cur.key, key) {
			return int(i)
		}
		i = (i + 1) & t.mask
	}
	return -1
}

// Get returns the value associated with key.
func (t *Table[K, V]) Get(key K) (value V, ok bool) {
	if i := t.find(key); i >= 0 {
		return t.entries[i].value, true
	}
	return value, false
}

// Has returns whether key has an entry.
func (t *Table[K, V]) Has(key K) bool {
	return t.find(key) >= 0
}

// Put associates value with key, returning the previous value if there was
// one.
func (t *Table[K, V]) Put(key K, value V) (old V, replaced bool) {
	if i := t.find(key); i >= 0 {
		old = t.entries[i].value
		t.entries[i].value = value
		return old, true
	}
	t.insert(key, value)
	t.count++
	if t.count*4 > len(t.entries)*3 {
		t.resize(len(t.entries) * 2)
		t.grows++
	}
	return old, false
}

// insert places a key known to be absent. It does not update count.
func (t *Table[K, V]) insert(key K, value V) {
	e := tableEntry[K, V]{probe: 1, key: key, value: value}
	i := t.hash(key) & t.mask
	for {
		cur := &t.entries[i]
		if cur.probe == 0 {
			*cur = e
			if e.probe > t.probeMax {
				t.probeMax = e.probe
			}
			return
		}
		if cur.probe < e.probe {
			// Rob the rich: the resident is closer to home than we are.
			if e.probe > t.probeMax {
				t.probeMax = e.probe
			}
			*cur, e = e, *cur
		}
		e.probe++
		i = (i + 1) & t.mask
	}
}

// Delete removes key, returning its value if it was present.
func (t *Table[K, V]) Delete(key K) (old V, ok bool) {
	i := t.find(key)
	if i < 0 {
		return old, false
	}
	old = t.entries[i].value
	// Backward shift: pull each displaced successor one slot closer to home
	// until we reach an empty slot or an entry already at home.
	for {
		j := (uint64(i) + 1) & t.mask
		next := &t.entries[j]
		if next.probe <= 1 {
			t.entries[i] = tableEntry[K, V]{}
			break
		}
		t.entries[i] = *next
		t.entries[i].probe--
		i = int(j)
	}
	t.count--
	if t.count*4 < len(t.entries) && len(t.entries) > t.minCap {
		t.resize(len(t.entries) / 2)
		t.shrinks++
	}
	return old, true
}

// resize rehashes all live entries into a fresh array of n slots.
func (t *Table[K, V]) resize(n int) {
	old := t.entries
	t.entries = make([]tableEntry[K, V], n)
	t.mask = uint64(n - 1)
	t.probeMax = 0
	for i := range old {
		if old[i].probe != 0 {
			t.insert(old[i].key, old[i].value)
		}
	}
}

// Range calls f for each entry in slot order until f returns false. f must
// not modify the table.
func (t *Table[K, V]) Range(f func(key K, value V) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.probe != 0 && !f(e.key, e.value) {
			return
		}
	}
}

// Clear removes all entries and returns the table to its minimum capacity.
func (t *Table[K, V]) Clear() {
	t.entries = make([]tableEntry[K, V], t.minCap)
	t.mask = uint64(t.minCap - 1)
	t.count = 0
	t.probeMax = 0
}

// TableStats describes the shape of a table.
type TableStats struct {
	Len, Cap, ProbeMax int
	Grows, Shrinks     int
}

// Stats returns the table's current shape and its resize history.
func (t *Table[K, V]) Stats() TableStats {
	return TableStats{
		Len:      t.count,
		Cap:      len(t.entries),
		ProbeMax: int(t.probeMax),
		Grows:    t.grows,
		Shrinks:  t.shrinks,
	}
}
