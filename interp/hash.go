package interp

// HashTable is a chained hash table keyed by string: djb2 hashing,
// grow-on-load-factor, and a resumable Foreach bookmark so a caller can
// suspend iteration across a GC-sensitive boundary and resume it later.
type HashTable struct {
	bins    []*hashEntry
	count   int // number of live entries, for load-factor calculation
	replace int // diagnostic: how many Insert calls replaced an existing key
	collide int // diagnostic: how many Insert calls chained past a full bin

	// foreach bookmark: bin index and chain position to resume from.
	fBin   int
	fEntry *hashEntry
	fDone  bool
}

type hashEntry struct {
	key  string
	val  interface{}
	next *hashEntry
}

const (
	defaultHashLen = 32
	loadFactorTrig = 0.75
)

// NewHashTable allocates a table with bins bins (rounded up to at least 1).
func NewHashTable(bins int) *HashTable {
	if bins <= 0 {
		bins = 1
	}
	return &HashTable{bins: make([]*hashEntry, bins)}
}

// hashAlg is the djb2 string hash.
func hashAlg(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}

func (h *HashTable) bucket(key string) int {
	return int(hashAlg(key) % uint64(len(h.bins)))
}

func (h *HashTable) loadFactor() float64 {
	return float64(h.count) / float64(len(h.bins))
}

// Insert adds or replaces key -> val, growing the table first if the load
// factor would exceed loadFactorTrig.
func (h *HashTable) Insert(key string, val interface{}) {
	if h.loadFactor() >= loadFactorTrig {
		h.grow()
	}
	idx := h.bucket(key)
	for e := h.bins[idx]; e != nil; e = e.next {
		if e.key == key {
			e.val = val
			h.replace++
			return
		}
	}
	if h.bins[idx] != nil {
		h.collide++
	}
	h.bins[idx] = &hashEntry{key: key, val: val, next: h.bins[idx]}
	h.count++
}

// grow doubles the bin count and rehashes every entry. Rehashing
// invalidates any in-progress Foreach bookmark.
func (h *HashTable) grow() {
	old := h.bins
	h.bins = make([]*hashEntry, len(old)*2)
	h.resetForeachLocked()
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			idx := h.bucket(e.key)
			e.next = h.bins[idx]
			h.bins[idx] = e
			e = next
		}
	}
}

// Lookup returns the value stored under key, and whether it was present.
func (h *HashTable) Lookup(key string) (interface{}, bool) {
	idx := h.bucket(key)
	for e := h.bins[idx]; e != nil; e = e.next {
		if e.key == key {
			return e.val, true
		}
	}
	return nil, false
}

// Delete removes key, reporting whether it was present.
func (h *HashTable) Delete(key string) bool {
	idx := h.bucket(key)
	var prev *hashEntry
	for e := h.bins[idx]; e != nil; prev, e = e, e.next {
		if e.key == key {
			if prev == nil {
				h.bins[idx] = e.next
			} else {
				prev.next = e.next
			}
			h.count--
			return true
		}
	}
	return false
}

// Len reports the number of live entries.
func (h *HashTable) Len() int { return h.count }

// ReplaceCount and CollideCount expose diagnostics counters.
func (h *HashTable) ReplaceCount() int { return h.replace }
func (h *HashTable) CollideCount() int { return h.collide }

// ResetForeach rewinds the resumable iterator to the start of the table.
func (h *HashTable) ResetForeach() { h.resetForeachLocked() }

func (h *HashTable) resetForeachLocked() {
	h.fBin = 0
	h.fEntry = nil
	h.fDone = false
}

// Foreach resumes iteration from the last bookmark, calling fn(key, val)
// for each live entry until fn returns non-nil (the Lisp-level "stop and
// return this value" convention) or the table is exhausted (returns nil).
// The (bin, entry) bookmark is saved across calls so a caller can
// interleave a GC-triggering operation between invocations.
func (h *HashTable) Foreach(fn func(key string, val interface{}) interface{}) interface{} {
	if h.fDone {
		return nil
	}
	bin := h.fBin
	e := h.fEntry
	if e == nil && bin < len(h.bins) {
		e = h.bins[bin]
	}
	for {
		for e == nil {
			bin++
			if bin >= len(h.bins) {
				h.fDone = true
				return nil
			}
			e = h.bins[bin]
		}
		if r := fn(e.key, e.val); r != nil {
			h.fBin = bin
			h.fEntry = e.next
			if e.next == nil {
				// chain finished: resume at the head of the next bin
				h.fBin = bin + 1
			}
			return r
		}
		e = e.next
	}
}
