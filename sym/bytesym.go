// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package sym

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/golang/glog"
)

const (
	quadsDefaultSize = 64
	quadsMaxSize     = 0x10000
	quadsMaxReuse    = 6000

	mult  = 33
	mult2 = 65599
	mult3 = 31
)

// quadsState is a snapshot of a table, as published by a root.
type quadsState struct {
	size         int // number of primary slots
	count        int
	tertiaryBits int
	hashArea     []int32
	names        []string
	spillEnd     int
	longNameEnd  int
}

func initialQuadsState(size int) *quadsState {
	area := size << 3
	return &quadsState{
		size:         size,
		tertiaryBits: calcTertiaryShift(size),
		hashArea:     make([]int32, area),
		names:        make([]string, size<<1),
		spillEnd:     area - size,
		longNameEnd:  area,
	}
}

// calcTertiaryShift returns the log2 of the tertiary bucket size, in ints.
func calcTertiaryShift(primarySlots int) int {
	switch n := primarySlots >> 2; {
	case n < 64:
		return 4 // buckets of 4 slots
	case n <= 256:
		return 5
	case n <= 1024:
		return 6
	}
	return 7 // buckets of 32 slots
}

// A ByteQuadsCanonicalizer maps names, given as the quads of their UTF-8
// encoding, to strings. A quad packs 4 bytes big-endian; the last quad of a
// name is padded with 0xFF bytes (see PadLastQuad).
//
// All entries live in a single int32 area of 4-int slots, laid out as
//
//	[primary: N slots][secondary: N/2][tertiary: N/4][spillover: N/4][long names...]
//
// A slot holds up to 3 quads and the quad count. Names of 4 or more quads
// store their hash and the offset of their quads in the long-name area. A new
// name takes its primary slot if free, else the secondary slot shared by two
// primaries, else a free slot in its tertiary bucket, else the next spillover
// slot. The table doubles when the primary area is more than 80% full, or
// more than half full with spillover in use, or when spillover runs out.
//
// A table is not safe for concurrent use, except that MakeChild may be called
// concurrently on a root.
type ByteQuadsCanonicalizer struct {
	parent *ByteQuadsCanonicalizer
	state  atomic.Pointer[quadsState] // root only

	seed           int32
	failOnOverflow bool

	size           int
	count          int
	secondaryStart int
	tertiaryStart  int
	tertiaryBits   int
	hashArea       []int32
	names          []string
	spillEnd       int
	longNameEnd    int
	shared         bool
}

// NewBytesRoot returns a root table using the given hash seed.
func NewBytesRoot(seed int32) *ByteQuadsCanonicalizer {
	t := &ByteQuadsCanonicalizer{seed: seed}
	t.state.Store(initialQuadsState(quadsDefaultSize))
	return t
}

// SetFailOnOverflow configures whether running out of spillover slots in the
// children of root t reports ErrSymbolOverflow (true) or grows the table
// (false, the default).
func (t *ByteQuadsCanonicalizer) SetFailOnOverflow(fail bool) { t.failOnOverflow = fail }

// MakeChild returns a new child table of root t, initially sharing the
// current contents of t.
func (t *ByteQuadsCanonicalizer) MakeChild() *ByteQuadsCanonicalizer {
	c := &ByteQuadsCanonicalizer{parent: t, seed: t.seed, failOnOverflow: t.failOnOverflow}
	c.load(t.state.Load())
	return c
}

func (t *ByteQuadsCanonicalizer) load(st *quadsState) {
	t.size = st.size
	t.count = st.count
	t.secondaryStart = st.size << 2
	t.tertiaryStart = t.secondaryStart + t.secondaryStart>>1
	t.tertiaryBits = st.tertiaryBits
	t.hashArea = st.hashArea
	t.names = st.names
	t.spillEnd = st.spillEnd
	t.longNameEnd = st.longNameEnd
	t.shared = true
}

// Release offers the contents of child t back to its root. The root adopts
// them if t learned new names, or resets itself to empty if t grew beyond
// the reuse limit. Release has no effect on a root or an unmodified child.
func (t *ByteQuadsCanonicalizer) Release() {
	if t.parent == nil || t.shared {
		return
	}
	t.parent.mergeChild(&quadsState{
		size:         t.size,
		count:        t.count,
		tertiaryBits: t.tertiaryBits,
		hashArea:     t.hashArea,
		names:        t.names,
		spillEnd:     t.spillEnd,
		longNameEnd:  t.longNameEnd,
	})
	t.shared = true
}

func (t *ByteQuadsCanonicalizer) mergeChild(child *quadsState) {
	cur := t.state.Load()
	if child.count == cur.count {
		return
	}
	if child.count > quadsMaxReuse {
		glog.V(2).Infof("sym: discarding child quad table with %d names", child.count)
		child = initialQuadsState(quadsDefaultSize)
	} else {
		glog.V(2).Infof("sym: merging child quad table with %d names (root had %d)", child.count, cur.count)
	}
	t.state.CompareAndSwap(cur, child)
}

// Size reports the number of names in t.
func (t *ByteQuadsCanonicalizer) Size() int {
	if t.parent == nil {
		return t.state.Load().count
	}
	return t.count
}

// BucketCount reports the number of primary slots of t.
func (t *ByteQuadsCanonicalizer) BucketCount() int {
	if t.parent == nil {
		return t.state.Load().size
	}
	return t.size
}

func (t *ByteQuadsCanonicalizer) countRange(lo, hi int) int {
	n := 0
	for off := lo + 3; off < hi; off += 4 {
		if t.hashArea[off] != 0 {
			n++
		}
	}
	return n
}

// PrimaryCount reports the number of names in primary slots.
func (t *ByteQuadsCanonicalizer) PrimaryCount() int { return t.countRange(0, t.secondaryStart) }

// SecondaryCount reports the number of names in secondary slots.
func (t *ByteQuadsCanonicalizer) SecondaryCount() int {
	return t.countRange(t.secondaryStart, t.tertiaryStart)
}

// TertiaryCount reports the number of names in tertiary slots.
func (t *ByteQuadsCanonicalizer) TertiaryCount() int {
	return t.countRange(t.tertiaryStart, t.spillStart())
}

// SpilloverCount reports the number of names in spillover slots.
func (t *ByteQuadsCanonicalizer) SpilloverCount() int { return (t.spillEnd - t.spillStart()) >> 2 }

func (t *ByteQuadsCanonicalizer) spillStart() int { return t.size<<3 - t.size }

func (t *ByteQuadsCanonicalizer) String() string {
	return fmt.Sprintf("[ByteQuadsCanonicalizer: size=%d, hashSize=%d, %d/%d/%d/%d pri/sec/ter/spill]",
		t.count, t.size, t.PrimaryCount(), t.SecondaryCount(), t.TertiaryCount(), t.SpilloverCount())
}

// PadLastQuad pads the final quad q of a name, holding n (1 to 4) bytes in
// its low-order positions, with 0xFF bytes.
func PadLastQuad(q int32, n int) int32 {
	if n == 4 {
		return q
	}
	return q | int32(-1<<(n<<3))
}

// Quads appends to dst the padded quads of the UTF-8 bytes of name.
func Quads(dst []int32, name []byte) []int32 {
	var q int32
	n := 0
	for _, b := range name {
		q = q<<8 | int32(b)
		if n++; n == 4 {
			dst = append(dst, q)
			q, n = 0, 0
		}
	}
	if n != 0 {
		dst = append(dst, PadLastQuad(q, n))
	}
	return dst
}

// CalcHash1 returns the hash of a one-quad name.
func (t *ByteQuadsCanonicalizer) CalcHash1(q1 int32) int32 {
	h := q1 ^ t.seed
	h += int32(uint32(h) >> 16)
	h ^= h << 3
	h += int32(uint32(h) >> 12)
	return h
}

// CalcHash2 returns the hash of a two-quad name.
func (t *ByteQuadsCanonicalizer) CalcHash2(q1, q2 int32) int32 {
	h := q1
	h += int32(uint32(h) >> 15)
	h ^= int32(uint32(h) >> 9)
	h += q2 * mult
	h ^= t.seed
	h += int32(uint32(h) >> 16)
	h ^= int32(uint32(h) >> 4)
	h += h << 3
	return h
}

// CalcHash3 returns the hash of a three-quad name.
func (t *ByteQuadsCanonicalizer) CalcHash3(q1, q2, q3 int32) int32 {
	h := q1 ^ t.seed
	h += int32(uint32(h) >> 9)
	h *= mult3
	h += q2
	h *= mult
	h += int32(uint32(h) >> 15)
	h ^= q3
	h += int32(uint32(h) >> 4)
	h += int32(uint32(h) >> 15)
	h ^= h << 9
	return h
}

// CalcHashN returns the hash of a name of 4 or more quads.
func (t *ByteQuadsCanonicalizer) CalcHashN(q []int32) int32 {
	h := q[0] ^ t.seed
	h += int32(uint32(h) >> 9)
	h += q[1]
	h += int32(uint32(h) >> 15)
	h *= mult
	h ^= q[2]
	h += int32(uint32(h) >> 4)
	for _, next := range q[3:] {
		h += next ^ (next >> 21)
	}
	h *= mult2
	h += int32(uint32(h) >> 19)
	h ^= h << 5
	return h
}

func (t *ByteQuadsCanonicalizer) calcHash(q []int32) int32 {
	switch len(q) {
	case 1:
		return t.CalcHash1(q[0])
	case 2:
		return t.CalcHash2(q[0], q[1])
	case 3:
		return t.CalcHash3(q[0], q[1], q[2])
	}
	return t.CalcHashN(q)
}

func (t *ByteQuadsCanonicalizer) calcOffset(h int32) int { return int(h&int32(t.size-1)) << 2 }

func (t *ByteQuadsCanonicalizer) secondaryOffset(off int) int {
	return t.secondaryStart + (off>>3)<<2
}

func (t *ByteQuadsCanonicalizer) tertiaryOffset(off int) int {
	return t.tertiaryStart + (off>>(t.tertiaryBits+2))<<t.tertiaryBits
}

// slotMatches reports whether the slot at off holds the name q with hash h.
func (t *ByteQuadsCanonicalizer) slotMatches(off int, q []int32, h int32) bool {
	area := t.hashArea
	if int(area[off+3]) != len(q) {
		return false
	}
	switch len(q) {
	case 1:
		return area[off] == q[0]
	case 2:
		return area[off] == q[0] && area[off+1] == q[1]
	case 3:
		return area[off] == q[0] && area[off+1] == q[1] && area[off+2] == q[2]
	}
	if area[off] != h {
		return false
	}
	start := int(area[off+1])
	return slices.Equal(area[start:start+len(q)], q)
}

func (t *ByteQuadsCanonicalizer) find(q []int32, h int32) (string, bool) {
	off := t.calcOffset(h)
	if t.slotMatches(off, q, h) {
		return t.names[off>>2], true
	} else if t.hashArea[off+3] == 0 {
		return "", false
	}
	off2 := t.secondaryOffset(off)
	if t.slotMatches(off2, q, h) {
		return t.names[off2>>2], true
	} else if t.hashArea[off2+3] == 0 {
		return "", false
	}
	for o, end := t.tertiaryOffset(off), t.tertiaryOffset(off)+1<<t.tertiaryBits; o < end; o += 4 {
		if t.slotMatches(o, q, h) {
			return t.names[o>>2], true
		} else if t.hashArea[o+3] == 0 {
			return "", false
		}
	}
	for o := t.spillStart(); o < t.spillEnd; o += 4 {
		if t.slotMatches(o, q, h) {
			return t.names[o>>2], true
		}
	}
	return "", false
}

// FindName returns the name consisting of the single quad q1, if present.
func (t *ByteQuadsCanonicalizer) FindName(q1 int32) (string, bool) {
	return t.find([]int32{q1}, t.CalcHash1(q1))
}

// FindName2 returns the name consisting of the quads q1, q2, if present.
func (t *ByteQuadsCanonicalizer) FindName2(q1, q2 int32) (string, bool) {
	return t.find([]int32{q1, q2}, t.CalcHash2(q1, q2))
}

// FindName3 returns the name consisting of the quads q1, q2, q3, if present.
func (t *ByteQuadsCanonicalizer) FindName3(q1, q2, q3 int32) (string, bool) {
	return t.find([]int32{q1, q2, q3}, t.CalcHash3(q1, q2, q3))
}

// FindNameN returns the name consisting of the quads q, if present.
func (t *ByteQuadsCanonicalizer) FindNameN(q []int32) (string, bool) {
	if len(q) == 0 {
		return "", false
	}
	return t.find(q, t.calcHash(q))
}

// AddName adds name, whose padded quads are q, to t and returns it.
func (t *ByteQuadsCanonicalizer) AddName(name string, q []int32) (string, error) {
	if t.shared {
		t.hashArea = slices.Clone(t.hashArea)
		t.names = slices.Clone(t.names)
		t.shared = false
	}
	h := t.calcHash(q)
	off, err := t.findOffsetForAdd(h)
	if err != nil {
		return "", err
	}
	t.store(off, q, h)
	t.names[off>>2] = name
	t.count++
	return name, nil
}

func (t *ByteQuadsCanonicalizer) store(off int, q []int32, h int32) {
	area := t.hashArea
	switch len(q) {
	case 1:
		area[off] = q[0]
	case 2:
		area[off], area[off+1] = q[0], q[1]
	case 3:
		area[off], area[off+1], area[off+2] = q[0], q[1], q[2]
	default:
		// Appending may reallocate the hash area.
		start := t.appendLongName(q)
		t.hashArea[off] = h
		t.hashArea[off+1] = int32(start)
	}
	t.hashArea[off+3] = int32(len(q))
}

func (t *ByteQuadsCanonicalizer) appendLongName(q []int32) int {
	start := t.longNameEnd
	if need := start + len(q); need > len(t.hashArea) {
		grow := max(need-len(t.hashArea), min(4096, t.size))
		t.hashArea = slices.Grow(t.hashArea, grow)[:len(t.hashArea)+grow]
	}
	copy(t.hashArea[start:], q)
	t.longNameEnd += len(q)
	return start
}

func (t *ByteQuadsCanonicalizer) findOffsetForAdd(h int32) (int, error) {
	off := t.calcOffset(h)
	if t.hashArea[off+3] == 0 {
		return off, nil
	}
	if t.needRehash() {
		return t.resizeAndFindOffset(h), nil
	}
	if o, ok := t.findFreeSlot(off); ok {
		return o, nil
	}
	o := t.spillEnd
	t.spillEnd += 4
	if t.spillEnd >= t.size<<3 {
		if t.failOnOverflow {
			return 0, fmt.Errorf("%w: spill-over slots in symbol table with %d entries, hash area of %d slots is now full (all %d slots)",
				ErrSymbolOverflow, t.count, t.size, t.size>>2)
		}
		glog.V(2).Infof("sym: spill-over area full at %d names; growing table", t.count)
		return t.resizeAndFindOffset(h), nil
	}
	return o, nil
}

// findFreeSlot returns a free secondary or tertiary slot for the primary
// slot at off.
func (t *ByteQuadsCanonicalizer) findFreeSlot(off int) (int, bool) {
	if o := t.secondaryOffset(off); t.hashArea[o+3] == 0 {
		return o, true
	}
	for o, end := t.tertiaryOffset(off), t.tertiaryOffset(off)+1<<t.tertiaryBits; o < end; o += 4 {
		if t.hashArea[o+3] == 0 {
			return o, true
		}
	}
	return 0, false
}

// needRehash reports whether the primary area is over 80% full, or over 50%
// full with more than ~1% of names spilled over.
func (t *ByteQuadsCanonicalizer) needRehash() bool {
	if t.count > t.size>>1 {
		spill := (t.spillEnd - t.spillStart()) >> 2
		return spill > (1+t.count)>>7 || float64(t.count) > float64(t.size)*0.80
	}
	return false
}

func (t *ByteQuadsCanonicalizer) resizeAndFindOffset(h int32) int {
	t.rehash()
	off := t.calcOffset(h)
	if t.hashArea[off+3] == 0 {
		return off
	}
	if o, ok := t.findFreeSlot(off); ok {
		return o
	}
	o := t.spillEnd
	t.spillEnd += 4
	return o
}

func (t *ByteQuadsCanonicalizer) rehash() {
	t.shared = false
	oldArea, oldNames := t.hashArea, t.names
	oldSize, oldCount, oldEnd := t.size, t.count, t.spillEnd
	newSize := oldSize * 2

	if newSize > quadsMaxSize {
		glog.V(2).Infof("sym: quad table exceeds %d slots; clearing", quadsMaxSize)
		clear(t.hashArea)
		clear(t.names)
		t.nuke()
		return
	}

	t.hashArea = make([]int32, len(oldArea)+oldSize<<3)
	t.size = newSize
	t.secondaryStart = newSize << 2
	t.tertiaryStart = t.secondaryStart + t.secondaryStart>>1
	t.tertiaryBits = calcTertiaryShift(newSize)
	t.names = make([]string, len(oldNames)*2)
	t.nuke()

	copied := 0
	var q []int32
	for off := 0; off < oldEnd; off += 4 {
		n := int(oldArea[off+3])
		if n == 0 {
			continue
		}
		copied++
		if n <= 3 {
			q = append(q[:0], oldArea[off:off+n]...)
		} else {
			start := int(oldArea[off+1])
			q = append(q[:0], oldArea[start:start+n]...)
		}
		h := t.calcHash(q)
		noff, _ := t.findOffsetForAdd(h)
		t.store(noff, q, h)
		t.names[noff>>2] = oldNames[off>>2]
		t.count++
	}
	if copied != oldCount {
		panic(fmt.Sprintf("sym: internal error: rehash copied %d of %d names", copied, oldCount))
	}
}

func (t *ByteQuadsCanonicalizer) nuke() {
	t.count = 0
	t.spillEnd = t.spillStart()
	t.longNameEnd = t.size << 3
}
