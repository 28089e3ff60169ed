// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package sym implements the symbol tables that canonicalize property names
// decoded by parsers, so that repeated names share one string value.
//
// Each table has a root, shared by all parsers of a factory, and children
// made from the root for each parser. A child reads the contents of the root
// as of its creation and copies them before its first addition. When its
// parser is closed, a child that learned new names offers its contents back
// to the root, unless it has grown too large to be worth keeping.
//
// Two variants are provided: CharsToNameCanonicalizer looks up names from
// rune buffers, and ByteQuadsCanonicalizer looks up names from UTF-8 input
// packed into 32-bit quads.
package sym

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/creachadair/mds/mapset"
	"github.com/golang/glog"
)

// ErrSymbolOverflow is reported when a table detects an excessive number of
// hash collisions and is configured to fail rather than degrade.
var ErrSymbolOverflow = errors.New("symbol table hash collision overflow")

// HashMult is the multiplier of the rolling hash of CharsToNameCanonicalizer:
// each rune c is mixed in as h = h*HashMult + c, starting from the seed.
const HashMult = 33

const (
	charsDefaultSize = 64
	charsMaxSize     = 0x10000
	charsMaxReuse    = 12000
	charsMaxChain    = 100
)

// A bucket is an immutable collision chain. Chains are shared between a
// table and its copies, and only ever extended at the head.
type bucket struct {
	symbol string
	next   *bucket
	length int
}

func newBucket(s string, next *bucket) *bucket {
	b := &bucket{symbol: s, next: next, length: 1}
	if next != nil {
		b.length = next.length + 1
	}
	return b
}

func (b *bucket) find(buf []rune) string {
	for ; b != nil; b = b.next {
		if equalRunes(b.symbol, buf) {
			return b.symbol
		}
	}
	return ""
}

func equalRunes(s string, buf []rune) bool {
	i := 0
	for _, r := range s {
		if i >= len(buf) || buf[i] != r {
			return false
		}
		i++
	}
	return i == len(buf)
}

// charsState is a snapshot of a table, as published by a root.
type charsState struct {
	size    int
	longest int
	symbols []string
	buckets []*bucket
}

func initialCharsState(n int) *charsState {
	return &charsState{symbols: make([]string, n), buckets: make([]*bucket, n>>1)}
}

// A CharsToNameCanonicalizer maps names decoded from runes to strings.
//
// The main table holds one symbol per slot; each pair of adjacent slots shares
// a collision chain. The table doubles when it is 75% full. A chain that grows
// beyond 100 entries is dropped (its symbols are simply re-learned); if the
// same chain overflows twice the table either fails with ErrSymbolOverflow or
// stops canonicalizing, as configured.
//
// A table is not safe for concurrent use, except that MakeChild may be called
// concurrently on a root.
type CharsToNameCanonicalizer struct {
	parent *CharsToNameCanonicalizer
	state  atomic.Pointer[charsState] // root only

	seed           int32
	failOnOverflow bool
	canonicalize   bool

	symbols   []string
	buckets   []*bucket
	size      int
	threshold int
	indexMask int32
	longest   int // longest collision chain, or -1 if unknown
	shared    bool
	overflows mapset.Set[int]
}

// NewCharsRoot returns a root table using the given hash seed.
func NewCharsRoot(seed int32) *CharsToNameCanonicalizer {
	t := &CharsToNameCanonicalizer{seed: seed, canonicalize: true}
	t.state.Store(initialCharsState(charsDefaultSize))
	return t
}

// SetFailOnOverflow configures whether a repeated chain overflow in the
// children of root t reports ErrSymbolOverflow (true) or disables
// canonicalization (false, the default).
func (t *CharsToNameCanonicalizer) SetFailOnOverflow(fail bool) { t.failOnOverflow = fail }

// SetCanonicalize configures whether the children of root t canonicalize at
// all. When disabled, FindSymbol returns a fresh string for every call.
func (t *CharsToNameCanonicalizer) SetCanonicalize(ok bool) { t.canonicalize = ok }

// MakeChild returns a new child table of root t, initially sharing the
// current contents of t.
func (t *CharsToNameCanonicalizer) MakeChild() *CharsToNameCanonicalizer {
	st := t.state.Load()
	n := len(st.symbols)
	return &CharsToNameCanonicalizer{
		parent:         t,
		seed:           t.seed,
		failOnOverflow: t.failOnOverflow,
		canonicalize:   t.canonicalize,
		symbols:        st.symbols,
		buckets:        st.buckets,
		size:           st.size,
		threshold:      thresholdSize(n),
		indexMask:      int32(n - 1),
		longest:        st.longest,
		shared:         true,
	}
}

func thresholdSize(n int) int { return n - n>>2 }

// Seed returns the hash seed of t, the initial value of the rolling hash.
func (t *CharsToNameCanonicalizer) Seed() int32 { return t.seed }

// CalcHash returns the hash of buf.
func (t *CharsToNameCanonicalizer) CalcHash(buf []rune) int32 {
	h := t.seed
	for _, r := range buf {
		h = h*HashMult + r
	}
	return FinishHash(h)
}

// CalcHashString returns the hash of the runes of s.
func (t *CharsToNameCanonicalizer) CalcHashString(s string) int32 {
	h := t.seed
	for _, r := range s {
		h = h*HashMult + r
	}
	return FinishHash(h)
}

// FinishHash maps a rolling hash to the value passed to FindSymbol.
func FinishHash(h int32) int32 {
	if h == 0 {
		return 1
	}
	return h
}

func (t *CharsToNameCanonicalizer) hashToIndex(h int32) int {
	h += int32(uint32(h) >> 15)
	h ^= h << 7
	h += int32(uint32(h) >> 3)
	return int(h & t.indexMask)
}

// FindSymbol returns the canonical string for buf[start:start+n], whose hash
// is h, adding it to t if it is not already present.
func (t *CharsToNameCanonicalizer) FindSymbol(buf []rune, start, n int, h int32) (string, error) {
	if n < 1 {
		return "", nil
	}
	key := buf[start : start+n]
	if !t.canonicalize {
		return string(key), nil
	}
	index := t.hashToIndex(h)
	if sym := t.symbols[index]; sym != "" {
		if equalRunes(sym, key) {
			return sym, nil
		}
		if s := t.buckets[index>>1].find(key); s != "" {
			return s, nil
		}
	}
	return t.addSymbol(key, h, index)
}

func (t *CharsToNameCanonicalizer) addSymbol(key []rune, h int32, index int) (string, error) {
	if t.shared {
		t.symbols = append([]string(nil), t.symbols...)
		t.buckets = append([]*bucket(nil), t.buckets...)
		t.shared = false
	} else if t.size >= t.threshold {
		t.rehash()
		index = t.hashToIndex(t.CalcHash(key))
	}

	sym := string(key)
	if !t.canonicalize { // rehash gave up
		return sym, nil
	}
	t.size++
	if t.symbols[index] == "" {
		t.symbols[index] = sym
		return sym, nil
	}
	bix := index >> 1
	nb := newBucket(sym, t.buckets[bix])
	if nb.length > charsMaxChain {
		if err := t.handleSpillOverflow(bix, nb, index); err != nil {
			return "", err
		}
	} else {
		t.buckets[bix] = nb
		t.longest = max(t.longest, nb.length)
	}
	return sym, nil
}

// handleSpillOverflow drops the overlong chain at bix, keeping only the new
// symbol in the main slot.
func (t *CharsToNameCanonicalizer) handleSpillOverflow(bix int, nb *bucket, index int) error {
	if t.overflows.Has(bix) {
		if t.failOnOverflow {
			return fmt.Errorf("%w: longest collision chain in symbol table (of size %d) now exceeds maximum, %d",
				ErrSymbolOverflow, t.size, charsMaxChain)
		}
		glog.V(2).Infof("sym: chain %d overflowed twice; disabling canonicalization", bix)
		t.canonicalize = false
	} else {
		if t.overflows == nil {
			t.overflows = mapset.New[int]()
		}
		t.overflows.Add(bix)
		glog.V(2).Infof("sym: chain %d overflowed; dropping %d symbols", bix, nb.length)
	}
	t.symbols[index] = nb.symbol
	t.buckets[bix] = nil
	t.size -= nb.length
	t.longest = -1
	return nil
}

func (t *CharsToNameCanonicalizer) rehash() {
	oldSymbols, oldBuckets := t.symbols, t.buckets
	n := 2 * len(oldSymbols)

	// Give up on tables that grow too large, rather than risk a DoS.
	if n > charsMaxSize {
		glog.V(2).Infof("sym: table exceeds %d entries; disabling canonicalization", charsMaxSize)
		t.size = 0
		t.canonicalize = false
		t.symbols = make([]string, charsDefaultSize)
		t.buckets = make([]*bucket, charsDefaultSize>>1)
		t.indexMask = charsDefaultSize - 1
		return
	}

	t.symbols = make([]string, n)
	t.buckets = make([]*bucket, n>>1)
	t.indexMask = int32(n - 1)
	t.threshold = thresholdSize(n)

	count, longest := 0, 0
	insert := func(sym string) {
		count++
		index := t.hashToIndex(t.CalcHashString(sym))
		if t.symbols[index] == "" {
			t.symbols[index] = sym
			return
		}
		bix := index >> 1
		nb := newBucket(sym, t.buckets[bix])
		t.buckets[bix] = nb
		longest = max(longest, nb.length)
	}
	for _, sym := range oldSymbols {
		if sym != "" {
			insert(sym)
		}
	}
	for _, b := range oldBuckets {
		for ; b != nil; b = b.next {
			insert(b.symbol)
		}
	}
	t.longest = longest
	t.overflows = nil
	if count != t.size {
		panic(fmt.Sprintf("sym: internal error: rehash copied %d of %d symbols", count, t.size))
	}
}

// Release offers the contents of child t back to its root. The root adopts
// them if t learned new names, or resets itself to empty if t grew beyond
// the reuse limit. Release has no effect on a root or an unmodified child.
func (t *CharsToNameCanonicalizer) Release() {
	if t.parent == nil || t.shared {
		return
	}
	if t.canonicalize {
		t.parent.mergeChild(&charsState{
			size:    t.size,
			longest: t.longest,
			symbols: t.symbols,
			buckets: t.buckets,
		})
	}
	t.shared = true
}

func (t *CharsToNameCanonicalizer) mergeChild(child *charsState) {
	cur := t.state.Load()
	if child.size == cur.size {
		return
	}
	if child.size > charsMaxReuse {
		glog.V(2).Infof("sym: discarding child table with %d symbols", child.size)
		child = initialCharsState(charsDefaultSize)
	} else {
		glog.V(2).Infof("sym: merging child table with %d symbols (root had %d)", child.size, cur.size)
	}
	t.state.CompareAndSwap(cur, child)
}

// Size reports the number of symbols in t.
func (t *CharsToNameCanonicalizer) Size() int {
	if t.parent == nil {
		return t.state.Load().size
	}
	return t.size
}

// BucketCount reports the number of main slots of t.
func (t *CharsToNameCanonicalizer) BucketCount() int {
	if t.parent == nil {
		return len(t.state.Load().symbols)
	}
	return len(t.symbols)
}

// CollisionCount reports the number of symbols held in collision chains.
func (t *CharsToNameCanonicalizer) CollisionCount() int {
	buckets := t.buckets
	if t.parent == nil {
		buckets = t.state.Load().buckets
	}
	var n int
	for _, b := range buckets {
		if b != nil {
			n += b.length
		}
	}
	return n
}

// MaxCollisionLength reports the length of the longest collision chain, or
// -1 if it is not known since a chain was dropped.
func (t *CharsToNameCanonicalizer) MaxCollisionLength() int {
	if t.parent == nil {
		return t.state.Load().longest
	}
	return t.longest
}

// IsCanonicalizing reports whether t still canonicalizes names.
func (t *CharsToNameCanonicalizer) IsCanonicalizing() bool { return t.canonicalize }
