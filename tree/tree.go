// Package tree holds the terminal artifact of construction: an
// immutable, OID-sorted index of field descriptors supporting point
// lookup, get-next traversal, bulk access by position, value assignment
// and merging.
package tree

import (
	"fmt"
	"sort"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/cache"
	"github.com/yangyining/jots/lookup"
	"github.com/yangyining/jots/smi"
)

// Tree is an immutable, identifier-sorted sequence of field descriptors
// plus the numeric prefix it was built under. Once built, a Tree is safe
// for unbounded concurrent lookups. Concurrent Sets do not disturb the
// tree structure but race at the granularity of the underlying member.
type Tree struct {
	prefix smi.Oid
	fields []lookup.Field

	// lookups memoizes exact-match positions. Get-next results are
	// deliberately never cached: a single walk touches every distinct
	// prefix once, which would churn the whole cache for no hits.
	lookups   *cache.Cache[string, int]
	cacheSize int
}

// New builds a tree over the given descriptors, sorting them by
// identifier. cacheSize bounds the exact-lookup cache; zero or negative
// disables it.
func New(prefix smi.Oid, fields []lookup.Field, cacheSize int) *Tree {
	sorted := make([]lookup.Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Oid().Compare(sorted[j].Oid()) < 0
	})
	return newSorted(prefix, sorted, cacheSize)
}

// newSorted wraps an already-sorted descriptor sequence.
func newSorted(prefix smi.Oid, fields []lookup.Field, cacheSize int) *Tree {
	t := &Tree{
		prefix:    prefix.Clone(),
		fields:    fields,
		cacheSize: cacheSize,
	}
	if cacheSize > 0 {
		t.lookups = cache.New[string, int](cacheSize)
	}
	return t
}

// Len returns the number of descriptors in the tree.
func (t *Tree) Len() int { return len(t.fields) }

// Prefix returns a copy of the numeric prefix the tree was built under.
func (t *Tree) Prefix() smi.Oid { return t.prefix.Clone() }

// Field returns the descriptor at position index in identifier order.
// Walking past the last entry yields jots.ErrNoMoreEntries.
func (t *Tree) Field(index int) (lookup.Field, error) {
	if index < 0 {
		return nil, fmt.Errorf("jots: negative tree index %d", index)
	}
	if index >= len(t.fields) {
		return nil, jots.ErrNoMoreEntries
	}
	return t.fields[index], nil
}

// Get returns the value bound to oid, or jots.ErrOidNotFound.
func (t *Tree) Get(oid smi.Oid) (smi.VarBind, error) {
	idx, ok := t.cachedSearch(oid)
	if !ok {
		return smi.VarBind{}, jots.ErrOidNotFound
	}
	f := t.fields[idx]
	return smi.VarBind{Oid: f.Oid(), Value: smi.FromValue(f.Get())}, nil
}

// GetNext returns the binding of the first identifier strictly greater
// than oid, or jots.ErrPastEndOfTree when the walk is complete.
func (t *Tree) GetNext(oid smi.Oid) (smi.VarBind, error) {
	idx, err := t.NextIndex(oid)
	if err != nil {
		return smi.VarBind{}, err
	}
	f := t.fields[idx]
	return smi.VarBind{Oid: f.Oid(), Value: smi.FromValue(f.Get())}, nil
}

// NextIndex returns the position of the first identifier strictly
// greater than oid.
func (t *Tree) NextIndex(oid smi.Oid) (int, error) {
	// Whether oid is present or falls between entries, the successor
	// sits one past the last identifier <= oid.
	idx, _ := t.search(oid)
	idx++
	if idx >= len(t.fields) {
		return 0, jots.ErrPastEndOfTree
	}
	return idx, nil
}

// Set parses value according to the declared kind of the member at oid
// and writes it. With enforceWritable set, a non-settable member fails
// with jots.ErrNotWritable; with it clear, the write goes through the
// member's accessor path regardless.
func (t *Tree) Set(oid smi.Oid, value string, enforceWritable bool) error {
	idx, ok := t.cachedSearch(oid)
	if !ok {
		return jots.ErrOidNotFound
	}
	f := t.fields[idx]
	if enforceWritable && !f.Writable() {
		return jots.ErrNotWritable
	}
	return f.Set(value)
}

// Merge combines t and other into a new tree. Identifiers present in
// both are taken from other; the result's prefix is the longest common
// leading run of the two prefixes. Neither input is modified.
func (t *Tree) Merge(other *Tree) *Tree {
	merged := make([]lookup.Field, 0, len(t.fields)+len(other.fields))

	i, j := 0, 0
	for i < len(t.fields) && j < len(other.fields) {
		switch t.fields[i].Oid().Compare(other.fields[j].Oid()) {
		case 0:
			// other shadows t
			merged = append(merged, other.fields[j])
			i++
			j++
		case -1:
			merged = append(merged, t.fields[i])
			i++
		default:
			merged = append(merged, other.fields[j])
			j++
		}
	}
	merged = append(merged, t.fields[i:]...)
	merged = append(merged, other.fields[j:]...)

	return newSorted(smi.CommonPrefix(t.prefix, other.prefix), merged, t.cacheSize)
}

// Walk calls fn for every descriptor in identifier order until fn
// returns false.
func (t *Tree) Walk(fn func(lookup.Field) bool) {
	for _, f := range t.fields {
		if !fn(f) {
			return
		}
	}
}

// cachedSearch is search with exact-hit memoization.
func (t *Tree) cachedSearch(oid smi.Oid) (int, bool) {
	if t.lookups == nil {
		idx, found := t.search(oid)
		return idx, found
	}
	key := oid.String()
	if idx, ok := t.lookups.Get(key); ok {
		return idx, true
	}
	idx, found := t.search(oid)
	if found {
		t.lookups.Put(key, idx)
	}
	return idx, found
}

// search binary-searches the descriptor sequence. It returns the
// position of oid when found, or the position of the last identifier
// less than oid otherwise (-1 when oid sorts before everything).
func (t *Tree) search(oid smi.Oid) (int, bool) {
	low, high := 0, len(t.fields)-1
	for low <= high {
		mid := int(uint(low+high) >> 1)
		switch t.fields[mid].Oid().Compare(oid) {
		case -1:
			low = mid + 1
		case 1:
			high = mid - 1
		default:
			return mid, true
		}
	}
	return low - 1, false
}
