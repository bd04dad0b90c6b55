package construction

import (
	"reflect"
	"strings"
)

// visitedRef is one entry of the descent stack: an identity for cycle
// detection plus a short description for the error chain. Identity is
// the (address, type) pair, not the bare address: a struct shares its
// address with its first member, so the address alone would report an
// enclosing object and its leading member as the same visit.
type visitedRef struct {
	id   uintptr
	typ  reflect.Type
	desc string
	// anon marks an unnamed object type, exempt from the cycle error.
	anon bool
}

// tctx is the mutable state of one construction run. It is confined to
// the goroutine driving the descent; nothing here is shared.
//
// The numbering convention: oid holds the numeric path being assigned,
// starting at [1]. Entering an object pushes a fresh sibling counter;
// every non-container member bumps the top counter. Containers
// re-parent themselves to a sibling slot at their enclosing region (see
// enterTable), push the constant 1 entry region, and contribute per-row
// index identifiers through ext. regions tracks where each open
// container's numbering region begins; it is seeded with 1 so the
// outermost region trims back to the root.
type tctx struct {
	oid    []uint32
	ext    []uint32
	extLen []int

	// names is the exposed-name path from the root.
	names []string
	// visited is the object stack currently being descended.
	visited []visitedRef

	// tableKeys holds the path keys of the open containers, innermost
	// last.
	tableKeys []string
	// regions holds the oid length recorded at each open container's
	// entry.
	regions []int

	// slots maps a container path key to its assigned sibling slot, and
	// a parent key to the highest slot handed out beneath it.
	slots map[string]uint32
	// saved maps a container path key to the oid snapshot taken at its
	// first entry, restored on every exit.
	saved map[string][]uint32
}

func newContext() *tctx {
	return &tctx{
		oid:     []uint32{1},
		regions: []int{1},
		slots:   make(map[string]uint32),
		saved:   make(map[string][]uint32),
	}
}

// pathKey is the chained member-name path identifying the current node.
// Keying saved state by the full path keeps two same-named containers
// under different parents apart.
func (c *tctx) pathKey() string {
	return strings.Join(c.names, ".")
}

func (c *tctx) pushName(name string) { c.names = append(c.names, name) }
func (c *tctx) popName()             { c.names = c.names[:len(c.names)-1] }

// bumpOid advances the sibling counter of the current region.
func (c *tctx) bumpOid() { c.oid[len(c.oid)-1]++ }

// staticOid returns a copy of the current numeric path.
func (c *tctx) staticOid() []uint32 {
	out := make([]uint32, len(c.oid))
	copy(out, c.oid)
	return out
}

// fullOid returns prefix + oid + ext as one fresh identifier.
func (c *tctx) fullOid(prefix []uint32) []uint32 {
	out := make([]uint32, 0, len(prefix)+len(c.oid)+len(c.ext))
	out = append(out, prefix...)
	out = append(out, c.oid...)
	out = append(out, c.ext...)
	return out
}

func (c *tctx) pushVisited(ref visitedRef) { c.visited = append(c.visited, ref) }
func (c *tctx) popVisited()                { c.visited = c.visited[:len(c.visited)-1] }

// onStack reports whether the object identified by (id, typ) is already
// being descended. Zero identities (values without a stable address)
// never match.
func (c *tctx) onStack(id uintptr, typ reflect.Type) (visitedRef, bool) {
	if id == 0 {
		return visitedRef{}, false
	}
	for _, ref := range c.visited {
		if ref.id == id && ref.typ == typ {
			return ref, true
		}
	}
	return visitedRef{}, false
}

// chain renders the visited stack for a cycle error, outermost first.
func (c *tctx) chain() []string {
	out := make([]string, len(c.visited))
	for i, ref := range c.visited {
		out[i] = ref.desc
	}
	return out
}

// pushExt appends one row-index extension, replacing the previous row's.
func (c *tctx) pushExt(ids []uint32) {
	c.ext = append(c.ext, ids...)
	c.extLen = append(c.extLen, len(ids))
}

// popExt removes the innermost row-index extension.
func (c *tctx) popExt() {
	n := c.extLen[len(c.extLen)-1]
	c.extLen = c.extLen[:len(c.extLen)-1]
	c.ext = c.ext[:len(c.ext)-n]
}
