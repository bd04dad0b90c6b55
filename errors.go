package jots

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel failures surfaced by tree lookups and sets. All of them are
// synchronous and local to the call that triggered them; none is retried
// or downgraded internally.
var (
	// ErrOidNotFound reports a get or set that addressed an OID absent
	// from the tree.
	ErrOidNotFound = errors.New("jots: oid not found in tree")

	// ErrNotWritable reports a set that targeted a non-settable member
	// with writability enforcement on.
	ErrNotWritable = errors.New("jots: oid is not writable")

	// ErrNoMoreEntries reports an index argument beyond the last entry.
	ErrNoMoreEntries = errors.New("jots: no more entries in tree")

	// ErrPastEndOfTree reports a get-next that ran off the end of the
	// tree. It is distinct from ErrNoMoreEntries so callers can tell a
	// bad index from a completed walk.
	ErrPastEndOfTree = errors.New("jots: past end of tree")
)

// BadValueError reports text that could not be parsed into a member's
// declared value kind, including an enumerated name that is not part of
// the member's enumeration. Text carries the offending input verbatim.
type BadValueError struct {
	Text string
	Kind Kind
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("jots: cannot parse %q as %s", e.Text, e.Kind)
}

// CircularReferenceError aborts construction when the descent revisits an
// object already on the traversal stack. Chain holds a description of
// every object on the visited stack, outermost first, with the offending
// object last.
//
// Members that close a cycle intentionally can be excluded with the
// `jots:"-"` tag.
type CircularReferenceError struct {
	// Member is the exposed name path of the member whose value closed
	// the cycle.
	Member string
	// Chain describes the visited objects, outermost first.
	Chain []string
}

func (e *CircularReferenceError) Error() string {
	var b strings.Builder
	b.WriteString("jots: circular reference at ")
	b.WriteString(e.Member)
	b.WriteString(" (exclude the member with a `jots:\"-\"` tag to break the cycle); visited:")
	for _, ref := range e.Chain {
		b.WriteString("\n    ")
		b.WriteString(ref)
	}
	return b.String()
}
