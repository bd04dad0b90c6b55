// Package jots turns an arbitrary Go object graph into a flat, totally
// ordered SNMP tree that supports point lookup, get-next traversal and
// value assignment by OID.
//
// The heavy lifting happens in the construction package: a recursive
// descent over the object graph assigns deterministic numeric identifiers
// to every exposed leaf member and flattens nested collections into
// multi-indexed sibling tables, because SNMP forbids tables within table
// rows. The result is an immutable tree in the tree package.
//
// # Quick Start
//
//	import (
//	    "github.com/yangyining/jots/construction"
//	    "github.com/yangyining/jots/smi"
//	)
//
//	tr, err := construction.Build(obj, smi.Oid{1, 3, 6, 1, 4, 1, 100})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vb, err := tr.Get(smi.Oid{1, 3, 6, 1, 4, 1, 100, 1, 1})
//	next, err := tr.GetNext(smi.Oid{1, 3, 6, 1, 4, 1, 100})
//	err = tr.Set(someOid, "5", true)
//
// Exposure of struct members is controlled by `jots` field tags:
//
//	type Server struct {
//	    Name     string  `jots:"serverName"` // renamed
//	    Secret   string  `jots:"-"`          // never exposed
//	    Load     float64 `jots:",readonly"`  // exposed, not settable
//	    internal int     // unexported, skipped
//	}
//
// A member is settable when the declaring type has a matching
// Set<Name>(v T) method on its pointer receiver and the member does not
// carry the readonly tag option. Collections (slices, arrays, maps) become
// SNMP tables; nested collections are re-parented as sibling tables joined
// by composite row indices.
//
// Trees built once are immutable and safe for unbounded concurrent reads.
// The agent package serves a tree over UDP; the mib package renders a
// human-readable schema document for it.
package jots
