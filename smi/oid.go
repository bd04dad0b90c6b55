// Package smi holds the protocol-runtime primitives the rest of the
// module builds on: the numeric object identifier and the typed values
// bound to it at the wire boundary.
package smi

import (
	"fmt"
	"strconv"
	"strings"
)

// Oid is an object identifier: an ordered sequence of non-negative
// sub-identifiers. The zero value is a valid, empty identifier.
//
// Oids are ordered lexicographically by position, with a shorter prefix
// sorting before any of its extensions.
type Oid []uint32

// ParseOid parses a dotted identifier such as "1.3.6.1.4.1" or
// ".1.3.6.1.4.1".
func ParseOid(s string) (Oid, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return Oid{}, nil
	}
	parts := strings.Split(s, ".")
	oid := make(Oid, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("smi: invalid oid %q: %w", s, err)
		}
		oid = append(oid, uint32(n))
	}
	return oid, nil
}

// Compare returns -1, 0 or 1 as o sorts before, equal to or after other.
func (o Oid) Compare(other Oid) int {
	n := len(o)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		switch {
		case o[i] < other[i]:
			return -1
		case o[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(o) < len(other):
		return -1
	case len(o) > len(other):
		return 1
	}
	return 0
}

// Equal reports whether o and other are the same identifier.
func (o Oid) Equal(other Oid) bool {
	return o.Compare(other) == 0
}

// HasPrefix reports whether o begins with prefix.
func (o Oid) HasPrefix(prefix Oid) bool {
	if len(prefix) > len(o) {
		return false
	}
	for i, sub := range prefix {
		if o[i] != sub {
			return false
		}
	}
	return true
}

// Append returns a new identifier consisting of o followed by subs.
// o itself is not modified.
func (o Oid) Append(subs ...uint32) Oid {
	out := make(Oid, 0, len(o)+len(subs))
	out = append(out, o...)
	return append(out, subs...)
}

// Clone returns an independent copy of o.
func (o Oid) Clone() Oid {
	out := make(Oid, len(o))
	copy(out, o)
	return out
}

// CommonPrefix returns the longest leading run of sub-identifiers shared
// by a and b.
func CommonPrefix(a, b Oid) Oid {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make(Oid, 0, n)
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			break
		}
		out = append(out, a[i])
	}
	return out
}

// String renders o in dotted form with a leading dot, e.g. ".1.3.6.1".
func (o Oid) String() string {
	if len(o) == 0 {
		return "."
	}
	var b strings.Builder
	for _, sub := range o {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return b.String()
}
