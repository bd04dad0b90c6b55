package jots

// Kind is the declared value kind of an exposed leaf member. It decides
// how textual values are parsed on assignment and how values are wrapped
// at the wire boundary.
type Kind int

// Value kinds.
const (
	// KindBoolean is a true/false member.
	KindBoolean Kind = iota
	// KindInteger is a signed integral member of any width.
	KindInteger
	// KindUnsigned is an unsigned integral member of any width.
	KindUnsigned
	// KindFloat is a floating point member.
	KindFloat
	// KindString is a textual member.
	KindString
	// KindEnum is a member of a registered enumerated type, exposed by
	// the enumerated name rather than the underlying integer.
	KindEnum
)

// String returns the kind name as used in diagnostics and MIB output.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindUnsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}
