package classify

import (
	"reflect"
	"strings"
)

// TagKey is the struct tag key controlling member exposure.
const TagKey = "jots"

// Decision is the outcome of the inclusion policy for one member.
type Decision int

const (
	// Exclude drops the member from the exposed surface.
	Exclude Decision = iota
	// Leaf exposes the member as a directly representable value.
	Leaf
	// Descend exposes the member as a container of further members.
	Descend
)

// Policy decides, per declared member, whether it is exposed and whether
// it is a leaf or a container of children. Implementations must be pure:
// the classifier caches their results per declaring type.
type Policy interface {
	Decide(declaring reflect.Type, field reflect.StructField) Decision
}

// DefaultPolicy is the standard inclusion policy. Rules are evaluated in
// order, first match wins:
//
//  1. tag option "include": include, as a leaf when the type is
//     directly representable and as a container otherwise
//  2. tag name "-": exclude
//  3. unexported member: exclude
//  4. bool, integral, float, string or registered enum type: leaf
//  5. func, chan, complex, uintptr, unsafe pointer: exclude
//  6. anything else (struct, pointer, interface, slice, array, map):
//     container
type DefaultPolicy struct{}

// Decide implements Policy.
func (DefaultPolicy) Decide(_ reflect.Type, field reflect.StructField) Decision {
	tag := ParseTag(field)
	switch {
	case tag.Include:
		if isLeafType(field.Type) {
			return Leaf
		}
		return Descend
	case tag.Skip:
		return Exclude
	case field.PkgPath != "":
		return Exclude
	case isLeafType(field.Type):
		return Leaf
	}

	switch field.Type.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128,
		reflect.Uintptr, reflect.UnsafePointer:
		return Exclude
	}
	return Descend
}

// Tag is the parsed form of a `jots` struct tag.
type Tag struct {
	// Name overrides the exposed member name when non-empty.
	Name string
	// Skip marks the member as never exposed (`jots:"-"`).
	Skip bool
	// Include forces exposure regardless of the remaining rules.
	Include bool
	// ReadOnly suppresses settability even when a setter exists.
	ReadOnly bool
}

// ParseTag parses the `jots` tag of a struct field.
func ParseTag(field reflect.StructField) Tag {
	raw, ok := field.Tag.Lookup(TagKey)
	if !ok {
		return Tag{}
	}
	parts := strings.Split(raw, ",")
	tag := Tag{Name: parts[0]}
	if tag.Name == "-" && len(parts) == 1 {
		return Tag{Skip: true}
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "include":
			tag.Include = true
		case "readonly":
			tag.ReadOnly = true
		}
	}
	return tag
}

// isLeafType reports whether t is directly representable as a single
// tree value.
func isLeafType(t reflect.Type) bool {
	if _, ok := EnumNames(t); ok {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}
	return false
}
