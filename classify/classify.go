// Package classify decides which members of a type are exposed in the
// tree, what their exposed names are, whether they are leaves or
// containers, and whether they can be written. Classification is pure and
// memoized per declaring type.
package classify

import (
	"reflect"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/cache"
)

// Member is the cached classification of one exposed struct member.
type Member struct {
	// Index is the field index within the declaring struct.
	Index int
	// Name is the exposed name: the tag override when present, the Go
	// field name otherwise.
	Name string
	// Type is the declared member type.
	Type reflect.Type
	// Leaf marks a directly representable member.
	Leaf bool
	// Kind is the declared value kind; meaningful only for leaves.
	Kind jots.Kind
	// EnumNames holds the value names for KindEnum leaves.
	EnumNames []string
	// Table marks a member whose type is a flattenable container
	// (slice, array or map, possibly behind one pointer).
	Table bool
	// Settable reports that a matching setter exists and the member does
	// not carry the readonly tag option.
	Settable bool
	// SetterName is the setter method name when Settable.
	SetterName string
}

// Info is the cached classification of a declaring struct type: its
// exposed members in stable declaration order.
type Info struct {
	Type    reflect.Type
	Members []Member
}

// Classifier computes and caches member classifications. A Classifier is
// safe for concurrent use; cached entries are idempotent recomputations.
type Classifier struct {
	policy Policy
	infos  *cache.Cache[reflect.Type, *Info]
}

// NewClassifier creates a classifier using the given inclusion policy
// (DefaultPolicy when nil) and cache capacity.
func NewClassifier(policy Policy, capacity int) *Classifier {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	return &Classifier{
		policy: policy,
		infos:  cache.New[reflect.Type, *Info](capacity),
	}
}

// Info returns the classification of the struct type t.
func (c *Classifier) Info(t reflect.Type) *Info {
	return c.infos.GetOrCompute(t, func() *Info {
		return c.classifyType(t)
	})
}

func (c *Classifier) classifyType(t reflect.Type) *Info {
	info := &Info{Type: t}
	if t.Kind() != reflect.Struct {
		return info
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		decision := c.policy.Decide(t, field)
		if decision == Exclude {
			continue
		}
		info.Members = append(info.Members, classifyMember(t, field, i, decision))
	}
	return info
}

func classifyMember(declaring reflect.Type, field reflect.StructField, index int, decision Decision) Member {
	tag := ParseTag(field)

	m := Member{
		Index: index,
		Name:  field.Name,
		Type:  field.Type,
		Leaf:  decision == Leaf,
		Table: IsContainer(field.Type),
	}
	if tag.Name != "" {
		m.Name = tag.Name
	}
	if m.Leaf {
		m.Kind, m.EnumNames = kindOf(field.Type)
		if name, ok := setterFor(declaring, field); ok && !tag.ReadOnly {
			m.Settable = true
			m.SetterName = name
		}
	}
	return m
}

// IsContainer reports whether t is a flattenable container type: a
// slice, array or map, possibly behind a single pointer.
func IsContainer(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// LeafKind reports whether t is directly representable as a single tree
// value and, when it is, its declared kind and enum names.
func LeafKind(t reflect.Type) (jots.Kind, []string, bool) {
	if !isLeafType(t) {
		return 0, nil, false
	}
	kind, names := kindOf(t)
	return kind, names, true
}

// kindOf maps a leaf type to its declared value kind.
func kindOf(t reflect.Type) (jots.Kind, []string) {
	if names, ok := EnumNames(t); ok {
		return jots.KindEnum, names
	}
	switch t.Kind() {
	case reflect.Bool:
		return jots.KindBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return jots.KindInteger, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return jots.KindUnsigned, nil
	case reflect.Float32, reflect.Float64:
		return jots.KindFloat, nil
	default:
		return jots.KindString, nil
	}
}

// setterFor looks for a Set<FieldName> method on the pointer receiver of
// the declaring type taking exactly one argument of the member type.
// Methods promoted from embedded (ancestor) types are found the same way.
func setterFor(declaring reflect.Type, field reflect.StructField) (string, bool) {
	name := "Set" + field.Name
	method, ok := reflect.PointerTo(declaring).MethodByName(name)
	if !ok {
		return "", false
	}
	mt := method.Type
	// receiver + one argument, no variadic, argument type must match
	if mt.NumIn() != 2 || mt.IsVariadic() || mt.In(1) != field.Type {
		return "", false
	}
	return name, true
}
