// Package lookup holds the per-leaf field descriptors that make up a
// tree: one implementation per declared value kind, each pairing a live
// accessor with an optional setter and the text parsing rules for
// assignment.
package lookup

import (
	"reflect"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/classify"
	"github.com/yangyining/jots/smi"
)

// Field is one exposed leaf value: an OID, an accessor to the live value,
// an optional mutator and the declared value kind. Fields are created
// during construction and immutable afterwards; Get and Set read and
// write the underlying member directly.
type Field interface {
	// Oid returns the field's identifier. Callers must not modify it.
	Oid() smi.Oid
	// Name returns the exposed member name.
	Name() string
	// Kind returns the declared value kind.
	Kind() jots.Kind
	// Writable reports whether the member is settable: a matching setter
	// exists and no readonly marker is present.
	Writable() bool
	// Owner returns the object instance the member belongs to.
	Owner() any
	// Get reads the member's current value.
	Get() any
	// Set parses text according to the declared kind and writes it
	// through the setter, or directly through the member when no setter
	// is registered. Unparseable text yields a *jots.BadValueError.
	// Set does not check writability; that enforcement belongs to the
	// tree.
	Set(text string) error
}

// New materializes a field descriptor for the classified member m.
// val is the member's value, owner a pointer to the enclosing object.
func New(oid smi.Oid, m classify.Member, owner, val reflect.Value) Field {
	b := base{
		oid:      oid,
		name:     m.Name,
		val:      val,
		owner:    owner,
		writable: m.Settable,
	}
	if m.Settable && owner.IsValid() {
		b.setter = owner.MethodByName(m.SetterName)
	}

	switch m.Kind {
	case jots.KindBoolean:
		return &boolField{b}
	case jots.KindInteger:
		return &intField{b}
	case jots.KindUnsigned:
		return &uintField{b}
	case jots.KindFloat:
		return &floatField{b}
	case jots.KindEnum:
		return &enumField{base: b, names: m.EnumNames}
	default:
		return &stringField{b}
	}
}

// base carries the state shared by all field kinds.
type base struct {
	oid      smi.Oid
	name     string
	val      reflect.Value
	setter   reflect.Value // bound setter method; zero when none
	owner    reflect.Value
	writable bool
}

func (b *base) Oid() smi.Oid   { return b.oid }
func (b *base) Name() string   { return b.name }
func (b *base) Writable() bool { return b.writable }

func (b *base) Owner() any {
	if !b.owner.IsValid() {
		return nil
	}
	return b.owner.Interface()
}

// write stores v into the member, preferring the setter when one is
// bound. Without a setter the member itself must be addressable.
func (b *base) write(v reflect.Value) error {
	if b.setter.IsValid() {
		b.setter.Call([]reflect.Value{v})
		return nil
	}
	if !b.val.CanSet() {
		return jots.ErrNotWritable
	}
	b.val.Set(v)
	return nil
}

// badValue builds the parse-failure error for this member.
func badValue(text string, kind jots.Kind) error {
	return &jots.BadValueError{Text: text, Kind: kind}
}
