package construction

import (
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/yangyining/jots"
	"github.com/yangyining/jots/classify"
	"github.com/yangyining/jots/lookup"
	"github.com/yangyining/jots/mib"
	"github.com/yangyining/jots/smi"
)

// engine drives one construction run. It owns the traversal context and
// accumulates the field descriptors; an engine is used once and
// discarded.
type engine struct {
	reg      *registry
	cls      *classify.Classifier
	ctx      *tctx
	handlers map[Variant]handler
	log      *zap.Logger

	prefix smi.Oid
	fields []lookup.Field

	recording bool
	entries   []mib.Entry
	mibSeen   map[string]struct{}
}

// descend routes a value to the handler its runtime type resolves to.
// Interface members are unwrapped first; nil values of any shape fall
// through to the absent handler.
func (e *engine) descend(v reflect.Value, m *classify.Member) error {
	if !v.IsValid() {
		return e.handlers[VariantAbsent].handle(e, v, m)
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return e.handlers[VariantAbsent].handle(e, v, m)
		}
		v = v.Elem()
	}
	variant := e.reg.resolve(v.Type())
	if isNilValue(v) {
		variant = VariantAbsent
	}
	return e.handlers[variant].handle(e, v, m)
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// member visits one exposed member of the object owner. ownerPtr is a
// pointer to owner when one exists; setters bind through it.
func (e *engine) member(owner, ownerPtr reflect.Value, m classify.Member) error {
	c := e.ctx
	c.pushName(m.Name)
	defer c.popName()

	// Containers claim a sibling slot at their enclosing region instead
	// of a counter value; everything else advances the counter.
	if !m.Table {
		c.bumpOid()
	}

	fv := owner.Field(m.Index)
	if m.Leaf {
		e.record(mib.RoleLeaf, &m)
		oid := smi.Oid(c.fullOid(e.prefix))
		e.fields = append(e.fields, lookup.New(oid, m, ownerPtr, fv))
		e.log.Debug("materialized leaf",
			zap.String("member", c.pathKey()),
			zap.Stringer("oid", oid))
		return nil
	}
	if !m.Table {
		e.record(mib.RoleEntry, &m)
	}
	return e.descend(fv, &m)
}

// objectHandler walks the exposed members of a plain object in
// declaration order.
type objectHandler struct{}

func (objectHandler) handle(e *engine, v reflect.Value, m *classify.Member) error {
	var ptr reflect.Value
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		ptr = v
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		e.log.Debug("skipping non-object value",
			zap.String("member", e.ctx.pathKey()),
			zap.String("type", v.Type().String()))
		return nil
	}
	if !ptr.IsValid() && v.CanAddr() {
		ptr = v.Addr()
	}
	var id uintptr
	if ptr.IsValid() {
		id = ptr.Pointer()
	}

	if ref, ok := e.ctx.onStack(id, v.Type()); ok {
		if ref.anon {
			// unnamed object types may close a self-reference silently
			e.log.Debug("skipping anonymous self-reference",
				zap.String("member", e.ctx.pathKey()))
			return nil
		}
		return &jots.CircularReferenceError{
			Member: e.ctx.pathKey(),
			Chain:  append(e.ctx.chain(), describe(v, id)),
		}
	}
	e.ctx.pushVisited(visitedRef{
		id:   id,
		typ:  v.Type(),
		desc: describe(v, id),
		anon: v.Type().Name() == "",
	})
	defer e.ctx.popVisited()

	c := e.ctx
	c.oid = append(c.oid, 0)
	defer func() { c.oid = c.oid[:len(c.oid)-1] }()

	info := e.cls.Info(v.Type())
	for i := range info.Members {
		if err := e.member(v, ptr, info.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

// describe renders one visited object for a cycle chain.
func describe(v reflect.Value, id uintptr) string {
	if !v.CanInterface() {
		return fmt.Sprintf("%s@0x%x", v.Type(), id)
	}
	return spew.Sprintf("%s@0x%x = %v", v.Type(), id, v.Interface())
}

// listHandler flattens a list-like container: every element becomes a
// row indexed by its position, or by its declared index when the element
// implements jots.Indexed.
type listHandler struct{}

func (listHandler) handle(e *engine, v reflect.Value, m *classify.Member) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return fmt.Errorf("jots: cannot iterate %s as a list", v.Type())
	}

	e.enterTable(m)
	defer e.exitTable()

	for i := 0; i < v.Len(); i++ {
		if err := e.row(v.Index(i), i+1, m); err != nil {
			return err
		}
	}
	return nil
}

// mapHandler flattens a key-value container: every entry becomes a row
// indexed by its key, visited in sorted key order so the resulting
// identifiers are deterministic.
type mapHandler struct{}

func (mapHandler) handle(e *engine, v reflect.Value, m *classify.Member) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Map {
		return fmt.Errorf("jots: cannot iterate %s as a map", v.Type())
	}

	e.enterTable(m)
	defer e.exitTable()

	keys := v.MapKeys()
	sortKeys(keys)
	for _, k := range keys {
		elem := addressableRow(v.MapIndex(k))
		if err := e.row(elem, k.Interface(), m); err != nil {
			return err
		}
	}
	return nil
}

// addressableRow gives a map-held object a stable address by copying it
// behind a fresh pointer. Writes through such a row update the copy, not
// the map; maps of pointers keep full write-through.
func addressableRow(elem reflect.Value) reflect.Value {
	v := elem
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct && !v.CanAddr() {
		cp := reflect.New(v.Type())
		cp.Elem().Set(v)
		return cp
	}
	return elem
}

// absentHandler skips a missing value. The member's counter or slot, if
// any, stays consumed.
type absentHandler struct{}

func (absentHandler) handle(e *engine, _ reflect.Value, _ *classify.Member) error {
	e.log.Debug("skipping absent member", zap.String("member", e.ctx.pathKey()))
	return nil
}

// row installs the index extension for one container element and
// descends into it. Elements of leaf type become a single value column.
func (e *engine) row(elem reflect.Value, fallback any, m *classify.Member) error {
	idx := fallback
	if declared, ok := declaredIndex(elem); ok {
		idx = declared
	}
	e.ctx.popExt()
	e.ctx.pushExt(encodeIndex(idx))

	ev := elem
	for ev.Kind() == reflect.Pointer || ev.Kind() == reflect.Interface {
		if ev.IsNil() {
			return nil
		}
		ev = ev.Elem()
	}
	if kind, enums, ok := classify.LeafKind(ev.Type()); ok {
		e.scalarRow(ev, kind, enums, m)
		return nil
	}
	return e.descend(elem, m)
}

// scalarRow materializes a container element of leaf type as the single
// column of its row.
func (e *engine) scalarRow(v reflect.Value, kind jots.Kind, enums []string, m *classify.Member) {
	c := e.ctx
	oid := make(smi.Oid, 0, len(e.prefix)+len(c.oid)+1+len(c.ext))
	oid = append(oid, e.prefix...)
	oid = append(oid, c.oid...)
	oid = append(oid, 1)
	oid = append(oid, c.ext...)

	name := "value"
	if m != nil {
		name = m.Name
	}
	mm := classify.Member{Name: name, Leaf: true, Kind: kind, EnumNames: enums}
	e.fields = append(e.fields, lookup.New(oid, mm, reflect.Value{}, v))
}

// enterTable re-parents the numbering to the container's sibling slot
// and opens its entry region.
//
// On first entry the container claims the next unused slot beneath its
// enclosing region: one past the parent container's last assignment, or
// one past the current sibling counter when no container encloses it.
// The pre-entry numeric path is snapshotted so every exit can restore
// it; later entries under the same path key reuse the recorded slot, so
// rows of a nested container share one static base across outer rows.
func (e *engine) enterTable(m *classify.Member) {
	c := e.ctx
	c.regions = append(c.regions, len(c.oid))
	region := c.regions[len(c.regions)-2]

	key := c.pathKey()
	parentKey := ""
	if n := len(c.tableKeys); n > 0 {
		parentKey = c.tableKeys[n-1]
	}

	slot, ok := c.slots[key]
	if !ok {
		seed, seeded := c.slots[parentKey]
		if !seeded {
			if region < len(c.oid) {
				seed = c.oid[region]
			} else {
				seed = c.oid[len(c.oid)-1]
			}
		}
		slot = seed + 1
		c.slots[parentKey] = slot
		c.slots[key] = slot
		c.saved[key] = c.staticOid()
	}

	c.oid = append(c.oid[:region-1], slot)
	if m != nil {
		e.record(mib.RoleTable, m)
	}
	c.tableKeys = append(c.tableKeys, key)
	c.oid = append(c.oid, 1)
	c.pushExt([]uint32{0}) // placeholder until the first row
}

// exitTable closes the entry region and restores the numeric path
// snapshotted at the container's first entry.
func (e *engine) exitTable() {
	c := e.ctx
	c.popExt()
	c.oid = c.oid[:len(c.oid)-1]

	key := c.tableKeys[len(c.tableKeys)-1]
	c.tableKeys = c.tableKeys[:len(c.tableKeys)-1]

	snap := c.saved[key]
	c.oid = append(c.oid[:0], snap...)
	c.regions = c.regions[:len(c.regions)-1]
}

// record notes one distinct static node for MIB generation.
func (e *engine) record(role mib.Role, m *classify.Member) {
	if !e.recording {
		return
	}
	c := e.ctx
	name := pathName(c.names)
	if name == "" {
		return
	}
	oid := make(smi.Oid, 0, len(e.prefix)+len(c.oid))
	oid = append(oid, e.prefix...)
	oid = append(oid, c.oid...)

	key := name + "@" + oid.String()
	if _, ok := e.mibSeen[key]; ok {
		return
	}
	e.mibSeen[key] = struct{}{}

	e.entries = append(e.entries, mib.Entry{
		Parent:    pathName(c.names[:len(c.names)-1]),
		Name:      name,
		SubID:     c.oid[len(c.oid)-1],
		Oid:       oid,
		Role:      role,
		Kind:      m.Kind,
		EnumNames: m.EnumNames,
		Writable:  m.Settable,
		InTable:   len(c.tableKeys) > 0,
	})
}
