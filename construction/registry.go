package construction

import (
	"reflect"

	"github.com/yangyining/jots/cache"
	"github.com/yangyining/jots/classify"
)

// Variant is one of the closed set of traversal strategies a runtime
// type can resolve to. Every type reachable from the root resolves to
// exactly one variant before its members are visited.
type Variant int

const (
	// VariantObject walks the exposed members of a plain object.
	VariantObject Variant = iota
	// VariantList flattens a list-like container into a table indexed by
	// position or by the element's declared index.
	VariantList
	// VariantMap flattens a key-value container into a table indexed by
	// key.
	VariantMap
	// VariantAbsent skips a missing value.
	VariantAbsent
)

// ifaceVariant is a capability-interface registration; checked in
// registration order during resolution.
type ifaceVariant struct {
	iface   reflect.Type
	variant Variant
}

// registry resolves a runtime type to its traversal variant. Resolution
// order: exact registered type, registered capability interfaces in
// declaration order, pointer unwrapping, then the type's kind; plain
// object is the fallback. Results are cached per concrete type; the
// cache is append-only and shared safely across concurrent reads.
type registry struct {
	exact   map[reflect.Type]Variant
	ifaces  []ifaceVariant
	results *cache.Cache[reflect.Type, Variant]
}

func newRegistry(capacity int) *registry {
	return &registry{
		exact:   make(map[reflect.Type]Variant),
		results: cache.New[reflect.Type, Variant](capacity),
	}
}

// register binds t to a variant. Interface types become capability
// registrations; concrete types become exact matches.
func (r *registry) register(t reflect.Type, v Variant) {
	if t.Kind() == reflect.Interface {
		r.ifaces = append(r.ifaces, ifaceVariant{iface: t, variant: v})
		return
	}
	r.exact[t] = v
}

// resolve returns the variant for t.
func (r *registry) resolve(t reflect.Type) Variant {
	return r.results.GetOrCompute(t, func() Variant {
		return r.resolveSlow(t)
	})
}

func (r *registry) resolveSlow(t reflect.Type) Variant {
	if v, ok := r.exact[t]; ok {
		return v
	}
	for _, reg := range r.ifaces {
		if t.Implements(reg.iface) {
			return reg.variant
		}
	}
	// Walk outward the way an ancestor chain would: unwrap the pointer
	// and resolve what it points at.
	if t.Kind() == reflect.Pointer {
		return r.resolveSlow(t.Elem())
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return VariantList
	case reflect.Map:
		return VariantMap
	}
	return VariantObject
}

// isContainer reports whether t flattens into a table.
func (r *registry) isContainer(t reflect.Type) bool {
	switch r.resolve(t) {
	case VariantList, VariantMap:
		return true
	}
	return false
}

// handler is one traversal strategy. Strategies are stateless; all
// traversal state lives in the engine's context.
type handler interface {
	handle(e *engine, v reflect.Value, m *classify.Member) error
}
