// Package construction turns a live object graph into a flat,
// identifier-sorted tree. The descent classifies each member, routes
// every value through a handler chosen by its runtime type, assigns
// hierarchical numeric identifiers as it goes, and materializes one
// field descriptor per reachable leaf.
package construction

import (
	"errors"
	"reflect"

	"go.uber.org/zap"

	"github.com/yangyining/jots/classify"
	"github.com/yangyining/jots/mib"
	"github.com/yangyining/jots/smi"
	"github.com/yangyining/jots/tree"
)

type registration struct {
	t reflect.Type
	v Variant
}

type options struct {
	policy        classify.Policy
	logger        *zap.Logger
	classifyCache int
	resolveCache  int
	lookupCache   int
	mibDoc        *mib.Document
	registrations []registration
}

// Option adjusts construction behavior.
type Option func(*options)

// WithPolicy replaces the default member inclusion policy.
func WithPolicy(p classify.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the construction logger; the default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClassifierCacheSize bounds the per-type classification cache.
func WithClassifierCacheSize(n int) Option {
	return func(o *options) { o.classifyCache = n }
}

// WithResolverCacheSize bounds the per-type handler resolution cache.
func WithResolverCacheSize(n int) Option {
	return func(o *options) { o.resolveCache = n }
}

// WithLookupCacheSize bounds the built tree's exact-lookup cache. Zero
// disables lookup caching.
func WithLookupCacheSize(n int) Option {
	return func(o *options) { o.lookupCache = n }
}

// WithMib records the tree's static shape into doc during construction.
// The caller provides Module and Root; Build fills Prefix and Entries.
func WithMib(doc *mib.Document) Option {
	return func(o *options) { o.mibDoc = doc }
}

// WithVariant binds a type to a traversal variant ahead of the default
// kind-based resolution. Pass a value of the type itself, or a nil
// pointer to an interface to register a capability interface; interface
// registrations are consulted in the order given.
func WithVariant(sample any, v Variant) Option {
	return func(o *options) {
		t := reflect.TypeOf(sample)
		if t == nil {
			return
		}
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
			t = t.Elem()
		}
		o.registrations = append(o.registrations, registration{t: t, v: v})
	}
}

// Build constructs a tree from the object graph rooted at obj under the
// given numeric prefix. obj should be a pointer for setters to bind and
// writes to reach the caller's object; a non-pointer root is traversed
// through an addressable copy.
func Build(obj any, prefix smi.Oid, opts ...Option) (*tree.Tree, error) {
	if obj == nil {
		return nil, errors.New("jots: nil root object")
	}

	o := options{
		logger:        zap.NewNop(),
		classifyCache: 256,
		resolveCache:  256,
		lookupCache:   256,
	}
	for _, opt := range opts {
		opt(&o)
	}

	reg := newRegistry(o.resolveCache)
	for _, r := range o.registrations {
		reg.register(r.t, r.v)
	}

	e := &engine{
		reg: reg,
		cls: classify.NewClassifier(o.policy, o.classifyCache),
		ctx: newContext(),
		handlers: map[Variant]handler{
			VariantObject: objectHandler{},
			VariantList:   listHandler{},
			VariantMap:    mapHandler{},
			VariantAbsent: absentHandler{},
		},
		log:       o.logger,
		prefix:    prefix.Clone(),
		recording: o.mibDoc != nil,
		mibSeen:   make(map[string]struct{}),
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer {
		cp := reflect.New(v.Type())
		cp.Elem().Set(v)
		v = cp
	}
	if err := e.descend(v, nil); err != nil {
		return nil, err
	}

	if o.mibDoc != nil {
		o.mibDoc.Prefix = prefix.Clone()
		o.mibDoc.Entries = e.entries
	}

	t := tree.New(prefix, e.fields, o.lookupCache)
	e.log.Debug("construction complete",
		zap.Stringer("prefix", prefix),
		zap.Int("fields", t.Len()))
	return t, nil
}
