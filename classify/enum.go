package classify

import (
	"fmt"
	"reflect"
	"sync"
)

// Enumerated types are registered up front, before any construction, so
// that every reachable runtime type resolves to a closed set of value
// kinds. Registration maps a named Go type to its ordered value names:
// for integral types the member value is the index into the name list,
// for string types the value must be one of the names.

var (
	enumMu sync.RWMutex
	enums  = make(map[reflect.Type][]string)
)

// RegisterEnum registers the type of sample as an enumerated type with
// the given ordered names. It panics on an unsupported underlying kind or
// an empty name list; registration is a program-initialization step.
func RegisterEnum(sample any, names ...string) {
	t := reflect.TypeOf(sample)
	if t == nil || len(names) == 0 {
		panic("classify: RegisterEnum requires a sample value and at least one name")
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
	default:
		panic(fmt.Sprintf("classify: cannot register %s as an enum: underlying kind %s", t, t.Kind()))
	}

	enumMu.Lock()
	defer enumMu.Unlock()
	cp := make([]string, len(names))
	copy(cp, names)
	enums[t] = cp
}

// EnumNames returns the registered value names for t, if any.
func EnumNames(t reflect.Type) ([]string, bool) {
	enumMu.RLock()
	defer enumMu.RUnlock()
	names, ok := enums[t]
	return names, ok
}
