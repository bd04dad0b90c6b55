package construction

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/yangyining/jots"
)

var indexedType = reflect.TypeOf((*jots.Indexed)(nil)).Elem()

// declaredIndex returns the element's self-chosen row index when it
// implements jots.Indexed, directly or through its address.
func declaredIndex(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if v.Type().Implements(indexedType) {
		return v.Interface().(jots.Indexed).SnmpIndex(), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(indexedType) {
		return v.Addr().Interface().(jots.Indexed).SnmpIndex(), true
	}
	return nil, false
}

// encodeIndex turns a row index value into identifier form. Integers map
// to a single identifier; booleans use TruthValue encoding; strings are
// length-prefixed byte sequences. Anything else is rendered as text
// first.
func encodeIndex(v any) []uint32 {
	switch n := v.(type) {
	case int:
		return []uint32{uint32(n)}
	case int8:
		return []uint32{uint32(n)}
	case int16:
		return []uint32{uint32(n)}
	case int32:
		return []uint32{uint32(n)}
	case int64:
		return []uint32{uint32(n)}
	case uint:
		return []uint32{uint32(n)}
	case uint8:
		return []uint32{uint32(n)}
	case uint16:
		return []uint32{uint32(n)}
	case uint32:
		return []uint32{n}
	case uint64:
		return []uint32{uint32(n)}
	case bool:
		if n {
			return []uint32{1}
		}
		return []uint32{2}
	case string:
		return encodeStringIndex(n)
	default:
		return encodeStringIndex(fmt.Sprint(v))
	}
}

func encodeStringIndex(s string) []uint32 {
	out := make([]uint32, 0, len(s)+1)
	out = append(out, uint32(len(s)))
	for _, b := range []byte(s) {
		out = append(out, uint32(b))
	}
	return out
}

// sortKeys orders map keys so row identifiers are deterministic:
// numerically for integral keys, lexicographically otherwise.
func sortKeys(keys []reflect.Value) {
	if len(keys) < 2 {
		return
	}
	switch keys[0].Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	default:
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
	}
}

// pathName joins an exposed-name path into one CamelCase descriptor.
func pathName(names []string) string {
	var b strings.Builder
	for _, name := range names {
		if name == "" {
			continue
		}
		r := []rune(name)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
