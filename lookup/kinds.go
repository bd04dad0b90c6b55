package lookup

import (
	"reflect"
	"strconv"

	"github.com/yangyining/jots"
)

type boolField struct{ base }

func (f *boolField) Kind() jots.Kind { return jots.KindBoolean }

func (f *boolField) Get() any { return f.val.Bool() }

func (f *boolField) Set(text string) error {
	v, err := strconv.ParseBool(text)
	if err != nil {
		return badValue(text, jots.KindBoolean)
	}
	return f.write(reflect.ValueOf(v).Convert(f.val.Type()))
}

type intField struct{ base }

func (f *intField) Kind() jots.Kind { return jots.KindInteger }

func (f *intField) Get() any { return f.val.Int() }

func (f *intField) Set(text string) error {
	v, err := strconv.ParseInt(text, 10, f.val.Type().Bits())
	if err != nil {
		return badValue(text, jots.KindInteger)
	}
	return f.write(reflect.ValueOf(v).Convert(f.val.Type()))
}

type uintField struct{ base }

func (f *uintField) Kind() jots.Kind { return jots.KindUnsigned }

func (f *uintField) Get() any { return f.val.Uint() }

func (f *uintField) Set(text string) error {
	v, err := strconv.ParseUint(text, 10, f.val.Type().Bits())
	if err != nil {
		return badValue(text, jots.KindUnsigned)
	}
	return f.write(reflect.ValueOf(v).Convert(f.val.Type()))
}

type floatField struct{ base }

func (f *floatField) Kind() jots.Kind { return jots.KindFloat }

func (f *floatField) Get() any { return f.val.Float() }

func (f *floatField) Set(text string) error {
	v, err := strconv.ParseFloat(text, f.val.Type().Bits())
	if err != nil {
		return badValue(text, jots.KindFloat)
	}
	return f.write(reflect.ValueOf(v).Convert(f.val.Type()))
}

type stringField struct{ base }

func (f *stringField) Kind() jots.Kind { return jots.KindString }

func (f *stringField) Get() any { return f.val.String() }

func (f *stringField) Set(text string) error {
	return f.write(reflect.ValueOf(text).Convert(f.val.Type()))
}

// enumField exposes a registered enumerated type by name. Integral enum
// members hold an index into the name list; string enum members hold one
// of the names directly.
type enumField struct {
	base
	names []string
}

func (f *enumField) Kind() jots.Kind { return jots.KindEnum }

func (f *enumField) Get() any {
	switch f.val.Kind() {
	case reflect.String:
		return f.val.String()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		idx := f.val.Uint()
		if idx < uint64(len(f.names)) {
			return f.names[idx]
		}
		return strconv.FormatUint(idx, 10)
	default:
		idx := f.val.Int()
		if idx >= 0 && idx < int64(len(f.names)) {
			return f.names[idx]
		}
		return strconv.FormatInt(idx, 10)
	}
}

func (f *enumField) Set(text string) error {
	idx := -1
	for i, name := range f.names {
		if name == text {
			idx = i
			break
		}
	}
	if idx < 0 {
		return badValue(text, jots.KindEnum)
	}
	if f.val.Kind() == reflect.String {
		return f.write(reflect.ValueOf(text).Convert(f.val.Type()))
	}
	return f.write(reflect.ValueOf(idx).Convert(f.val.Type()))
}
