package smi

import (
	"fmt"
	"math"
	"strconv"
)

// Variable is a typed value as it crosses the wire boundary. Only two
// representations matter to the tree core: integers and octet strings.
// Everything that is not a 32-bit signed integer travels as text, the
// same rule the original variable-binding construction applies.
type Variable interface {
	// String renders the value for diagnostics and text transports.
	String() string

	isVariable()
}

// Integer32 is a signed 32-bit wire integer.
type Integer32 int32

func (Integer32) isVariable() {}

func (v Integer32) String() string {
	return strconv.FormatInt(int64(v), 10)
}

// OctetString is an opaque byte-string wire value; jots uses it for every
// leaf that does not fit Integer32.
type OctetString string

func (OctetString) isVariable() {}

func (v OctetString) String() string {
	return string(v)
}

// VarBind pairs an identifier with its value.
type VarBind struct {
	Oid   Oid
	Value Variable
}

func (vb VarBind) String() string {
	return vb.Oid.String() + " = " + vb.Value.String()
}

// FromValue wraps a Go value for wire transmission. Signed integers that
// fit 32 bits become Integer32; booleans map to TruthValue encoding
// (1 true, 2 false); everything else is rendered as an OctetString.
func FromValue(v any) Variable {
	switch n := v.(type) {
	case nil:
		return OctetString("")
	case bool:
		if n {
			return Integer32(1)
		}
		return Integer32(2)
	case int:
		return fromInt64(int64(n))
	case int8:
		return Integer32(n)
	case int16:
		return Integer32(n)
	case int32:
		return Integer32(n)
	case int64:
		return fromInt64(n)
	case uint:
		return fromUint64(uint64(n))
	case uint8:
		return Integer32(n)
	case uint16:
		return Integer32(n)
	case uint32:
		return fromUint64(uint64(n))
	case uint64:
		return fromUint64(n)
	case string:
		return OctetString(n)
	default:
		return OctetString(fmt.Sprint(v))
	}
}

func fromInt64(n int64) Variable {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return Integer32(n)
	}
	return OctetString(strconv.FormatInt(n, 10))
}

func fromUint64(n uint64) Variable {
	if n <= math.MaxInt32 {
		return Integer32(n)
	}
	return OctetString(strconv.FormatUint(n, 10))
}
