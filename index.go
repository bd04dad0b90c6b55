package jots

// Indexed lets a container element choose its own row index instead of
// the default positional or key-derived one. SnmpIndex may return any
// integer type, a bool or a string; other values are rendered as text
// before encoding.
type Indexed interface {
	SnmpIndex() any
}
