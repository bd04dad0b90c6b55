package agent

import (
	"errors"
	"fmt"

	"github.com/yangyining/jots/smi"
)

// BER tags used by the v2c message surface. Values are universal class;
// PDU types and varbind exceptions are context class.
const (
	tagInteger     = 0x02
	tagOctetString = 0x04
	tagNull        = 0x05
	tagObjectID    = 0x06
	tagSequence    = 0x30

	tagNoSuchObject = 0x80
	tagEndOfMibView = 0x82

	tagGetRequest  = 0xA0
	tagGetNext     = 0xA1
	tagResponse    = 0xA2
	tagSetRequest  = 0xA3
	tagGetBulk     = 0xA5
)

// v2c error-status codes surfaced by set handling.
const (
	statusNoError     = 0
	statusWrongValue  = 10
	statusNoCreation  = 11
	statusNotWritable = 17
)

var errTruncated = errors.New("agent: truncated message")

// binding is one decoded variable binding. value is an int64 for
// integer tags, a []byte for octet strings and object identifiers in
// raw form, and nil for null and the exception tags.
type binding struct {
	oid   smi.Oid
	tag   byte
	value any
}

// message is a decoded v2c message. For get-bulk requests errorStatus
// carries non-repeaters and errorIndex max-repetitions, per the shared
// PDU layout.
type message struct {
	version     int64
	community   string
	pduType     byte
	requestID   int64
	errorStatus int64
	errorIndex  int64
	bindings    []binding
}

type berReader struct {
	buf []byte
	pos int
}

func (r *berReader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readHeader consumes a tag and a definite length.
func (r *berReader) readHeader() (byte, int, error) {
	tag, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	first, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	if first < 0x80 {
		return tag, int(first), nil
	}
	n := int(first & 0x7f)
	if n == 0 || n > 4 {
		return 0, 0, fmt.Errorf("agent: unsupported length form %#x", first)
	}
	length := 0
	for i := 0; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, 0, err
		}
		length = length<<8 | int(b)
	}
	return tag, length, nil
}

func (r *berReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *berReader) expect(tag byte) (*berReader, error) {
	got, length, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	if got != tag {
		return nil, fmt.Errorf("agent: expected tag %#x, got %#x", tag, got)
	}
	body, err := r.readBytes(length)
	if err != nil {
		return nil, err
	}
	return &berReader{buf: body}, nil
}

func (r *berReader) readInt() (int64, error) {
	tag, length, err := r.readHeader()
	if err != nil {
		return 0, err
	}
	if tag != tagInteger {
		return 0, fmt.Errorf("agent: expected integer, got tag %#x", tag)
	}
	body, err := r.readBytes(length)
	if err != nil {
		return 0, err
	}
	return decodeInt(body)
}

func decodeInt(body []byte) (int64, error) {
	if len(body) == 0 || len(body) > 8 {
		return 0, fmt.Errorf("agent: bad integer length %d", len(body))
	}
	v := int64(0)
	if body[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range body {
		v = v<<8 | int64(b)
	}
	return v, nil
}

func (r *berReader) readOctets() ([]byte, error) {
	tag, length, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	if tag != tagOctetString {
		return nil, fmt.Errorf("agent: expected octet string, got tag %#x", tag)
	}
	return r.readBytes(length)
}

func (r *berReader) done() bool { return r.pos >= len(r.buf) }

// decodeOid parses the packed object identifier body.
func decodeOid(body []byte) (smi.Oid, error) {
	if len(body) == 0 {
		return nil, errors.New("agent: empty oid")
	}
	oid := smi.Oid{uint32(body[0] / 40), uint32(body[0] % 40)}
	var acc uint32
	for _, b := range body[1:] {
		acc = acc<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			oid = append(oid, acc)
			acc = 0
		}
	}
	return oid, nil
}

// decodeMessage parses one community-string message.
func decodeMessage(buf []byte) (*message, error) {
	outer := &berReader{buf: buf}
	body, err := outer.expect(tagSequence)
	if err != nil {
		return nil, err
	}

	m := &message{}
	if m.version, err = body.readInt(); err != nil {
		return nil, err
	}
	community, err := body.readOctets()
	if err != nil {
		return nil, err
	}
	m.community = string(community)

	pduType, length, err := body.readHeader()
	if err != nil {
		return nil, err
	}
	switch pduType {
	case tagGetRequest, tagGetNext, tagSetRequest, tagGetBulk:
	default:
		return nil, fmt.Errorf("agent: unsupported pdu type %#x", pduType)
	}
	m.pduType = pduType

	raw, err := body.readBytes(length)
	if err != nil {
		return nil, err
	}
	pdu := &berReader{buf: raw}
	if m.requestID, err = pdu.readInt(); err != nil {
		return nil, err
	}
	if m.errorStatus, err = pdu.readInt(); err != nil {
		return nil, err
	}
	if m.errorIndex, err = pdu.readInt(); err != nil {
		return nil, err
	}

	list, err := pdu.expect(tagSequence)
	if err != nil {
		return nil, err
	}
	for !list.done() {
		vb, err := list.expect(tagSequence)
		if err != nil {
			return nil, err
		}
		oidTag, oidLen, err := vb.readHeader()
		if err != nil {
			return nil, err
		}
		if oidTag != tagObjectID {
			return nil, fmt.Errorf("agent: expected oid, got tag %#x", oidTag)
		}
		oidBody, err := vb.readBytes(oidLen)
		if err != nil {
			return nil, err
		}
		oid, err := decodeOid(oidBody)
		if err != nil {
			return nil, err
		}

		valTag, valLen, err := vb.readHeader()
		if err != nil {
			return nil, err
		}
		valBody, err := vb.readBytes(valLen)
		if err != nil {
			return nil, err
		}
		b := binding{oid: oid, tag: valTag}
		switch valTag {
		case tagInteger:
			if b.value, err = decodeInt(valBody); err != nil {
				return nil, err
			}
		case tagOctetString, tagObjectID:
			b.value = append([]byte(nil), valBody...)
		}
		m.bindings = append(m.bindings, b)
	}
	return m, nil
}

// encodeMessage renders a message back to wire form.
func encodeMessage(m *message) []byte {
	var list []byte
	for _, b := range m.bindings {
		vb := encodeTLV(tagObjectID, encodeOidBody(b.oid))
		switch b.tag {
		case tagInteger:
			vb = append(vb, encodeTLV(tagInteger, encodeIntBody(b.value.(int64)))...)
		case tagOctetString, tagObjectID:
			vb = append(vb, encodeTLV(b.tag, b.value.([]byte))...)
		default:
			// null and the varbind exceptions carry no content
			vb = append(vb, encodeTLV(b.tag, nil)...)
		}
		list = append(list, encodeTLV(tagSequence, vb)...)
	}

	pdu := encodeTLV(tagInteger, encodeIntBody(m.requestID))
	pdu = append(pdu, encodeTLV(tagInteger, encodeIntBody(m.errorStatus))...)
	pdu = append(pdu, encodeTLV(tagInteger, encodeIntBody(m.errorIndex))...)
	pdu = append(pdu, encodeTLV(tagSequence, list)...)

	body := encodeTLV(tagInteger, encodeIntBody(m.version))
	body = append(body, encodeTLV(tagOctetString, []byte(m.community))...)
	body = append(body, encodeTLV(m.pduType, pdu)...)

	return encodeTLV(tagSequence, body)
}

func encodeTLV(tag byte, body []byte) []byte {
	out := []byte{tag}
	n := len(body)
	switch {
	case n < 0x80:
		out = append(out, byte(n))
	case n <= 0xff:
		out = append(out, 0x81, byte(n))
	case n <= 0xffff:
		out = append(out, 0x82, byte(n>>8), byte(n))
	default:
		out = append(out, 0x83, byte(n>>16), byte(n>>8), byte(n))
	}
	return append(out, body...)
}

// encodeIntBody renders the minimal two's-complement form.
func encodeIntBody(v int64) []byte {
	body := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		body[i] = byte(v)
		v >>= 8
	}
	start := 0
	for start < 7 {
		if body[start] == 0x00 && body[start+1]&0x80 == 0 {
			start++
			continue
		}
		if body[start] == 0xff && body[start+1]&0x80 != 0 {
			start++
			continue
		}
		break
	}
	return body[start:]
}

func encodeOidBody(oid smi.Oid) []byte {
	if len(oid) < 2 {
		return []byte{0}
	}
	out := []byte{byte(oid[0]*40 + oid[1])}
	for _, id := range oid[2:] {
		out = append(out, encodeBase128(id)...)
	}
	return out
}

func encodeBase128(v uint32) []byte {
	if v == 0 {
		return []byte{0}
	}
	var tmp []byte
	for v > 0 {
		tmp = append(tmp, byte(v&0x7f))
		v >>= 7
	}
	out := make([]byte, 0, len(tmp))
	for i := len(tmp) - 1; i >= 0; i-- {
		b := tmp[i]
		if i > 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
