// Package tag implements the EC protocol's recursive, self-describing tag
// tree: a named, typed value that may carry an ordered sequence of child
// tags. Tag names encode a "has children" bit in their low bit on the wire;
// body lengths are computed bottom-up so a tag's header can be written
// before its payload is known to the caller.
package tag

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/wire/varint"
)

// Tag is a typed, named value with optional ordered children.
//
// Value holds the decoded Go representation for Type:
//
//	Custom  -> []byte
//	Uint8   -> uint8
//	Uint16  -> uint16
//	Uint32  -> uint32
//	Uint64  -> uint64
//	String  -> string
//	Double  -> float64
//	IPv4    -> net.IP (4-byte form)
//	Hash16  -> string (32-character lowercase hex)
type Tag struct {
	Name     uint16
	Type     uint8
	Value    any
	Children []*Tag
}

// ErrUnknownType is returned when decoding encounters a tag type byte
// outside the nine the protocol defines.
type ErrUnknownType struct {
	Type uint8
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("tag: unsupported type 0x%02x", e.Type)
}

func New(name uint16, typ uint8, value any) *Tag {
	return &Tag{Name: name, Type: typ, Value: value}
}

func NewCustom(name uint16, v []byte) *Tag { return New(name, codes.TagTypeCustom, v) }
func NewUint8(name uint16, v uint8) *Tag   { return New(name, codes.TagTypeUint8, v) }
func NewUint16(name uint16, v uint16) *Tag { return New(name, codes.TagTypeUint16, v) }
func NewUint32(name uint16, v uint32) *Tag { return New(name, codes.TagTypeUint32, v) }
func NewUint64(name uint16, v uint64) *Tag { return New(name, codes.TagTypeUint64, v) }
func NewString(name uint16, v string) *Tag { return New(name, codes.TagTypeString, v) }
func NewDouble(name uint16, v float64) *Tag {
	return New(name, codes.TagTypeDouble, v)
}

// NewHash16 builds a hash16 tag from a 32-character lowercase hex digest.
func NewHash16(name uint16, hexDigest string) (*Tag, error) {
	if _, err := hex.DecodeString(hexDigest); err != nil || len(hexDigest) != 32 {
		return nil, fmt.Errorf("tag: hash16 value %q is not 32 hex characters", hexDigest)
	}
	return New(name, codes.TagTypeHash16, hexDigest), nil
}

// NewIPv4 builds an ipv4 tag from a 4-byte address.
func NewIPv4(name uint16, ip net.IP) (*Tag, error) {
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("tag: %v is not a 4-byte IPv4 address", ip)
	}
	return New(name, codes.TagTypeIPv4, v4), nil
}

// Child returns the first child tag with the given name, or nil.
func (t *Tag) Child(name uint16) *Tag {
	for _, c := range t.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (t *Tag) Uint8() (uint8, bool)   { v, ok := t.Value.(uint8); return v, ok }
func (t *Tag) Uint16() (uint16, bool) { v, ok := t.Value.(uint16); return v, ok }
func (t *Tag) Uint32() (uint32, bool) { v, ok := t.Value.(uint32); return v, ok }
func (t *Tag) Uint64() (uint64, bool) { v, ok := t.Value.(uint64); return v, ok }
func (t *Tag) Str() (string, bool)    { v, ok := t.Value.(string); return v, ok }
func (t *Tag) Double() (float64, bool) {
	v, ok := t.Value.(float64)
	return v, ok
}
func (t *Tag) Bytes() ([]byte, bool) { v, ok := t.Value.([]byte); return v, ok }
func (t *Tag) IPv4() (net.IP, bool)  { v, ok := t.Value.(net.IP); return v, ok }

// packedValue returns the wire encoding of t's own value, excluding its
// header and children.
func (t *Tag) packedValue() ([]byte, error) {
	switch t.Type {
	case codes.TagTypeCustom:
		b, ok := t.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("tag: custom value has wrong Go type %T", t.Value)
		}
		return b, nil
	case codes.TagTypeUint8:
		v, ok := t.Value.(uint8)
		if !ok {
			return nil, fmt.Errorf("tag: uint8 value has wrong Go type %T", t.Value)
		}
		return []byte{v}, nil
	case codes.TagTypeUint16:
		v, ok := t.Value.(uint16)
		if !ok {
			return nil, fmt.Errorf("tag: uint16 value has wrong Go type %T", t.Value)
		}
		return binary.BigEndian.AppendUint16(nil, v), nil
	case codes.TagTypeUint32:
		v, ok := t.Value.(uint32)
		if !ok {
			return nil, fmt.Errorf("tag: uint32 value has wrong Go type %T", t.Value)
		}
		return binary.BigEndian.AppendUint32(nil, v), nil
	case codes.TagTypeUint64:
		v, ok := t.Value.(uint64)
		if !ok {
			return nil, fmt.Errorf("tag: uint64 value has wrong Go type %T", t.Value)
		}
		return binary.BigEndian.AppendUint64(nil, v), nil
	case codes.TagTypeString:
		s, ok := t.Value.(string)
		if !ok {
			return nil, fmt.Errorf("tag: string value has wrong Go type %T", t.Value)
		}
		return append([]byte(s), 0x00), nil
	case codes.TagTypeDouble:
		v, ok := t.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("tag: double value has wrong Go type %T", t.Value)
		}
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(v)), nil
	case codes.TagTypeIPv4:
		ip, ok := t.Value.(net.IP)
		if !ok {
			return nil, fmt.Errorf("tag: ipv4 value has wrong Go type %T", t.Value)
		}
		v4 := ip.To4()
		if v4 == nil {
			return nil, fmt.Errorf("tag: ipv4 value %v is not 4 bytes", ip)
		}
		return []byte(v4), nil
	case codes.TagTypeHash16:
		s, ok := t.Value.(string)
		if !ok {
			return nil, fmt.Errorf("tag: hash16 value has wrong Go type %T", t.Value)
		}
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != 16 {
			return nil, fmt.Errorf("tag: hash16 value %q is not 32 hex characters", s)
		}
		return b, nil
	default:
		return nil, &ErrUnknownType{Type: t.Type}
	}
}

// Encode serializes t (and its children) per §4.2: children are rendered
// first so the body length can be computed, then the header, child count
// and children are written, followed by t's own packed value.
func (t *Tag) Encode(utf8Numbers bool) ([]byte, error) {
	own, err := t.packedValue()
	if err != nil {
		return nil, err
	}

	var childData []byte
	for _, c := range t.Children {
		cb, err := c.Encode(utf8Numbers)
		if err != nil {
			return nil, err
		}
		childData = append(childData, cb...)
	}

	hasChildren := len(t.Children) > 0
	nameWithBit := uint32(t.Name) << 1
	if hasChildren {
		nameWithBit |= 1
	}
	bodyLen := uint32(len(childData) + len(own))

	var out []byte
	out = appendCount(out, nameWithBit, utf8Numbers, 2)
	out = append(out, t.Type)
	out = appendCount(out, bodyLen, utf8Numbers, 4)
	if hasChildren {
		out = appendCount(out, uint32(len(t.Children)), utf8Numbers, 2)
		out = append(out, childData...)
	}
	out = append(out, own...)
	return out, nil
}

// appendCount appends n to dst using the varint encoding when utf8Numbers
// is set, otherwise as a fixed-width big-endian integer of fixedWidth
// bytes (2 or 4).
func appendCount(dst []byte, n uint32, utf8Numbers bool, fixedWidth int) []byte {
	if utf8Numbers {
		return varint.Encode(dst, n)
	}
	switch fixedWidth {
	case 2:
		return binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		return binary.BigEndian.AppendUint32(dst, n)
	}
}

// Decode parses one tag (and, recursively, its children) from r.
func Decode(r *bytes.Reader, utf8Numbers bool) (*Tag, error) {
	nameWithBit, err := readCount(r, utf8Numbers, 2)
	if err != nil {
		return nil, fmt.Errorf("tag: read name: %w", err)
	}
	typeByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("tag: read type: %w", err)
	}
	bodyLen, err := readCount(r, utf8Numbers, 4)
	if err != nil {
		return nil, fmt.Errorf("tag: read body length: %w", err)
	}

	hasChildren := nameWithBit&1 == 1
	name := uint16(nameWithBit >> 1)

	var children []*Tag
	childBytesLen := 0
	if hasChildren {
		childCount, err := readCount(r, utf8Numbers, 2)
		if err != nil {
			return nil, fmt.Errorf("tag: read child count: %w", err)
		}
		before := r.Len()
		for i := uint32(0); i < childCount; i++ {
			c, err := Decode(r, utf8Numbers)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		childBytesLen = before - r.Len()
	}

	valueLen := int(bodyLen) - childBytesLen
	if valueLen < 0 {
		return nil, fmt.Errorf("tag: body length %d shorter than decoded children (%d bytes)", bodyLen, childBytesLen)
	}

	value, err := decodeValue(r, typeByte, valueLen)
	if err != nil {
		return nil, err
	}

	return &Tag{Name: name, Type: typeByte, Value: value, Children: children}, nil
}

func decodeValue(r *bytes.Reader, typ uint8, length int) (any, error) {
	switch typ {
	case codes.TagTypeCustom:
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read custom value: %w", err)
		}
		return buf, nil
	case codes.TagTypeUint8:
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("tag: read uint8 value: %w", err)
		}
		return b, nil
	case codes.TagTypeUint16:
		buf := make([]byte, 2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read uint16 value: %w", err)
		}
		return binary.BigEndian.Uint16(buf), nil
	case codes.TagTypeUint32:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read uint32 value: %w", err)
		}
		return binary.BigEndian.Uint32(buf), nil
	case codes.TagTypeUint64:
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read uint64 value: %w", err)
		}
		return binary.BigEndian.Uint64(buf), nil
	case codes.TagTypeString:
		var sb bytes.Buffer
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("tag: read string value: %w", err)
			}
			if b == 0x00 {
				break
			}
			sb.WriteByte(b)
		}
		return sb.String(), nil
	case codes.TagTypeDouble:
		buf := make([]byte, 8)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read double value: %w", err)
		}
		return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
	case codes.TagTypeIPv4:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read ipv4 value: %w", err)
		}
		return net.IP(buf), nil
	case codes.TagTypeHash16:
		buf := make([]byte, 16)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("tag: read hash16 value: %w", err)
		}
		return hex.EncodeToString(buf), nil
	default:
		return nil, &ErrUnknownType{Type: typ}
	}
}

func readCount(r *bytes.Reader, utf8Numbers bool, fixedWidth int) (uint32, error) {
	if utf8Numbers {
		return varint.Decode(r)
	}
	switch fixedWidth {
	case 2:
		buf := make([]byte, 2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, err
		}
		return uint32(binary.BigEndian.Uint16(buf)), nil
	default:
		buf := make([]byte, 4)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(buf), nil
	}
}
