package tag

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllTypes(t *testing.T) {
	hash16, err := NewHash16(9, "d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	ipv4, err := NewIPv4(8, net.IPv4(192, 168, 1, 1))
	require.NoError(t, err)

	samples := []*Tag{
		NewUint8(1, 0xAB),
		NewUint16(2, 0xBEEF),
		NewUint32(3, 0xDEADBEEF),
		NewUint64(4, 0x0123456789ABCDEF),
		NewString(5, "hello world"),
		NewDouble(6, 3.14159),
		hash16,
		ipv4,
		NewCustom(7, []byte{0x01, 0x02, 0x03}),
	}

	for _, utf8 := range []bool{false, true} {
		for _, original := range samples {
			t.Run(typeName(original)+modeName(utf8), func(t *testing.T) {
				encoded, err := original.Encode(utf8)
				require.NoError(t, err)

				decoded, err := Decode(bytes.NewReader(encoded), utf8)
				require.NoError(t, err)

				assert.Equal(t, original.Name, decoded.Name)
				assert.Equal(t, original.Type, decoded.Type)
				assert.Equal(t, original.Value, decoded.Value)
				assert.Len(t, decoded.Children, 0)
			})
		}
	}
}

func typeName(t *Tag) string {
	switch t.Type {
	case 0x02:
		return "uint8"
	case 0x03:
		return "uint16"
	case 0x04:
		return "uint32"
	case 0x05:
		return "uint64"
	case 0x06:
		return "string"
	case 0x07:
		return "double"
	case 0x08:
		return "ipv4"
	case 0x09:
		return "hash16"
	default:
		return "custom"
	}
}

func modeName(utf8 bool) string {
	if utf8 {
		return "/utf8"
	}
	return "/fixed"
}

func TestStringNullTerminator(t *testing.T) {
	tg := NewString(1, "abc")
	packed, err := tg.packedValue()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc\x00"), packed)
	assert.Len(t, packed, len("abc")+1)
}

func TestHash16PackedBytes(t *testing.T) {
	tg, err := NewHash16(1, "d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	packed, err := tg.packedValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xD4, 0x1D, 0x8C, 0xD9, 0x8F, 0x00, 0xB2, 0x04,
		0xE9, 0x80, 0x09, 0x98, 0xEC, 0xF8, 0x42, 0x7E,
	}, packed)
}

func TestHash16RejectsBadInput(t *testing.T) {
	_, err := NewHash16(1, "not-a-hash")
	assert.Error(t, err)
}

// TestSubtagEncoding mirrors the SEARCH_TYPE-with-children scenario: a u8
// tag (method) carrying a string child (query) and a u32 child (min size).
func TestSubtagEncoding(t *testing.T) {
	const searchType = 0x0701
	const searchName = 0x0702
	const searchMinSize = 0x0703

	root := NewUint8(searchType, 1)
	root.Children = []*Tag{
		NewString(searchName, "abc"),
		NewUint32(searchMinSize, 1000),
	}

	encoded, err := root.Encode(false)
	require.NoError(t, err)

	nameWithBit := binary.BigEndian.Uint16(encoded[0:2])
	assert.Equal(t, uint16(0x0E03), nameWithBit)

	bodyLen := binary.BigEndian.Uint32(encoded[3:7])
	assert.Equal(t, uint32(23), bodyLen, "11 bytes per child (22) + 1 byte own u8 value")

	decoded, err := Decode(bytes.NewReader(encoded), false)
	require.NoError(t, err)
	require.Len(t, decoded.Children, 2)
	assert.Equal(t, uint16(searchName), decoded.Children[0].Name)
	name, ok := decoded.Children[0].Str()
	require.True(t, ok)
	assert.Equal(t, "abc", name)
	assert.Equal(t, uint16(searchMinSize), decoded.Children[1].Name)
	minSize, ok := decoded.Children[1].Uint32()
	require.True(t, ok)
	assert.Equal(t, uint32(1000), minSize)
}

func TestBodyLengthMatchesEncodedChildSpan(t *testing.T) {
	root := NewUint32(1, 42)
	root.Children = []*Tag{
		NewString(2, "x"),
		NewUint8(3, 7),
	}

	for _, utf8 := range []bool{false, true} {
		encoded, err := root.Encode(utf8)
		require.NoError(t, err)

		// Decoding consumes exactly the bytes that belong to this tag: no
		// trailing bytes should remain.
		r := bytes.NewReader(append(append([]byte{}, encoded...), 0xFF, 0xFE))
		decoded, err := Decode(r, utf8)
		require.NoError(t, err)
		assert.Equal(t, 2, r.Len(), "decode must not consume bytes beyond this tag")
		assert.Len(t, decoded.Children, 2)
	}
}

func TestUnknownTypeFails(t *testing.T) {
	// Build a minimal fixed-width tag header with an unsupported type byte.
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x02}) // name, no children
	buf.WriteByte(0xFE)           // bogus type
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})

	_, err := Decode(bytes.NewReader(buf.Bytes()), false)
	assert.Error(t, err)
}
