package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/wire/tag"
)

func TestEmptyNoopPacket(t *testing.T) {
	p := New(codes.OpNoop)

	raw, err := p.marshal()
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, 0x03}, raw[:8])
	assert.Equal(t, []byte{0x01, 0x00, 0x00}, raw[8:])
}

func TestOneUint32TagPacket(t *testing.T) {
	p := New(codes.OpStatReq)
	p.Tags = append(p.Tags, tag.NewUint32(0x0005, 0xDEADBEEF))

	raw, err := p.marshal()
	require.NoError(t, err)

	wantTagBytes := []byte{0x00, 0x0A, 0x04, 0x00, 0x00, 0x00, 0x04, 0xDE, 0xAD, 0xBE, 0xEF}
	wantBody := append([]byte{0x0A, 0x00, 0x01}, wantTagBytes...)

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, 0x0E}, raw[:8])
	assert.Equal(t, wantBody, raw[8:])
}

func TestPacketRoundTrip(t *testing.T) {
	p := New(codes.OpStats)
	p.Tags = append(p.Tags,
		tag.NewUint32(1, 111),
		tag.NewString(2, "hi"),
	)

	raw, err := p.marshal()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, p.Opcode, got.Opcode)
	assert.Equal(t, p.Flags, got.Flags)
	require.Len(t, got.Tags, 2)
	v, ok := got.Tags[0].Uint32()
	require.True(t, ok)
	assert.Equal(t, uint32(111), v)
}

func TestPacketRoundTripWithZlib(t *testing.T) {
	p := New(codes.OpStats)
	p.SetFlag(codes.FlagZlib)
	p.Tags = append(p.Tags, tag.NewString(1, "compress me please"))

	raw, err := p.marshal()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, got.HasFlag(codes.FlagZlib))
	require.Len(t, got.Tags, 1)
	s, ok := got.Tags[0].Str()
	require.True(t, ok)
	assert.Equal(t, "compress me please", s)
}

func TestPacketRoundTripWithUTF8Numbers(t *testing.T) {
	p := New(codes.OpSearchStart)
	p.SetFlag(codes.FlagUTF8Numbers)
	p.Tags = append(p.Tags, tag.NewUint8(1, 9))

	raw, err := p.marshal()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	v, ok := got.Tags[0].Uint8()
	require.True(t, ok)
	assert.Equal(t, uint8(9), v)
}

func TestBodyLengthMatchesWireBytes(t *testing.T) {
	p := New(codes.OpStats)
	p.Tags = append(p.Tags, tag.NewUint64(1, 1<<40))

	raw, err := p.marshal()
	require.NoError(t, err)

	bodyLen := int(raw[4])<<24 | int(raw[5])<<16 | int(raw[6])<<8 | int(raw[7])
	assert.Equal(t, len(raw)-8, bodyLen)
}

func TestAcceptFlagsByteLayout(t *testing.T) {
	p := New(codes.OpNoop)
	p.SetAcceptFlag(codes.FlagZlib)

	raw, err := p.marshal()
	require.NoError(t, err)

	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, byte(0x00), raw[1])
	assert.Equal(t, p.Flags|codes.FlagAccepts, raw[2])
	assert.Equal(t, byte(codes.FlagZlib), raw[3])

	got, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, got.HasFlag(codes.FlagAccepts))
	assert.Equal(t, uint8(codes.FlagZlib), got.AcceptFlags)
}

func TestTrailingBytesIsFramingError(t *testing.T) {
	p := New(codes.OpNoop)
	raw, err := p.marshal()
	require.NoError(t, err)

	// Claim one extra body byte beyond what was actually written.
	raw[7]++
	raw = append(raw, 0x00)

	_, err = Read(bytes.NewReader(raw))
	assert.Error(t, err)
}
