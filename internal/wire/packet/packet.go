// Package packet implements the EC protocol's framed packet codec: an
// 8-byte header carrying flags and body length, followed by a body of
// opcode + tag count + tag stream, optionally zlib-compressed as a whole.
package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/wire/tag"
	"github.com/go-amule/amulec/internal/wire/varint"
)

// Packet is one EC protocol message: a request sent to the daemon, or a
// response read back from it.
type Packet struct {
	Flags       uint8
	AcceptFlags uint8
	Opcode      uint8
	Tags        []*tag.Tag
}

// New builds a packet with the BLANK flag set, as every packet must have at
// minimum, and the given opcode.
func New(opcode uint8) *Packet {
	return &Packet{Flags: codes.FlagBlank, AcceptFlags: codes.FlagBlank, Opcode: opcode}
}

func (p *Packet) SetFlag(flag uint8)       { p.Flags |= flag }
func (p *Packet) HasFlag(flag uint8) bool  { return p.Flags&flag != 0 }
func (p *Packet) SetAcceptFlag(flag uint8) { p.AcceptFlags |= flag }

// Tag returns the first top-level tag with the given name, or nil.
func (p *Packet) Tag(name uint16) *tag.Tag {
	for _, t := range p.Tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Write serializes p and writes it to w.
func (p *Packet) Write(w io.Writer) error {
	raw, err := p.marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("packet: write: %w", err)
	}
	return nil
}

func (p *Packet) marshal() ([]byte, error) {
	utf8Numbers := p.HasFlag(codes.FlagUTF8Numbers)
	useZlib := p.HasFlag(codes.FlagZlib)

	var body []byte
	body = append(body, p.Opcode)
	if utf8Numbers {
		body = varint.Encode(body, uint32(len(p.Tags)))
	} else {
		body = binary.BigEndian.AppendUint16(body, uint16(len(p.Tags)))
	}
	for _, t := range p.Tags {
		tb, err := t.Encode(utf8Numbers)
		if err != nil {
			return nil, err
		}
		body = append(body, tb...)
	}

	if useZlib {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("packet: zlib compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("packet: zlib compress: %w", err)
		}
		body = compressed.Bytes()
	}

	flags := p.Flags
	var head []byte
	if p.AcceptFlags != codes.FlagBlank {
		flags |= codes.FlagAccepts
		head = []byte{0x00, 0x00, flags, p.AcceptFlags}
	} else {
		head = []byte{0x00, 0x00, 0x00, flags}
	}
	head = binary.BigEndian.AppendUint32(head, uint32(len(body)))

	return append(head, body...), nil
}

// maxBodyLength bounds body_length on read, guarding against a malformed or
// hostile peer driving an unbounded allocation.
const maxBodyLength = 64 << 20

// FrameError reports a failure decoding an already-received body: a bad
// zlib stream, an unknown tag type, a malformed varint, or a body that
// doesn't end where its own framing said it would. It is distinct from a
// plain I/O error (the two io.ReadFull calls that pull the header and body
// off the wire) because callers can recover from "the daemon sent garbage"
// very differently than from "the socket died" — see amulec.DecodingError,
// which Client.roundTrip constructs from this.
type FrameError struct {
	Op  string
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("packet: %s: %v", e.Op, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Read parses one packet from r.
func Read(r io.Reader) (*Packet, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("packet: read header: %w", err)
	}

	flagsWord := binary.BigEndian.Uint32(header[0:4])
	bodyLen := binary.BigEndian.Uint32(header[4:8])
	if bodyLen > maxBodyLength {
		return nil, &FrameError{Op: "header", Err: fmt.Errorf("body length %d exceeds maximum %d", bodyLen, maxBodyLength)}
	}

	p := &Packet{Flags: uint8(flagsWord & 0xFF)}
	if p.HasFlag(codes.FlagAccepts) {
		p.AcceptFlags = uint8((flagsWord & 0xFF00) >> 8)
	}

	rawBody := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, rawBody); err != nil {
		return nil, fmt.Errorf("packet: read body: %w", err)
	}

	if p.HasFlag(codes.FlagZlib) {
		zr, err := zlib.NewReader(bytes.NewReader(rawBody))
		if err != nil {
			return nil, &FrameError{Op: "zlib init", Err: err}
		}
		inflated, err := io.ReadAll(zr)
		if err != nil {
			return nil, &FrameError{Op: "zlib inflate", Err: err}
		}
		if err := zr.Close(); err != nil {
			return nil, &FrameError{Op: "zlib inflate", Err: err}
		}
		rawBody = inflated
	}

	body := bytes.NewReader(rawBody)
	opcode, err := body.ReadByte()
	if err != nil {
		return nil, &FrameError{Op: "read opcode", Err: err}
	}
	p.Opcode = opcode

	utf8Numbers := p.HasFlag(codes.FlagUTF8Numbers)
	var tagCount uint32
	if utf8Numbers {
		tagCount, err = varint.Decode(body)
	} else {
		var buf [2]byte
		if _, err = io.ReadFull(body, buf[:]); err == nil {
			tagCount = uint32(binary.BigEndian.Uint16(buf[:]))
		}
	}
	if err != nil {
		return nil, &FrameError{Op: "read tag count", Err: err}
	}

	for i := uint32(0); i < tagCount; i++ {
		t, err := tag.Decode(body, utf8Numbers)
		if err != nil {
			return nil, &FrameError{Op: fmt.Sprintf("decode tag %d", i), Err: err}
		}
		p.Tags = append(p.Tags, t)
	}

	if body.Len() != 0 {
		return nil, &FrameError{Op: "trailing bytes", Err: fmt.Errorf("%d trailing bytes after declared body length", body.Len())}
	}

	return p, nil
}
