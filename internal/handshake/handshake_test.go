package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/wire/packet"
	"github.com/go-amule/amulec/internal/wire/tag"
)

func TestSaltedAuthVector(t *testing.T) {
	const salt = 0x0123456789ABCDEF
	const password = "secret"

	s := SaltHash(salt)
	p := PasswordHash(password)
	final := FinalHash(password, salt)

	assert.Len(t, s, 32)
	assert.Len(t, p, 32)
	assert.Len(t, final, 32)

	// Determinism: the same inputs always produce the same digest.
	assert.Equal(t, final, FinalHash(password, salt))
	assert.Equal(t, s, SaltHash(salt))
	assert.Equal(t, p, PasswordHash(password))
}

func TestSaltHashFormatsWithoutZeroPadding(t *testing.T) {
	// A salt whose hex form would differ under zero-padding (e.g. leading
	// nibble zero) must still format as bare uppercase hex, matching "%lX":
	// 0x0F hashes as the one-character string "F".
	a := SaltHash(0x0F)
	b := PasswordHash("F")
	assert.Equal(t, a, b)
}

func TestRunLegacyVersionSendsPlaintextHash(t *testing.T) {
	var sent []*packet.Packet
	write := func(p *packet.Packet) error {
		sent = append(sent, p)
		return nil
	}
	read := func() (*packet.Packet, error) {
		resp := packet.New(codes.OpAuthOK)
		resp.Tags = append(resp.Tags, tag.NewString(codes.TagServerVersion, "0.1.2"))
		return resp, nil
	}

	result, err := Run(write, read, "secret", "amulec", "0.0.1")
	if assert.NoError(t, err) {
		assert.Equal(t, codes.V0200, result.Table.Version)
		assert.Equal(t, "0.1.2", result.ServerVersion)
	}

	if assert.Len(t, sent, 1) {
		hashTag := sent[0].Tag(codes.TagPasswdHash)
		if assert.NotNil(t, hashTag) {
			h, ok := hashTag.Str()
			assert.True(t, ok)
			assert.Equal(t, PasswordHash("secret"), h)
		}
	}
}

func TestRunSaltedVersionSucceeds(t *testing.T) {
	const salt = uint64(0xAABBCCDD)
	var pendingVersion codes.Version
	var passwdReq *packet.Packet

	// Reject every version below 0x0203 outright, so Run falls through to
	// the salted round; respond to the salted round's two reads in turn.
	write := func(p *packet.Packet) error {
		switch p.Opcode {
		case codes.OpAuthReq:
			if pv := p.Tag(codes.TagProtocolVersion); pv != nil {
				v, _ := pv.Uint16()
				pendingVersion = codes.Version(v)
			}
		case codes.OpAuthPasswd:
			passwdReq = p
		}
		return nil
	}
	read := func() (*packet.Packet, error) {
		if pendingVersion < codes.V0203 {
			return packet.New(codes.OpAuthFail), nil
		}
		if passwdReq == nil {
			resp := packet.New(codes.OpAuthSalt)
			resp.Tags = append(resp.Tags, tag.NewUint64(codes.TagPasswdSalt, salt))
			return resp, nil
		}
		return packet.New(codes.OpAuthOK), nil
	}

	result, err := Run(write, read, "secret", "amulec", "0.0.1")
	if assert.NoError(t, err) {
		assert.Equal(t, codes.V0203, result.Table.Version)
	}

	if assert.NotNil(t, passwdReq) {
		hashTag := passwdReq.Tag(codes.TagPasswdHash)
		if assert.NotNil(t, hashTag) {
			h, _ := hashTag.Str()
			assert.Equal(t, FinalHash("secret", salt), h)
		}
	}
}

func TestRunFailsWhenEveryVersionRejected(t *testing.T) {
	write := func(p *packet.Packet) error { return nil }
	read := func() (*packet.Packet, error) { return packet.New(codes.OpAuthFail), nil }

	_, err := Run(write, read, "secret", "amulec", "0.0.1")
	assert.ErrorIs(t, err, ErrAuthFailed)
}
