// Package handshake drives the EC protocol's multi-version authentication
// state machine: it tries each known protocol version in order, using a
// plaintext password hash for versions below 0x0203 and a two-round salted
// challenge for 0x0203 and above.
//
// The cryptographic steps are split into pure functions (PasswordHash,
// SaltHash, FinalHash) so the round-trip in a fixed test vector is
// verifiable without a socket, independent of the packet framing around it.
package handshake

import (
	"crypto/md5" //nolint:gosec // required for EC protocol wire compatibility
	"fmt"

	"github.com/go-amule/amulec/internal/codes"
	"github.com/go-amule/amulec/internal/wire/packet"
	"github.com/go-amule/amulec/internal/wire/tag"
)

// Error is a sentinel error type for this package, following the pattern
// of simple immutable string errors.
type Error string

func (e Error) Error() string { return string(e) }

// ErrAuthFailed is returned when every known protocol version was
// rejected by the daemon.
const ErrAuthFailed Error = "handshake: authentication failed for all known protocol versions"

// Result records what a successful handshake negotiated.
type Result struct {
	Table         *codes.Table
	ServerVersion string
}

// PasswordHash is MD5 over the password's raw bytes, lowercase hex.
func PasswordHash(password string) string {
	sum := md5.Sum([]byte(password))
	return fmt.Sprintf("%x", sum)
}

// SaltHash formats salt as uppercase hex without a leading "0x" or zero
// padding, then returns the lowercase hex MD5 digest of that ASCII string.
func SaltHash(salt uint64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%X", salt)))
	return fmt.Sprintf("%x", sum)
}

// FinalHash combines a password hash and a salt hash the way the daemon
// expects for the salted auth round: MD5 of the two lowercase hex digests
// concatenated.
func FinalHash(password string, salt uint64) string {
	sum := md5.Sum([]byte(PasswordHash(password) + SaltHash(salt)))
	return fmt.Sprintf("%x", sum)
}

// Run attempts authentication for each version in codes.Known, in order,
// using write to send a packet and read to block for the next one. It
// returns the first successful Result, or ErrAuthFailed if every version
// was rejected.
func Run(write func(*packet.Packet) error, read func() (*packet.Packet, error), password, clientName, clientVersion string) (*Result, error) {
	for _, v := range codes.Known {
		table, err := codes.NewTable(v)
		if err != nil {
			return nil, err
		}

		req := packet.New(codes.OpAuthReq)
		req.Tags = []*tag.Tag{
			tag.NewString(codes.TagClientName, clientName),
			tag.NewString(codes.TagClientVersion, clientVersion),
			tag.NewUint16(codes.TagProtocolVersion, uint16(v)),
		}

		if v < codes.V0203 {
			ht, err := tag.NewHash16(codes.TagPasswdHash, PasswordHash(password))
			if err != nil {
				return nil, err
			}
			req.Tags = append(req.Tags, ht)
			if err := write(req); err != nil {
				return nil, err
			}
		} else {
			if err := write(req); err != nil {
				return nil, err
			}
			resp, err := read()
			if err != nil {
				return nil, err
			}
			if resp.Opcode != codes.OpAuthSalt {
				continue
			}
			saltTag := resp.Tag(codes.TagPasswdSalt)
			if saltTag == nil {
				continue
			}
			salt, ok := saltTag.Uint64()
			if !ok {
				continue
			}

			ht, err := tag.NewHash16(codes.TagPasswdHash, FinalHash(password, salt))
			if err != nil {
				return nil, err
			}
			passReq := packet.New(codes.OpAuthPasswd)
			passReq.Tags = []*tag.Tag{ht}
			if err := write(passReq); err != nil {
				return nil, err
			}
		}

		resp, err := read()
		if err != nil {
			return nil, err
		}
		if resp.Opcode != codes.OpAuthOK {
			continue
		}

		serverVersion := "unknown"
		if sv := resp.Tag(codes.TagServerVersion); sv != nil {
			if s, ok := sv.Str(); ok {
				serverVersion = s
			}
		}
		return &Result{Table: table, ServerVersion: serverVersion}, nil
	}

	return nil, ErrAuthFailed
}
