// Package ids defines the fixed-size identifiers carried by peer messages.
//
// An ID is 32 raw bytes on the wire with no length prefix. Its text form is
// cb58: base58 over the bytes followed by the last four bytes of their
// SHA-256 digest.
package ids

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Len is the size of an ID in bytes.
const Len = 32

const checksumLen = 4

// ID errors.
var (
	ErrBadLength   = errors.New("ids: wrong identifier length")
	ErrBadChecksum = errors.New("ids: cb58 checksum mismatch")
)

// ID is a 32-byte chain, container, subnet or summary identifier.
type ID [Len]byte

// Empty is the all-zero ID.
var Empty = ID{}

// FromBytes copies b into an ID. b must be exactly Len bytes.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Len {
		return id, fmt.Errorf("%w: got %d, want %d", ErrBadLength, len(b), Len)
	}
	copy(id[:], b)
	return id, nil
}

// FromString parses either the cb58 form or a 0x-prefixed hex form.
func FromString(s string) (ID, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return Empty, fmt.Errorf("ids: invalid hex: %w", err)
		}
		return FromBytes(b)
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return Empty, fmt.Errorf("ids: invalid cb58: %w", err)
	}
	if len(raw) < checksumLen {
		return Empty, fmt.Errorf("%w: got %d", ErrBadLength, len(raw))
	}
	payload, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(sum, checksum(payload)) {
		return Empty, ErrBadChecksum
	}
	return FromBytes(payload)
}

// Bytes returns a copy of the ID bytes.
func (id ID) Bytes() []byte {
	b := make([]byte, Len)
	copy(b, id[:])
	return b
}

// IsEmpty reports whether every byte is zero.
func (id ID) IsEmpty() bool {
	return id == Empty
}

// String returns the cb58 form.
func (id ID) String() string {
	b := make([]byte, 0, Len+checksumLen)
	b = append(b, id[:]...)
	b = append(b, checksum(id[:])...)
	return base58.Encode(b)
}

// Hex returns the 0x-prefixed hex form.
func (id ID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func checksum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[len(sum)-checksumLen:]
}
