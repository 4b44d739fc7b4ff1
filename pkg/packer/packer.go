// Package packer implements the bounds-checked binary buffer builder used to
// lay out peer message frames.
//
// All fixed-width integers are written big-endian. Errors are sticky: the
// first failed write is remembered, every later write becomes a no-op, and
// TakeBytes reports the error instead of returning a partial buffer.
package packer

import (
	"errors"
	"math"
	"net/netip"
)

const (
	// HeaderLen is the size of the reserved frame-length header.
	HeaderLen = 4

	// IPLen is the size of a packed IP endpoint (16-byte address + port).
	IPLen = 16 + 2

	// DefaultMaxSize mirrors math.MaxInt32, the ceiling used by the network.
	DefaultMaxSize = math.MaxInt32

	// DefaultInitialCap is the starting buffer capacity.
	DefaultInitialCap = 128

	// MaxInitialCap bounds the preallocated capacity. Larger buffers grow
	// on demand.
	MaxInitialCap = 1 << 20
)

// Packer errors.
var (
	ErrCapacityExceeded = errors.New("packer: capacity exceeded")
	ErrStringTooLong    = errors.New("packer: string longer than 65535 bytes")
	ErrConsumed         = errors.New("packer: already consumed")
	ErrInvalidIP        = errors.New("packer: invalid ip address")
)

// Packer appends primitives to a growable buffer that may never exceed
// maxSize bytes. A Packer is single-use and not safe for concurrent writes.
type Packer struct {
	buf      []byte
	maxSize  int
	header   bool
	consumed bool
	err      error
}

// New creates a packer without a length header.
func New(maxSize, initialCap int) *Packer {
	if initialCap < 0 {
		initialCap = 0
	}
	if initialCap > maxSize && maxSize >= 0 {
		initialCap = maxSize
	}
	if initialCap > MaxInitialCap {
		initialCap = MaxInitialCap
	}
	return &Packer{
		buf:     make([]byte, 0, initialCap),
		maxSize: maxSize,
	}
}

// NewWithHeader creates a packer whose first four bytes are reserved for
// the frame-length header, back-filled by TakeBytes.
func NewWithHeader(maxSize, initialCap int) *Packer {
	if initialCap < HeaderLen {
		initialCap = HeaderLen
	}
	p := New(maxSize, initialCap)
	p.header = true
	if p.reserve(HeaderLen) {
		p.buf = append(p.buf, 0, 0, 0, 0)
	}
	return p
}

// Default returns an unheadered packer with the network defaults.
func Default() *Packer {
	return New(DefaultMaxSize, DefaultInitialCap)
}

// DefaultWithHeader returns a headered packer with the network defaults.
func DefaultWithHeader() *Packer {
	return NewWithHeader(DefaultMaxSize, DefaultInitialCap)
}

// Err returns the first error encountered, if any.
func (p *Packer) Err() error {
	return p.err
}

// Errored reports whether a write has failed.
func (p *Packer) Errored() bool {
	return p.err != nil
}

// BytesLen returns the number of content bytes written so far, excluding
// the reserved header.
func (p *Packer) BytesLen() int {
	n := len(p.buf)
	if p.header {
		n -= HeaderLen
	}
	if n < 0 {
		return 0
	}
	return n
}

// MaxSize returns the capacity ceiling.
func (p *Packer) MaxSize() int {
	return p.maxSize
}

// reserve checks that n more bytes fit. It records the error and returns
// false if they do not or if the packer is already unusable.
func (p *Packer) reserve(n int) bool {
	if p.err != nil {
		return false
	}
	if p.consumed {
		p.err = ErrConsumed
		return false
	}
	if n > p.maxSize-len(p.buf) {
		p.err = ErrCapacityExceeded
		return false
	}
	return true
}

// PackBool appends a boolean as a single byte (0x00 or 0x01).
func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(0x01)
	} else {
		p.PackByte(0x00)
	}
}

// PackByte appends a single byte.
func (p *Packer) PackByte(b byte) {
	if !p.reserve(1) {
		return
	}
	p.buf = append(p.buf, b)
}

// PackU16 appends a uint16 in big-endian byte order.
func (p *Packer) PackU16(v uint16) {
	if !p.reserve(2) {
		return
	}
	p.buf = append(p.buf, byte(v>>8), byte(v))
}

// PackU32 appends a uint32 in big-endian byte order.
func (p *Packer) PackU32(v uint32) {
	if !p.reserve(4) {
		return
	}
	p.buf = append(p.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PackU64 appends a uint64 in big-endian byte order.
func (p *Packer) PackU64(v uint64) {
	if !p.reserve(8) {
		return
	}
	p.buf = append(p.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PackBytes appends raw bytes with no length prefix. Used for fixed-size
// fields whose length is implied by the grammar.
func (p *Packer) PackBytes(b []byte) {
	if !p.reserve(len(b)) {
		return
	}
	p.buf = append(p.buf, b...)
}

// PackBytesWithHeader appends a u32 length prefix followed by b.
func (p *Packer) PackBytesWithHeader(b []byte) {
	if uint64(len(b)) > math.MaxUint32 {
		if p.err == nil {
			p.err = ErrCapacityExceeded
		}
		return
	}
	if !p.reserve(4 + len(b)) {
		return
	}
	p.PackU32(uint32(len(b)))
	p.buf = append(p.buf, b...)
}

// PackStr appends a u16 length prefix followed by the UTF-8 bytes of s.
func (p *Packer) PackStr(s string) {
	if len(s) > math.MaxUint16 {
		if p.err == nil {
			p.err = ErrStringTooLong
		}
		return
	}
	if !p.reserve(2 + len(s)) {
		return
	}
	p.PackU16(uint16(len(s)))
	p.buf = append(p.buf, s...)
}

// PackIP appends a 16-byte address followed by a u16 port.
//
// IPv4 addresses (and IPv4-mapped IPv6 addresses) are written as twelve
// zero bytes followed by the four address bytes.
func (p *Packer) PackIP(addr netip.Addr, port uint16) {
	if !addr.IsValid() {
		if p.err == nil {
			p.err = ErrInvalidIP
		}
		return
	}
	if !p.reserve(IPLen) {
		return
	}

	addr = addr.Unmap()
	var ip [16]byte
	if addr.Is4() {
		v4 := addr.As4()
		copy(ip[12:], v4[:])
	} else {
		ip = addr.As16()
	}
	p.buf = append(p.buf, ip[:]...)
	p.PackU16(port)
}

// TakeBytes finalizes and returns the buffer. If a header was reserved it
// is set to the number of bytes that follow it. The packer is consumed:
// any later call fails with ErrConsumed.
func (p *Packer) TakeBytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.consumed {
		p.err = ErrConsumed
		return nil, p.err
	}
	p.consumed = true

	buf := p.buf
	p.buf = nil
	if p.header {
		n := uint32(len(buf) - HeaderLen)
		buf[0] = byte(n >> 24)
		buf[1] = byte(n >> 16)
		buf[2] = byte(n >> 8)
		buf[3] = byte(n)
	}
	return buf, nil
}
