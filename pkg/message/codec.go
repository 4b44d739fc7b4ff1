package message

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/pkg/compress"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// Message is an outbound wire message. The set of implementations is closed:
// only the variant types in this package satisfy it.
type Message interface {
	fmt.Stringer

	// Op returns the message type.
	Op() Op

	// packFields writes the op-specific fields, without op or flag.
	packFields(p *packer.Packer)
}

// Mode selects the encoding of a frame.
type Mode uint8

const (
	Plain      Mode = iota // Literal fields
	Compressed             // Gzip-compressed fields, compressible ops only
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case Compressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// Codec errors.
var (
	ErrNotCompressible = errors.New("message: op is not compressible")
	ErrInvalidMode     = errors.New("message: invalid encoding mode")
	ErrNilMessage      = errors.New("message: nil message")
)

// Codec produces frames. A Codec is safe for concurrent use; every call
// allocates its own packers.
type Codec struct {
	maxSize    int
	initialCap int
	log        *zap.Logger
	metrics    Metrics
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxSize sets the frame size ceiling, header included.
func WithMaxSize(n int) Option {
	return func(c *Codec) {
		c.maxSize = n
	}
}

// WithInitialCap sets the starting capacity of each packer.
func WithInitialCap(n int) Option {
	return func(c *Codec) {
		c.initialCap = n
	}
}

// WithLogger sets the logger used for compression accounting.
func WithLogger(log *zap.Logger) Option {
	return func(c *Codec) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Codec) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewCodec creates a codec with the network defaults, overridden by opts.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		maxSize:    packer.DefaultMaxSize,
		initialCap: packer.DefaultInitialCap,
		log:        zap.NewNop(),
		metrics:    nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// IsNil reports whether m is nil or a nil pointer to a variant.
func IsNil(m Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Encode encodes m with the default codec.
func Encode(m Message, mode Mode) ([]byte, error) {
	return defaultCodec.Encode(m, mode)
}

// Encode returns the framed encoding of m in the requested mode. On error
// no bytes are returned.
func (c *Codec) Encode(m Message, mode Mode) ([]byte, error) {
	if IsNil(m) {
		return nil, ErrNilMessage
	}
	op := m.Op()

	var (
		frame []byte
		err   error
	)
	switch mode {
	case Plain:
		frame, err = c.encodePlain(m)
	case Compressed:
		frame, err = c.encodeCompressed(m)
	default:
		err = fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if err != nil {
		c.metrics.EncodeFailed(op, mode)
		return nil, fmt.Errorf("encode %s (%s): %w", op, mode, err)
	}

	c.metrics.Encoded(op, mode, len(frame))
	return frame, nil
}

func (c *Codec) encodePlain(m Message) ([]byte, error) {
	op := m.Op()

	p := packer.NewWithHeader(c.maxSize, c.initialCap)
	p.PackByte(byte(op))
	if op.Compressible() {
		p.PackBool(false)
	}
	m.packFields(p)
	return p.TakeBytes()
}

func (c *Codec) encodeCompressed(m Message) ([]byte, error) {
	op := m.Op()
	if !op.Compressible() {
		return nil, ErrNotCompressible
	}

	// first build the uncompressed fields
	inner := packer.New(c.maxSize, c.initialCap)
	m.packFields(inner)
	uncompressed := inner.BytesLen()
	raw, err := inner.TakeBytes()
	if err != nil {
		return nil, err
	}

	compressed, err := compress.PackGzip(raw)
	if err != nil {
		return nil, err
	}

	p := packer.NewWithHeader(c.maxSize, packer.HeaderLen+2+len(compressed))
	p.PackByte(byte(op))
	p.PackBool(true)
	p.PackBytes(compressed)
	frame, err := p.TakeBytes()
	if err != nil {
		return nil, err
	}

	c.logCompression(op, uncompressed, len(compressed))
	c.metrics.Compressed(op, uncompressed, len(compressed))
	return frame, nil
}

func (c *Codec) logCompression(op Op, uncompressed, compressed int) {
	fields := []zap.Field{
		zap.Stringer("op", op),
		zap.Int("uncompressed", uncompressed),
		zap.Int("compressed", compressed),
	}
	if uncompressed > compressed {
		c.log.Debug(fmt.Sprintf("%s compression saved %d bytes", op, uncompressed-compressed), fields...)
	} else {
		c.log.Debug(fmt.Sprintf("%s compression added %d byte(s)", op, compressed-uncompressed), fields...)
	}
}
