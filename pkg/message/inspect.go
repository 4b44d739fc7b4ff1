package message

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vango-dev/peerwire/pkg/compress"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// DefaultInspectLimit bounds the decompressed field size accepted by Inspect.
const DefaultInspectLimit = 16 << 20

// Frame errors.
var (
	ErrShortFrame     = errors.New("message: frame too short")
	ErrLengthMismatch = errors.New("message: length header does not match body")
	ErrInvalidFlag    = errors.New("message: invalid compressible flag")
	ErrFrameTooLarge  = errors.New("message: frame too large")
)

// FrameInfo describes a frame without parsing its fields.
type FrameInfo struct {
	Op Op

	// BodyLen is the value of the length header.
	BodyLen int

	// Compressible reports whether the op carries a flag byte.
	Compressible bool

	// Compressed is the value of the flag byte.
	Compressed bool

	// WireFieldLen is the size of the fields as sent, after the flag.
	WireFieldLen int

	// Fields are the plain field bytes, gunzipped if the frame was
	// compressed.
	Fields []byte
}

// Inspect validates the framing of frame and returns its plain fields.
func Inspect(frame []byte) (*FrameInfo, error) {
	return InspectLimit(frame, DefaultInspectLimit)
}

// InspectLimit is Inspect with an explicit decompression limit.
func InspectLimit(frame []byte, limit int64) (*FrameInfo, error) {
	if len(frame) < packer.HeaderLen+1 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(frame))
	}

	bodyLen := binary.BigEndian.Uint32(frame)
	body := frame[packer.HeaderLen:]
	if uint64(bodyLen) != uint64(len(body)) {
		return nil, fmt.Errorf("%w: header %d, body %d", ErrLengthMismatch, bodyLen, len(body))
	}

	op := Op(body[0])
	if !op.Valid() || op.IsInternal() {
		return nil, fmt.Errorf("%w: code %d", ErrUnknownOp, uint8(op))
	}

	info := &FrameInfo{
		Op:           op,
		BodyLen:      len(body),
		Compressible: op.Compressible(),
	}
	rest := body[1:]

	if !info.Compressible {
		info.WireFieldLen = len(rest)
		info.Fields = rest
		return info, nil
	}

	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: %s frame has no flag byte", ErrShortFrame, op)
	}
	switch rest[0] {
	case 0:
	case 1:
		info.Compressed = true
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidFlag, rest[0])
	}
	rest = rest[1:]
	info.WireFieldLen = len(rest)

	if !info.Compressed {
		info.Fields = rest
		return info, nil
	}

	fields, err := compress.UnpackGzipLimit(rest, limit)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", op, err)
	}
	info.Fields = fields
	return info, nil
}

// ReadFrame reads one length-prefixed frame from r. Frames whose body is
// larger than maxBody fail with ErrFrameTooLarge before the body is read.
// A negative maxBody is treated as 0.
func ReadFrame(r io.Reader, maxBody int) ([]byte, error) {
	if maxBody < 0 {
		maxBody = 0
	}
	header := make([]byte, packer.HeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if uint64(length) > uint64(maxBody) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	frame := make([]byte, packer.HeaderLen+int(length))
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[packer.HeaderLen:]); err != nil {
		return nil, err
	}
	return frame, nil
}
