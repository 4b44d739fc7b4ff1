// Package compress provides the gzip codec used by compressible peer
// messages.
package compress

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// Level is the fixed compression level (6). It is never varied so the cost
// of compressing a payload stays predictable.
const Level = gzip.DefaultCompression

// Codec errors.
var (
	ErrDecode   = errors.New("compress: invalid gzip data")
	ErrTooLarge = errors.New("compress: decompressed payload too large")
)

// PackGzip compresses b. It succeeds for any input, including empty input.
// The gzip header carries no name, comment or modification time.
func PackGzip(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, Level)
	if err != nil {
		return nil, fmt.Errorf("compress: new writer: %w", err)
	}
	if _, err := zw.Write(b); err != nil {
		return nil, fmt.Errorf("compress: write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: close: %w", err)
	}
	return buf.Bytes(), nil
}

// UnpackGzip decompresses b and returns the original bytes.
func UnpackGzip(b []byte) ([]byte, error) {
	return unpack(b, -1)
}

// UnpackGzipLimit is UnpackGzip with a ceiling on the decompressed size.
func UnpackGzipLimit(b []byte, max int64) ([]byte, error) {
	if max < 0 {
		max = 0
	}
	return unpack(b, max)
}

func unpack(b []byte, max int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer zr.Close()

	var r io.Reader = zr
	if max >= 0 {
		// One extra byte tells an exact fit apart from an overflow.
		r = io.LimitReader(zr, max+1)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if max >= 0 && int64(len(out)) > max {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, max)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
