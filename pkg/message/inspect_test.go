package message

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/peerwire/pkg/compress"
)

func TestInspect(t *testing.T) {
	for _, m := range sampleMessages() {
		t.Run(m.Op().String(), func(t *testing.T) {
			plain, err := Encode(m, Plain)
			require.NoError(t, err)

			info, err := Inspect(plain)
			require.NoError(t, err)
			assert.Equal(t, m.Op(), info.Op)
			assert.Equal(t, len(plain)-4, info.BodyLen)
			assert.Equal(t, m.Op().Compressible(), info.Compressible)
			assert.False(t, info.Compressed)

			if !m.Op().Compressible() {
				return
			}

			compressed, err := Encode(m, Compressed)
			require.NoError(t, err)

			cinfo, err := Inspect(compressed)
			require.NoError(t, err)
			assert.True(t, cinfo.Compressed)
			assert.Equal(t, len(compressed)-6, cinfo.WireFieldLen)
			assert.Equal(t, info.Fields, cinfo.Fields)
		})
	}
}

func TestInspectErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		err   error
	}{
		{"empty", nil, ErrShortFrame},
		{"header_only", []byte{0x00, 0x00, 0x00, 0x00}, ErrShortFrame},
		{"short_body", []byte{0x00, 0x00, 0x00, 0x02, 0x04}, ErrLengthMismatch},
		{"long_body", []byte{0x00, 0x00, 0x00, 0x01, 0x03, 0x07}, ErrLengthMismatch},
		{"unassigned_op", []byte{0x00, 0x00, 0x00, 0x01, 0x05}, ErrUnknownOp},
		{"internal_op", []byte{0x00, 0x00, 0x00, 0x01, byte(OpTimeout)}, ErrUnknownOp},
		{"missing_flag", []byte{0x00, 0x00, 0x00, 0x01, byte(OpPut)}, ErrShortFrame},
		{"bad_flag", []byte{0x00, 0x00, 0x00, 0x02, byte(OpPut), 0x02}, ErrInvalidFlag},
		{"bad_gzip", []byte{0x00, 0x00, 0x00, 0x04, byte(OpPut), 0x01, 0xde, 0xad}, compress.ErrDecode},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Inspect(tc.frame)
			assert.Nil(t, info)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestInspectLimit(t *testing.T) {
	frame, err := Encode(AppGossip{AppBytes: bytes.Repeat([]byte{0x00}, 4096)}, Compressed)
	require.NoError(t, err)

	_, err = InspectLimit(frame, 1024)
	assert.ErrorIs(t, err, compress.ErrTooLarge)

	info, err := InspectLimit(frame, 8192)
	require.NoError(t, err)
	assert.Len(t, info.Fields, 32+4+4096)
}

func TestReadFrame(t *testing.T) {
	ping, err := Encode(Ping{}, Plain)
	require.NoError(t, err)
	pong, err := Encode(Pong{UptimePct: 50}, Plain)
	require.NoError(t, err)

	r := bytes.NewReader(append(append([]byte{}, ping...), pong...))

	got, err := ReadFrame(r, 1024)
	require.NoError(t, err)
	assert.Equal(t, ping, got)

	got, err = ReadFrame(r, 1024)
	require.NoError(t, err)
	assert.Equal(t, pong, got)

	_, err = ReadFrame(r, 1024)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameErrors(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x00, 0x10, 0x00}), 1024)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x05, 0x04}), 1024)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrameNegativeLimit(t *testing.T) {
	big := append([]byte{0x00, 0x00, 0x10, 0x00}, make([]byte, 4096)...)
	frame, err := ReadFrame(bytes.NewReader(big), -1)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Nil(t, frame)

	frame, err = ReadFrame(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x00}), -1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, frame)
}
