package errors

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/vango-dev/peerwire/internal/msgjson"
	"github.com/vango-dev/peerwire/pkg/compress"
	"github.com/vango-dev/peerwire/pkg/message"
	"github.com/vango-dev/peerwire/pkg/packer"
	"github.com/vango-dev/peerwire/pkg/transport"
)

// classes maps library sentinels to codes, checked in order.
var classes = []struct {
	target error
	code   string
}{
	{message.ErrUnknownOp, "PW010"},
	{msgjson.ErrNotWireOp, "PW017"},
	{msgjson.ErrMissingOp, "PW016"},
	{msgjson.ErrInvalidField, "PW016"},
	{message.ErrNotCompressible, "PW011"},
	{message.ErrInvalidMode, "PW040"},
	{packer.ErrCapacityExceeded, "PW012"},
	{packer.ErrStringTooLong, "PW013"},
	{packer.ErrInvalidIP, "PW014"},
	{compress.ErrTooLarge, "PW021"},
	{message.ErrFrameTooLarge, "PW021"},
	{compress.ErrDecode, "PW020"},
	{message.ErrShortFrame, "PW020"},
	{message.ErrLengthMismatch, "PW020"},
	{message.ErrInvalidFlag, "PW020"},
	{io.ErrUnexpectedEOF, "PW020"},
	{transport.ErrClosed, "PW031"},
	{context.DeadlineExceeded, "PW031"},
}

// Classify converts a library error into a coded error. Errors that are
// already coded are returned unchanged; anything unrecognized gets
// fallback.
func Classify(err error, fallback string) *PeerwireError {
	if err == nil {
		return nil
	}
	var pe *PeerwireError
	if stderrors.As(err, &pe) {
		return pe
	}
	var ae *transport.ArchiveError
	if stderrors.As(err, &ae) {
		return New("PW032").WithDetail("Could not upload to s3://" + ae.Bucket + "/" + ae.Key).Wrap(err)
	}
	for _, c := range classes {
		if stderrors.Is(err, c.target) {
			return New(c.code).Wrap(err)
		}
	}
	return New(fallback).Wrap(err)
}
