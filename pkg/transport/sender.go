// Package transport moves encoded frames to their destination.
//
// A Sender takes complete frames and delivers them somewhere: a websocket
// peer, an S3 archive, or any io.Writer. A Dispatcher sits in front of a
// Sender and turns messages into frames with a message.Codec, tracing each
// send with OpenTelemetry.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/pkg/message"
)

// ErrClosed is returned by senders that have been closed.
var ErrClosed = errors.New("transport: sender closed")

// Sender delivers one complete frame.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, frame []byte) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, frame []byte) error {
	return f(ctx, frame)
}

// WriterSender writes frames back to back to an io.Writer.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSender creates a sender that writes to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send writes frame to the underlying writer.
func (s *WriterSender) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(frame)
	return err
}

const defaultTracerName = "peerwire"

// Dispatcher encodes messages and hands the frames to a Sender.
type Dispatcher struct {
	codec  *message.Codec
	sender Sender
	tracer trace.Tracer
	log    *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherConfig)

type dispatcherConfig struct {
	tracerName string
	provider   trace.TracerProvider
	log        *zap.Logger
}

// WithTracerName sets the tracer name (default: "peerwire").
func WithTracerName(name string) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.tracerName = name
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used
// by default.
func WithTracerProvider(tp trace.TracerProvider) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.provider = tp
	}
}

// WithDispatchLogger sets the logger for send failures.
func WithDispatchLogger(log *zap.Logger) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.log = log
	}
}

// NewDispatcher creates a Dispatcher. A nil codec uses the defaults.
func NewDispatcher(codec *message.Codec, sender Sender, opts ...DispatcherOption) *Dispatcher {
	config := dispatcherConfig{tracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.provider == nil {
		config.provider = otel.GetTracerProvider()
	}
	if config.log == nil {
		config.log = zap.NewNop()
	}
	if codec == nil {
		codec = message.NewCodec()
	}

	return &Dispatcher{
		codec:  codec,
		sender: sender,
		tracer: config.provider.Tracer(config.tracerName),
		log:    config.log,
	}
}

// Send encodes m in the given mode and sends the frame.
//
// Each call runs inside a span named "peerwire.send <op>" carrying the op,
// mode and frame size.
func (d *Dispatcher) Send(ctx context.Context, m message.Message, mode message.Mode) error {
	if message.IsNil(m) {
		return message.ErrNilMessage
	}
	op := m.Op()

	ctx, span := d.tracer.Start(ctx, fmt.Sprintf("peerwire.send %s", op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peerwire.op", op.String()),
			attribute.String("peerwire.mode", mode.String()),
		),
	)
	defer span.End()

	frame, err := d.codec.Encode(m, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("peerwire.frame_bytes", len(frame)))

	if err := d.sender.Send(ctx, frame); err != nil {
		d.log.Warn("send failed",
			zap.Stringer("op", op),
			zap.Int("bytes", len(frame)),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send %s: %w", op, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
