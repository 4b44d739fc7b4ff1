package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/pkg/message"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// PutObjectAPI is the subset of the S3 client used by ArchiveSender.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveSender uploads a copy of every frame to S3, then forwards it.
//
// Objects are stored under "<prefix><unixnano>-<op>.bin" with the op name
// and frame size as metadata.
type ArchiveSender struct {
	client PutObjectAPI
	bucket string
	prefix string
	next   Sender
	now    func() time.Time
	log    *zap.Logger
}

// ArchiveOption configures an ArchiveSender.
type ArchiveOption func(*ArchiveSender)

// WithNext sets the sender frames are forwarded to after archiving.
func WithNext(next Sender) ArchiveOption {
	return func(a *ArchiveSender) {
		a.next = next
	}
}

// WithClock sets the time source used for object keys.
func WithClock(now func() time.Time) ArchiveOption {
	return func(a *ArchiveSender) {
		a.now = now
	}
}

// WithArchiveLogger sets the logger.
func WithArchiveLogger(log *zap.Logger) ArchiveOption {
	return func(a *ArchiveSender) {
		if log != nil {
			a.log = log
		}
	}
}

// ArchiveError records a failed frame upload.
type ArchiveError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s to s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// NewArchiveSender creates an archive sender for bucket. Without WithNext
// frames are only archived.
func NewArchiveSender(client PutObjectAPI, bucket, prefix string, opts ...ArchiveOption) *ArchiveSender {
	a := &ArchiveSender{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Send archives frame and forwards it. An archive failure stops the frame
// from being forwarded.
func (a *ArchiveSender) Send(ctx context.Context, frame []byte) error {
	opName := frameOp(frame)
	key := a.Key(frame)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(frame),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"op":          opName,
			"frame-bytes": strconv.Itoa(len(frame)),
		},
	})
	if err != nil {
		return &ArchiveError{Op: opName, Bucket: a.bucket, Key: key, Err: err}
	}
	a.log.Debug("archived frame",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(frame)))

	if a.next == nil {
		return nil
	}
	return a.next.Send(ctx, frame)
}

// Key returns the object key for frame at the current time.
func (a *ArchiveSender) Key(frame []byte) string {
	return fmt.Sprintf("%s%d-%s.bin", a.prefix, a.now().UnixNano(), frameOp(frame))
}

// frameOp names the op byte of frame, or "unknown" for a frame too short to
// carry one.
func frameOp(frame []byte) string {
	if len(frame) <= packer.HeaderLen {
		return "unknown"
	}
	op := message.Op(frame[packer.HeaderLen])
	if !op.Valid() {
		return "unknown"
	}
	return op.String()
}

// S3Config holds the settings for NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for MinIO. Path-style
	// addressing is used when set.
	Endpoint string
}

// NewS3Client creates an S3 client. Credentials are read from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(envCredentials{}),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("transport: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
