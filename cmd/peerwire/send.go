package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/internal/msgjson"
	"github.com/vango-dev/peerwire/pkg/transport"
)

type sendOptions struct {
	url        string
	file       string
	compressed bool
	timeout    time.Duration
	bucket     string
	prefix     string
	region     string
	endpoint   string
}

func sendCmd(g *globals) *cobra.Command {
	o := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Encode a message and send it to a peer",
		Long: `Send encodes a JSON message description and writes the frame to a
peer over websocket. With an archive bucket each frame is first uploaded
to S3; a failed upload stops the send.

Credentials for S3 are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
and AWS_SESSION_TOKEN.

Examples:
  peerwire send --url ws://127.0.0.1:9651/ext/peer -f ping.json
  peerwire send -f put.json --compressed --archive-bucket my-frames`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.log.Sync()
			o.applyConfig(e)

			if o.url == "" && o.bucket == "" {
				return errors.New("PW040").
					WithDetail("No destination: neither --url nor --archive-bucket is set").
					WithSuggestion("Pass --url ws://host:port/path or set transport.url in peerwire.json")
			}

			data, err := readInput(cmd, o.file)
			if err != nil {
				return err
			}
			m, err := msgjson.Parse(data)
			if err != nil {
				return errors.Classify(err, "PW016")
			}

			ctx := cmd.Context()

			var sender transport.Sender
			if o.url != "" {
				ws, err := transport.Dial(ctx, o.url, nil, o.timeout)
				if err != nil {
					return errors.New("PW030").WithDetail("Could not connect to " + o.url).Wrap(err)
				}
				defer ws.Close()
				sender = ws
			}
			if o.bucket != "" {
				client := transport.NewS3Client(transport.S3Config{Region: o.region, Endpoint: o.endpoint})
				opts := []transport.ArchiveOption{transport.WithArchiveLogger(e.log.Named("archive"))}
				if sender != nil {
					opts = append(opts, transport.WithNext(sender))
				}
				sender = transport.NewArchiveSender(client, o.bucket, o.prefix, opts...)
			}

			d := transport.NewDispatcher(e.codec, sender, transport.WithDispatchLogger(e.log.Named("send")))
			if err := d.Send(ctx, m, modeFlag(o.compressed)); err != nil {
				return errors.Classify(err, "PW031")
			}

			e.log.Info("sent", zap.Stringer("op", m.Op()), zap.String("url", o.url), zap.String("bucket", o.bucket))
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", m.Op())
			return nil
		},
	}

	cmd.Flags().StringVar(&o.url, "url", "", "Peer websocket URL (default: transport.url)")
	cmd.Flags().StringVarP(&o.file, "file", "f", "-", "JSON description file, - for stdin")
	cmd.Flags().BoolVar(&o.compressed, "compressed", false, "Gzip the fields (compressible ops only)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Write timeout (default: transport.writeTimeout)")
	cmd.Flags().StringVar(&o.bucket, "archive-bucket", "", "Archive frames to this S3 bucket (default: archive.bucket)")
	cmd.Flags().StringVar(&o.prefix, "archive-prefix", "", "S3 key prefix (default: archive.prefix)")
	cmd.Flags().StringVar(&o.region, "region", "", "S3 region (default: archive.region)")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "", "S3 endpoint override (default: archive.endpoint)")

	return cmd
}

// applyConfig fills options left unset on the command line.
func (o *sendOptions) applyConfig(e *env) {
	if o.url == "" {
		o.url = e.cfg.Transport.URL
	}
	if o.timeout <= 0 {
		o.timeout = e.cfg.WriteTimeout()
	}
	if o.bucket == "" {
		o.bucket = e.cfg.Archive.Bucket
	}
	if o.prefix == "" {
		o.prefix = e.cfg.Archive.Prefix
	}
	if o.region == "" {
		o.region = e.cfg.Archive.Region
	}
	if o.endpoint == "" {
		o.endpoint = e.cfg.Archive.Endpoint
	}
}
