package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vango-dev/peerwire/internal/config"
	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/internal/logging"
	"github.com/vango-dev/peerwire/pkg/message"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "peerwire",
		Short: "Encode and send avalanche peer messages",
		Long: `peerwire builds the binary frames of the avalanche peer-to-peer
protocol from JSON message descriptions.

  • Plain and gzip-compressed encodings
  • Frame inspection
  • Sending over websocket, with optional S3 archiving
  • A debug HTTP server with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to peerwire.json (default: nearest in parent directories)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		versionCmd(),
		opsCmd(),
		encodeCmd(g),
		inspectCmd(),
		sendCmd(g),
		serveCmd(g),
		configCmd(g),
	)
	return rootCmd
}

// env is the state built from the configuration for one command.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	codec    *message.Codec
}

func (g *globals) load(stderr io.Writer) (*env, error) {
	cfg, err := config.Resolve(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	log, err := logging.NewWithWriter(cfg.Log, stderr)
	if err != nil {
		return nil, errors.New("PW003").WithDetail(err.Error())
	}

	registry := prometheus.NewRegistry()
	metrics := message.NewPrometheusMetrics(
		message.WithRegistry(registry),
		message.WithNamespace(cfg.Metrics.Namespace),
		message.WithSubsystem(cfg.Metrics.Subsystem),
	)

	codec := message.NewCodec(
		message.WithMaxSize(cfg.Packer.MaxSize),
		message.WithInitialCap(cfg.Packer.InitialCap),
		message.WithLogger(log.Named("codec")),
		message.WithMetrics(metrics),
	)

	return &env{cfg: cfg, log: log, registry: registry, codec: codec}, nil
}

// readInput reads the named file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.New("PW041").WithDetail(fmt.Sprintf("Could not read %s", inputName(path))).Wrap(err)
	}
	return data, nil
}

func inputName(path string) string {
	if path == "-" {
		return "standard input"
	}
	return path
}
