package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/pkg/packer"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "peerwire.json"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultDebugAddress is the default debug server address.
	DefaultDebugAddress = "localhost:9650"

	// DefaultWriteTimeout is the default websocket write timeout.
	DefaultWriteTimeout = "10s"

	// DefaultArchivePrefix is the default S3 key prefix.
	DefaultArchivePrefix = "frames/"

	// minMaxSize is the smallest useful frame limit: header plus op.
	minMaxSize = packer.HeaderLen + 1
)

var logLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// Config represents the complete peerwire.json configuration.
type Config struct {
	// Packer contains the frame buffer limits.
	Packer PackerConfig `json:"packer"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Metrics contains Prometheus naming.
	Metrics MetricsConfig `json:"metrics"`

	// Debug contains the debug server configuration.
	Debug DebugConfig `json:"debug"`

	// Transport contains the websocket peer configuration.
	Transport TransportConfig `json:"transport"`

	// Archive contains the S3 frame archive configuration.
	Archive ArchiveConfig `json:"archive"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PackerConfig contains the packer limits.
type PackerConfig struct {
	// MaxSize is the frame ceiling in bytes, length header included.
	MaxSize int `json:"maxSize"`

	// InitialCap is the starting buffer capacity.
	InitialCap int `json:"initialCap"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error, dpanic, panic, fatal.
	Level string `json:"level"`

	// Development selects the human-readable development encoder.
	Development bool `json:"development,omitempty"`
}

// MetricsConfig contains Prometheus naming.
type MetricsConfig struct {
	Namespace string `json:"namespace"`
	Subsystem string `json:"subsystem"`
}

// DebugConfig contains the debug server settings.
type DebugConfig struct {
	// Address is the listen address of the debug server.
	Address string `json:"address"`
}

// TransportConfig contains the websocket peer settings.
type TransportConfig struct {
	// URL is the websocket URL of the peer (ws:// or wss://).
	URL string `json:"url,omitempty"`

	// WriteTimeout bounds a single frame write (e.g., "10s").
	WriteTimeout string `json:"writeTimeout"`
}

// ArchiveConfig contains the S3 archive settings. Archiving is disabled
// while Bucket is empty.
type ArchiveConfig struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix"`
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Packer: PackerConfig{
			MaxSize:    packer.DefaultMaxSize,
			InitialCap: packer.DefaultInitialCap,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Metrics: MetricsConfig{
			Namespace: "peerwire",
			Subsystem: "codec",
		},
		Debug: DebugConfig{
			Address: DefaultDebugAddress,
		},
		Transport: TransportConfig{
			WriteTimeout: DefaultWriteTimeout,
		},
		Archive: ArchiveConfig{
			Prefix: DefaultArchivePrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for peerwire.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates configuration from the specified file path.
// Fields missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("PW001").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("PW002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("PW002").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("PW002").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("PW002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for fields an explicit file left
// empty.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	c.Log.Level = strings.ToLower(c.Log.Level)

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "peerwire"
	}
	if c.Debug.Address == "" {
		c.Debug.Address = DefaultDebugAddress
	}
	if c.Transport.WriteTimeout == "" {
		c.Transport.WriteTimeout = DefaultWriteTimeout
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Packer.MaxSize < minMaxSize {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("packer.maxSize must be at least %d (length header plus op), got %d", minMaxSize, c.Packer.MaxSize))
	}
	if c.Packer.InitialCap < 0 || c.Packer.InitialCap > c.Packer.MaxSize {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("packer.initialCap must be between 0 and packer.maxSize, got %d", c.Packer.InitialCap))
	}
	if c.Packer.InitialCap > packer.MaxInitialCap {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("packer.initialCap must be at most %d, got %d", packer.MaxInitialCap, c.Packer.InitialCap))
	}

	if !validLogLevel(c.Log.Level) {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}

	d, err := time.ParseDuration(c.Transport.WriteTimeout)
	if err != nil || d <= 0 {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("transport.writeTimeout %q is not a positive duration", c.Transport.WriteTimeout)).
			WithSuggestion(`Use a Go duration such as "10s" or "500ms"`)
	}

	if u := c.Transport.URL; u != "" && !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		return errors.New("PW003").
			WithDetail(fmt.Sprintf("transport.url %q must start with ws:// or wss://", u))
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// WriteTimeout returns the parsed transport write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Transport.WriteTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultWriteTimeout)
	}
	return d
}

// ArchiveEnabled reports whether frames should be archived to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Find walks up from startDir and returns the path of the nearest
// peerwire.json, or "" if there is none.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads the file at path if set. Otherwise it loads the nearest
// peerwire.json above the working directory, falling back to the defaults
// when there is none.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := Find(wd)
	if err != nil {
		return nil, err
	}
	if found == "" {
		return New(), nil
	}
	return LoadFile(found)
}
