package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Example    string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (PW001-PW009)
	// ============================================

	"PW001": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "The configuration file passed with --config does not exist.",
		Suggestion: "Omit --config to use the built-in defaults, or run 'peerwire config init'",
	},
	"PW002": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "The configuration file could not be read or is not valid JSON.",
		Suggestion: "Check that peerwire.json is valid JSON",
	},
	"PW003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or cannot be parsed.",
	},

	// ============================================
	// Encoding Errors (PW010-PW019)
	// ============================================

	"PW010": {
		Category:   CategoryEncode,
		Message:    "Unknown op",
		Detail:     "The op name is not in the message registry.",
		Suggestion: "Run 'peerwire ops' to list the registered ops",
	},
	"PW011": {
		Category:   CategoryEncode,
		Message:    "Op is not compressible",
		Detail:     "Only compressible ops carry the flag byte that announces a gzip payload.",
		Suggestion: "Use --mode plain for this op",
	},
	"PW012": {
		Category:   CategoryEncode,
		Message:    "Frame capacity exceeded",
		Detail:     "The encoded frame would be larger than the configured packer limit.",
		Suggestion: "Raise packer.maxSize in the configuration or send less data",
	},
	"PW013": {
		Category: CategoryEncode,
		Message:  "String too long",
		Detail:   "Strings are written with a 16-bit length prefix and cannot exceed 65535 bytes.",
	},
	"PW014": {
		Category:   CategoryEncode,
		Message:    "Invalid IP address",
		Detail:     "An IP field is missing or is not a valid IPv4 or IPv6 address.",
		Suggestion: "Use the form 127.0.0.1:9651 or [::1]:9651",
	},
	"PW015": {
		Category: CategoryEncode,
		Message:  "Compression failed",
		Detail:   "The gzip codec returned an error.",
	},
	"PW016": {
		Category: CategoryEncode,
		Message:  "Invalid message description",
		Detail:   "The JSON message description could not be parsed.",
		Example:  `{"op": "pong", "uptimePct": 99}`,
	},
	"PW017": {
		Category: CategoryEncode,
		Message:  "Op has no wire encoding",
		Detail:   "Internal ops such as timeouts and connection events never travel on the wire.",
	},

	// ============================================
	// Frame Errors (PW020-PW029)
	// ============================================

	"PW020": {
		Category: CategoryFrame,
		Message:  "Malformed frame",
		Detail:   "The frame is truncated, its length header does not match the body, or its flag byte is invalid.",
	},
	"PW021": {
		Category:   CategoryFrame,
		Message:    "Frame too large",
		Detail:     "The frame, or its decompressed fields, exceed the inspection limit.",
		Suggestion: "Raise packer.maxSize in the configuration",
	},

	// ============================================
	// Transport Errors (PW030-PW039)
	// ============================================

	"PW030": {
		Category:   CategoryTransport,
		Message:    "Connection failed",
		Detail:     "Unable to establish the websocket connection to the peer.",
		Suggestion: "Check transport.url and that the peer is listening",
	},
	"PW031": {
		Category: CategoryTransport,
		Message:  "Send failed",
		Detail:   "The frame could not be written to the peer.",
	},
	"PW032": {
		Category:   CategoryTransport,
		Message:    "Archive upload failed",
		Detail:     "The frame could not be stored in the S3 archive.",
		Suggestion: "Check archive.bucket, archive.region and the AWS credentials in the environment",
	},

	// ============================================
	// CLI Errors (PW040-PW049)
	// ============================================

	"PW040": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	"PW041": {
		Category: CategoryCLI,
		Message:  "Failed to read input",
	},
	"PW042": {
		Category: CategoryCLI,
		Message:  "Failed to write output",
	},
}

// Codes returns every registered code in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
