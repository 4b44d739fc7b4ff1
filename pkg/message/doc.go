// Package message implements the outbound peer message codec.
//
// Every message is a value of one of the variant types in this package
// (Ping, Get, PeerList, ...). A caller builds the value and asks a Codec for
// either the plain or the compressed encoding; the codec returns a complete
// frame ready for the transport.
//
// # Wire Format
//
// Every frame is a 4-byte big-endian length followed by the body:
//
//	┌───────────────────────────┬──────────┬──────────────────────────┐
//	│ Body Length               │ Op       │ Payload                  │
//	│ (4 bytes, big-endian)     │ (1 byte) │ (variable)               │
//	└───────────────────────────┴──────────┴──────────────────────────┘
//
// For compressible ops the payload starts with a flag byte. With the flag
// set to 0 the fields follow as-is; with the flag set to 1 the rest of the
// payload is the gzip stream of those same fields.
//
// # Field Encoding
//
//   - Integers: big-endian u32/u64
//   - IDs: 32 raw bytes, no length prefix
//   - Byte blobs: u32 length prefix
//   - Strings: u16 length prefix
//   - IPs: 16-byte address + u16 port
//   - Lists: u32 count followed by the elements
//
// # Encoding Modes
//
//	frame, err := message.Encode(&message.Get{
//	    ChainID:     chainID,
//	    RequestID:   7,
//	    Deadline:    10 * time.Second,
//	    ContainerID: containerID,
//	}, message.Plain)
//
// Compressed is accepted only for compressible ops; it fails with
// ErrNotCompressible otherwise. Which mode to use is the caller's decision.
//
// Internal ops (timeouts, failures, connection events) are registered so
// that the whole engine shares one numbering, but they have no variant type
// and can never be encoded.
package message
