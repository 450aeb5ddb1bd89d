// ABOUTME: Encoder interface definition
// ABOUTME: Shared by output sinks and the in-memory playback image
package encode

import "errors"

// ErrUnsupportedFormat is returned for formats no encoder can produce
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Encoder packs samples in 24-bit range into device bytes
type Encoder interface {
	Encode(samples []int32) ([]byte, error)
	Close() error
}
