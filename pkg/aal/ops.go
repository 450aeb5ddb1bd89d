// ABOUTME: Backend operation interfaces and the module descriptor
// ABOUTME: Player and recorder variants dispatched by the facade
package aal

// PlayerOps is the playback contract of a backend. Operations receive
// handles created by the same backend's Create.
type PlayerOps interface {
	// Create returns nil when the attributes or parameters are not supported
	Create(attr *Attributes, params *AudioParameters) Handle
	Play(h Handle)
	Pause(h Handle)
	Stop(h Handle)
	// Position returns the playback position in ms
	Position(h Handle) int64
	// Duration returns the stream length in ms, or -1 when unknown
	Duration(h Handle) int64
	BytesBuffered(h Handle) int64
	Seek(h Handle, positionMs int64)
	// SetVolume takes a linear volume in [0, 1]
	SetVolume(h Handle, volume float64)
	SetMute(h Handle, mute bool)
	// Write queues LPCM bytes and returns how many were accepted, or -1 on failure
	Write(h Handle, data []byte) int64
	NotifyEndOfStream(h Handle)
	Destroy(h Handle)
}

// RecorderOps is the capture contract of a backend
type RecorderOps interface {
	Create(attr *Attributes, params *AudioParameters) Handle
	Play(h Handle)
	Stop(h Handle)
	Destroy(h Handle)
}

// Module describes one backend. It is immutable once installed.
type Module struct {
	Name         string
	Capabilities Capability

	// Initialize and Deinitialize are optional
	Initialize   func() bool
	Deinitialize func()

	// Player and Recorder are nil when unsupported
	Player   PlayerOps
	Recorder RecorderOps
}
