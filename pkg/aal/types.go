// ABOUTME: Public AAL types shared by the facade and every backend
// ABOUTME: Capabilities, statuses, listener callbacks and creation parameters
package aal

import "fmt"

// Capability is a bitmask of what a module can do
type Capability uint32

const (
	CapStreamPlayback Capability = 1 << iota
	CapURLPlayback
	CapLPCMPlayback
	CapLPCMRecording
)

func (c Capability) String() string {
	names := []string{"stream", "url", "lpcm", "lpcm-rec"}
	s := ""
	for i, name := range names {
		if c&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Status is the reason reported by OnStop
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusPaused
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusPaused:
		return "paused"
	case StatusUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Listener receives backend notifications. Every member is optional.
// The caller keeps the listener alive for the lifetime of the handle.
type Listener struct {
	OnStart         func(userData any)
	OnStop          func(status Status, userData any)
	OnData          func(samples []int16, userData any)
	OnDataRequested func(userData any)
	OnAlmostDone    func(userData any)
}

// StreamType selects how Write data is interpreted
type StreamType int

const (
	StreamLPCM StreamType = iota
)

// SampleFormat is the layout of LPCM samples
type SampleFormat int

const (
	SampleFormatS16LE SampleFormat = iota
)

func (f SampleFormat) String() string {
	if f == SampleFormatS16LE {
		return "S16LE"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// LPCMParameters describes raw PCM
type LPCMParameters struct {
	SampleFormat SampleFormat
	Channels     int
	SampleRate   int
}

// AudioParameters describes the stream handed to Write
type AudioParameters struct {
	StreamType StreamType
	LPCM       LPCMParameters
}

// Default LPCM format for voice streams
const (
	AVSSampleFormat = SampleFormatS16LE
	AVSChannels     = 1
	AVSSampleRate   = 16000
)

// DefaultLPCM returns the default voice stream parameters
func DefaultLPCM() AudioParameters {
	return AudioParameters{
		StreamType: StreamLPCM,
		LPCM: LPCMParameters{
			SampleFormat: AVSSampleFormat,
			Channels:     AVSChannels,
			SampleRate:   AVSSampleRate,
		},
	}
}

// Attributes are the creation parameters of a player or recorder
type Attributes struct {
	// ModuleID is the registry index of the backend
	ModuleID int

	// Name labels the session in logs; backends generate one when empty
	Name string

	// Device selects an output or input device; empty means default
	Device string

	// URI selects URL playback; empty means LPCM streaming through Write
	URI string

	Listener *Listener
	UserData any
}
