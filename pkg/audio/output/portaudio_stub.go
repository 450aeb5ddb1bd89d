//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// ErrPortAudioDisabled is returned by every method of the stub
var ErrPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

func (p *PortAudio) Open(sampleRate, channels int) (audio.Format, error) {
	return audio.Format{}, ErrPortAudioDisabled
}

func (p *PortAudio) Write(samples []int32) error { return ErrPortAudioDisabled }
func (p *PortAudio) Pause() error                { return ErrPortAudioDisabled }
func (p *PortAudio) Resume() error               { return ErrPortAudioDisabled }
func (p *PortAudio) Flush() error                { return ErrPortAudioDisabled }
func (p *PortAudio) Buffered() int               { return 0 }
func (p *PortAudio) Close() error                { return nil }
