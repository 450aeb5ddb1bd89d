// ABOUTME: Narrow view of the media framework used by the pipeline backend
// ABOUTME: Default factories build playbins and capture pipelines on real devices
package pipeline

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/input"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-aal/pkg/media"
)

// Pipeline is the state and bus surface shared by players and recorders
type Pipeline interface {
	Name() string
	Bus() *media.Bus
	SetState(state media.State) media.StateChangeReturn
	GetState(timeout time.Duration) (media.StateChangeReturn, media.State, media.State)
	Close() error
}

// Playback is a Pipeline that plays a URI or an application source
type Playback interface {
	Pipeline
	Seek(ms int64) error
	Position() (int64, bool)
	Duration() (int64, bool)

	// AppSource is nil for URI playback
	AppSource() *media.AppSource
	VolumeElement() *media.Volume
	SetAboutToFinishFunc(fn func())
}

// PlaybackConfig describes the pipeline a player needs
type PlaybackConfig struct {
	Name   string
	URI    string
	Device string
	LPCM   aal.LPCMParameters
}

// CaptureConfig describes the pipeline a recorder needs
type CaptureConfig struct {
	Name   string
	Device string
	LPCM   aal.LPCMParameters
}

// PlaybackFactory builds the pipeline behind a player
type PlaybackFactory func(cfg PlaybackConfig) (Playback, error)

// CaptureFactory builds the pipeline behind a recorder. onData runs on the
// capture goroutine.
type CaptureFactory func(cfg CaptureConfig, onData func(samples []int16)) (Pipeline, error)

// NewPlaybin builds a playbin feeding the named output device
func NewPlaybin(cfg PlaybackConfig) (Playback, error) {
	sink, err := output.New(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to create sink: %w", err)
	}

	uri := cfg.URI
	if uri == "" {
		uri = media.AppSrcURI
	}
	return media.NewPlaybin(media.PlaybinConfig{
		Name:       cfg.Name,
		URI:        uri,
		SampleRate: cfg.LPCM.SampleRate,
		Channels:   cfg.LPCM.Channels,
		Sink:       sink,
	}), nil
}

// NewCapture builds a capture pipeline reading the named input device
func NewCapture(cfg CaptureConfig, onData func(samples []int16)) (Pipeline, error) {
	in, err := input.New(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return media.NewCapturePipeline(media.CaptureConfig{
		Name:       cfg.Name,
		SampleRate: cfg.LPCM.SampleRate,
		Channels:   cfg.LPCM.Channels,
		Input:      in,
	}, onData), nil
}
