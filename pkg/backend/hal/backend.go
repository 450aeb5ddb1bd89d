// ABOUTME: hal backend module: URL player operations
// ABOUTME: Decodes the resource at create time and forwards to sessions
package hal

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// ModuleName is the registry name of the hal backend
const ModuleName = "hal"

// Capabilities of the hal backend
const Capabilities = aal.CapURLPlayback

// Backend creates URL players
type Backend struct {
	NewTrack TrackFactory

	// Format is what tracks expect; images are converted to it
	Format audio.Format
}

// New creates a backend on the shared oto context
func New() *Backend {
	return &Backend{NewTrack: NewOtoTrack, Format: DeviceFormat()}
}

// Module returns the default hal backend descriptor
func Module() *aal.Module {
	return New().Module()
}

// Module returns a descriptor dispatching to b
func (b *Backend) Module() *aal.Module {
	return &aal.Module{
		Name:         ModuleName,
		Capabilities: Capabilities,
		Player:       &playerOps{b: b},
	}
}

func toSession(h aal.Handle) *session {
	s, ok := h.(*session)
	if !ok || s == nil {
		aal.Logf(aal.LogError, "%s: foreign handle %T", ModuleName, h)
		return nil
	}
	return s
}

type playerOps struct {
	b *Backend
}

func (o *playerOps) Create(attr *aal.Attributes, params *aal.AudioParameters) aal.Handle {
	if attr.URI == "" {
		aal.Logf(aal.LogError, "%s: a uri is required", ModuleName)
		return nil
	}
	if params != nil {
		aal.Logf(aal.LogError, "%s: stream parameters are not supported", ModuleName)
		return nil
	}

	name := attr.Name
	if name == "" {
		name = "hal-" + uuid.NewString()[:8]
	}

	im, err := loadImage(attr.URI, o.b.Format)
	if err != nil {
		aal.Logf(aal.LogError, "%s: %v", name, err)
		return nil
	}

	track, err := o.b.NewTrack(im)
	if err != nil {
		aal.Logf(aal.LogError, "%s: failed to open track: %v", name, err)
		return nil
	}

	aal.Logf(aal.LogInfo, "%s: created for %s (%d ms)", name, filepath.Base(attr.URI), im.offsetToMs(im.Size()))
	return newSession(name, im, track)
}

func (o *playerOps) Play(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.play()
	}
}

func (o *playerOps) Pause(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.pause()
	}
}

func (o *playerOps) Stop(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.stop()
	}
}

func (o *playerOps) Position(h aal.Handle) int64 {
	s := toSession(h)
	if s == nil {
		return -1
	}
	return s.position()
}

func (o *playerOps) Duration(h aal.Handle) int64 {
	s := toSession(h)
	if s == nil {
		return -1
	}
	return s.duration()
}

func (o *playerOps) BytesBuffered(h aal.Handle) int64 {
	s := toSession(h)
	if s == nil {
		return 0
	}
	return s.buffered()
}

func (o *playerOps) Seek(h aal.Handle, positionMs int64) {
	if s := toSession(h); s != nil {
		s.seek(positionMs)
	}
}

func (o *playerOps) SetVolume(h aal.Handle, volume float64) {
	if s := toSession(h); s != nil {
		s.setVolume(volume)
	}
}

func (o *playerOps) SetMute(h aal.Handle, mute bool) {
	if s := toSession(h); s != nil {
		s.setMute(mute)
	}
}

func (o *playerOps) Write(h aal.Handle, data []byte) int64 {
	aal.Logf(aal.LogWarn, "%s: write is not supported", ModuleName)
	return -1
}

func (o *playerOps) NotifyEndOfStream(h aal.Handle) {
	aal.Logf(aal.LogWarn, "%s: end of stream is not supported", ModuleName)
}

func (o *playerOps) Destroy(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.destroy()
		aal.Logf(aal.LogInfo, "%s: destroyed", s.name)
	}
}
