// ABOUTME: Pipeline backend module: player and recorder operations
// ABOUTME: Validates creation parameters and forwards calls to the session
package pipeline

import (
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// ModuleName is the registry name of the pipeline backend
const ModuleName = "pipeline"

// Capabilities of the pipeline backend
const Capabilities = aal.CapStreamPlayback | aal.CapURLPlayback | aal.CapLPCMPlayback

// Backend builds pipeline sessions
type Backend struct {
	NewPlayback PlaybackFactory
	NewCapture  CaptureFactory
}

// New creates a backend on the real media framework and devices
func New() *Backend {
	return &Backend{NewPlayback: NewPlaybin, NewCapture: NewCapture}
}

// Module returns the default pipeline backend descriptor
func Module() *aal.Module {
	return New().Module()
}

// Module returns a descriptor dispatching to b
func (b *Backend) Module() *aal.Module {
	return &aal.Module{
		Name:         ModuleName,
		Capabilities: Capabilities,
		Initialize: func() bool {
			aal.Logf(aal.LogInfo, "%s backend initialized", ModuleName)
			return true
		},
		Player:   &playerOps{b: b},
		Recorder: &recorderOps{b: b},
	}
}

func sessionName(attr *aal.Attributes, kind string) string {
	if attr.Name != "" {
		return attr.Name
	}
	return kind + "-" + uuid.NewString()[:8]
}

// lpcmParams resolves stream parameters, defaulting to the voice format
func lpcmParams(params *aal.AudioParameters) (aal.LPCMParameters, bool) {
	if params == nil {
		return aal.DefaultLPCM().LPCM, true
	}
	if params.StreamType != aal.StreamLPCM {
		aal.Logf(aal.LogError, "unsupported stream type %d", params.StreamType)
		return aal.LPCMParameters{}, false
	}
	lpcm := params.LPCM
	if lpcm.SampleFormat != aal.SampleFormatS16LE {
		aal.Logf(aal.LogError, "unsupported sample format %s", lpcm.SampleFormat)
		return aal.LPCMParameters{}, false
	}
	if lpcm.SampleRate <= 0 || lpcm.Channels <= 0 {
		aal.Logf(aal.LogError, "invalid lpcm format %d Hz %d ch", lpcm.SampleRate, lpcm.Channels)
		return aal.LPCMParameters{}, false
	}
	return lpcm, true
}

func toSession(h aal.Handle) *session {
	s, ok := h.(*session)
	if !ok {
		aal.Logf(aal.LogError, "%s: foreign handle %T", ModuleName, h)
		return nil
	}
	return s
}

// toPlayer also rejects recorder sessions
func toPlayer(h aal.Handle) *session {
	s := toSession(h)
	if s != nil && s.playback == nil {
		aal.Logf(aal.LogError, "%s: not a player", s.name)
		return nil
	}
	return s
}

type playerOps struct {
	b *Backend
}

func (o *playerOps) Create(attr *aal.Attributes, params *aal.AudioParameters) aal.Handle {
	cfg := PlaybackConfig{Name: sessionName(attr, "player"), URI: attr.URI, Device: attr.Device}

	if attr.URI != "" {
		if params != nil {
			aal.Logf(aal.LogError, "%s: audio parameters are not supported for uri playback", cfg.Name)
			return nil
		}
	} else {
		lpcm, ok := lpcmParams(params)
		if !ok {
			return nil
		}
		cfg.LPCM = lpcm
	}

	p, err := o.b.NewPlayback(cfg)
	if err != nil {
		aal.Logf(aal.LogError, "%s: %v", cfg.Name, err)
		return nil
	}

	s := newSession(cfg.Name, p)
	if src := p.AppSource(); src != nil {
		src.SetNeedDataFunc(func(int) {
			s.loop.post(s.base.EmitDataRequested)
		})
	} else {
		p.SetAboutToFinishFunc(func() {
			s.loop.post(s.base.EmitAlmostDone)
		})
	}
	s.loop.start()

	aal.Logf(aal.LogInfo, "%s: created (uri=%q)", cfg.Name, attr.URI)
	return s
}

func (o *playerOps) Play(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.play()
	}
}

func (o *playerOps) Pause(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.pause()
	}
}

func (o *playerOps) Stop(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.stop()
	}
}

func (o *playerOps) Position(h aal.Handle) int64 {
	s := toPlayer(h)
	if s == nil {
		return 0
	}
	pos, ok := s.playback.Position()
	if !ok {
		return 0
	}
	return pos
}

func (o *playerOps) Duration(h aal.Handle) int64 {
	s := toPlayer(h)
	if s == nil {
		return -1
	}
	d, ok := s.playback.Duration()
	if !ok {
		return -1
	}
	return d
}

func (o *playerOps) BytesBuffered(h aal.Handle) int64 {
	s := toPlayer(h)
	if s == nil {
		return 0
	}
	src := s.playback.AppSource()
	if src == nil {
		return 0
	}
	return int64(src.CurrentLevelBytes())
}

// Seek tries a flushing seek now and otherwise replays it on the next PLAYING
func (o *playerOps) Seek(h aal.Handle, positionMs int64) {
	s := toPlayer(h)
	if s == nil {
		return
	}
	s.seek(positionMs)
}

func (o *playerOps) SetVolume(h aal.Handle, volume float64) {
	s := toPlayer(h)
	if s == nil {
		return
	}
	if !(volume >= 0 && volume <= 1) {
		aal.Logf(aal.LogError, "%s: volume %.2f out of range [0, 1]", s.name, volume)
		return
	}
	s.playback.VolumeElement().SetVolume(volume)
}

func (o *playerOps) SetMute(h aal.Handle, mute bool) {
	if s := toPlayer(h); s != nil {
		s.playback.VolumeElement().SetMute(mute)
	}
}

// Write pushes LPCM bytes into the application source
func (o *playerOps) Write(h aal.Handle, data []byte) int64 {
	s := toPlayer(h)
	if s == nil {
		return -1
	}
	src := s.playback.AppSource()
	if src == nil {
		aal.Logf(aal.LogError, "%s: write on uri playback", s.name)
		return -1
	}
	if err := src.Push(data); err != nil {
		aal.Logf(aal.LogError, "%s: push failed: %v", s.name, err)
		return -1
	}
	return int64(len(data))
}

func (o *playerOps) NotifyEndOfStream(h aal.Handle) {
	s := toPlayer(h)
	if s == nil {
		return
	}
	src := s.playback.AppSource()
	if src == nil {
		aal.Logf(aal.LogError, "%s: end of stream on uri playback", s.name)
		return
	}
	if err := src.EndOfStream(); err != nil {
		aal.Logf(aal.LogError, "%s: end of stream failed: %v", s.name, err)
	}
}

func (o *playerOps) Destroy(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.destroy()
		aal.Logf(aal.LogInfo, "%s: destroyed", s.name)
	}
}

type recorderOps struct {
	b *Backend
}

func (o *recorderOps) Create(attr *aal.Attributes, params *aal.AudioParameters) aal.Handle {
	name := sessionName(attr, "recorder")
	if attr.URI != "" {
		aal.Logf(aal.LogError, "%s: recorder does not take a uri", name)
		return nil
	}
	lpcm, ok := lpcmParams(params)
	if !ok {
		return nil
	}

	var s *session
	p, err := o.b.NewCapture(CaptureConfig{Name: name, Device: attr.Device, LPCM: lpcm}, func(samples []int16) {
		s.loop.post(func() { s.base.EmitData(samples) })
	})
	if err != nil {
		aal.Logf(aal.LogError, "%s: %v", name, err)
		return nil
	}
	s = newSession(name, p)
	s.loop.start()

	aal.Logf(aal.LogInfo, "%s: created (%d Hz, %d ch)", name, lpcm.SampleRate, lpcm.Channels)
	return s
}

func (o *recorderOps) Play(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.play()
	}
}

func (o *recorderOps) Stop(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.stop()
	}
}

func (o *recorderOps) Destroy(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.destroy()
		aal.Logf(aal.LogInfo, "%s: destroyed", s.name)
	}
}
