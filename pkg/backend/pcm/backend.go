// ABOUTME: PCM backend module: player and recorder operations
// ABOUTME: Validates LPCM parameters, opens channels and forwards to sessions
package pcm

import (
	"github.com/google/uuid"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// ModuleName is the registry name of the PCM backend
const ModuleName = "pcm"

// Capabilities of the PCM backend
const Capabilities = aal.CapStreamPlayback | aal.CapLPCMPlayback | aal.CapLPCMRecording

// fragmentDuration is the default fragment length in ms
const fragmentDuration = 20

// Backend opens PCM sessions
type Backend struct {
	OpenChannel ChannelFactory
}

// New creates a backend on real devices
func New() *Backend {
	return &Backend{OpenChannel: OpenChannel}
}

// Module returns the default PCM backend descriptor
func Module() *aal.Module {
	return New().Module()
}

// Module returns a descriptor dispatching to b
func (b *Backend) Module() *aal.Module {
	return &aal.Module{
		Name:         ModuleName,
		Capabilities: Capabilities,
		Player:       &playerOps{b: b},
		Recorder:     &recorderOps{b: b},
	}
}

// channelConfig resolves the channel format; zero fields take the voice defaults
func channelConfig(attr *aal.Attributes, params *aal.AudioParameters, dir Direction) (ChannelConfig, bool) {
	if attr.URI != "" {
		aal.Logf(aal.LogError, "%s: uri playback is not supported", ModuleName)
		return ChannelConfig{}, false
	}

	lpcm := aal.DefaultLPCM().LPCM
	if params != nil {
		if params.StreamType != aal.StreamLPCM {
			aal.Logf(aal.LogError, "%s: only lpcm is supported", ModuleName)
			return ChannelConfig{}, false
		}
		if params.LPCM.SampleFormat != aal.SampleFormatS16LE {
			aal.Logf(aal.LogError, "%s: unsupported sample format %s", ModuleName, params.LPCM.SampleFormat)
			return ChannelConfig{}, false
		}
		if params.LPCM.SampleRate > 0 {
			lpcm.SampleRate = params.LPCM.SampleRate
		}
		if params.LPCM.Channels > 0 {
			lpcm.Channels = params.LPCM.Channels
		}
	}

	// fragments hold whole frames so reads never split a sample
	frameSize := lpcm.Channels * 2
	frames := lpcm.SampleRate * fragmentDuration / 1000
	if frames < 1 {
		frames = 1
	}

	return ChannelConfig{
		Device:       attr.Device,
		Direction:    dir,
		SampleRate:   lpcm.SampleRate,
		Channels:     lpcm.Channels,
		FragmentSize: frames * frameSize,
	}, true
}

func (b *Backend) create(attr *aal.Attributes, params *aal.AudioParameters, dir Direction) aal.Handle {
	cfg, ok := channelConfig(attr, params, dir)
	if !ok {
		return nil
	}

	name := attr.Name
	if name == "" {
		name = "pcm-" + dir.String() + "-" + uuid.NewString()[:8]
	}

	ch, err := b.OpenChannel(cfg)
	if err != nil {
		aal.Logf(aal.LogError, "%s: failed to open channel: %v", name, err)
		return nil
	}

	aal.Logf(aal.LogInfo, "%s: created (%d Hz, %d ch, fragment %d bytes)",
		name, cfg.SampleRate, cfg.Channels, cfg.FragmentSize)
	return newSession(name, cfg, ch)
}

func toSession(h aal.Handle) *session {
	s, ok := h.(*session)
	if !ok || s == nil {
		aal.Logf(aal.LogError, "%s: foreign handle %T", ModuleName, h)
		return nil
	}
	return s
}

// toPlayer also rejects capture sessions
func toPlayer(h aal.Handle) *session {
	s := toSession(h)
	if s != nil && s.ring == nil {
		aal.Logf(aal.LogError, "%s: not a player", s.name)
		return nil
	}
	return s
}

func unsupported(h aal.Handle, op string) {
	name := ModuleName
	if s, ok := h.(*session); ok && s != nil {
		name = s.name
	}
	aal.Logf(aal.LogWarn, "%s: %s is not supported", name, op)
}

type playerOps struct {
	b *Backend
}

func (o *playerOps) Create(attr *aal.Attributes, params *aal.AudioParameters) aal.Handle {
	return o.b.create(attr, params, Playback)
}

func (o *playerOps) Play(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.play()
	}
}

func (o *playerOps) Pause(h aal.Handle) { unsupported(h, "pause") }

func (o *playerOps) Stop(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.stop()
	}
}

func (o *playerOps) Position(h aal.Handle) int64 {
	unsupported(h, "position")
	return -1
}

func (o *playerOps) Duration(h aal.Handle) int64 {
	unsupported(h, "duration")
	return -1
}

func (o *playerOps) BytesBuffered(h aal.Handle) int64 {
	s := toPlayer(h)
	if s == nil {
		return 0
	}
	return s.buffered()
}

func (o *playerOps) Seek(h aal.Handle, positionMs int64)    { unsupported(h, "seek") }
func (o *playerOps) SetVolume(h aal.Handle, volume float64) { unsupported(h, "volume") }
func (o *playerOps) SetMute(h aal.Handle, mute bool)        { unsupported(h, "mute") }

// Write returns len(data) when queued and 0 when it does not fit
func (o *playerOps) Write(h aal.Handle, data []byte) int64 {
	s := toPlayer(h)
	if s == nil {
		return -1
	}
	return s.write(data)
}

func (o *playerOps) NotifyEndOfStream(h aal.Handle) {
	if s := toPlayer(h); s != nil {
		s.notifyEndOfStream()
	}
}

func (o *playerOps) Destroy(h aal.Handle) {
	if s := toSession(h); s != nil {
		s.destroy()
		aal.Logf(aal.LogInfo, "%s: destroyed", s.name)
	}
}

type recorderOps struct {
	b *Backend
}

func (o *recorderOps) Create(attr *aal.Attributes, params *aal.AudioParameters) aal.Handle {
	return o.b.create(attr, params, Capture)
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
