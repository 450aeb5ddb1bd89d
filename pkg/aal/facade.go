// ABOUTME: Common facade dispatching handle operations to the owning backend
// ABOUTME: Creates handles, stamps the listener and module id, then forwards calls
package aal

// Layer is the client entry point. It holds no session state of its own.
type Layer struct {
	registry *Registry
}

// NewLayer creates a facade over registry
func NewLayer(registry *Registry) *Layer {
	return &Layer{registry: registry}
}

// Registry returns the registry the facade dispatches through
func (l *Layer) Registry() *Registry { return l.registry }

func (l *Layer) Count() int                     { return l.registry.Count() }
func (l *Layer) Name(id int) string             { return l.registry.Name(id) }
func (l *Layer) Capabilities(id int) Capability { return l.registry.Capabilities(id) }
func (l *Layer) Find(required Capability) int   { return l.registry.Find(required) }
func (l *Layer) Initialize(id int) bool         { return l.registry.Initialize(id) }
func (l *Layer) Deinitialize(id int)            { l.registry.Deinitialize(id) }
func (l *Layer) FindByName(name string) int     { return findByName(l.registry, name) }
func (l *Layer) Module(id int) *Module          { return l.registry.Module(id) }

func findByName(r *Registry, name string) int {
	for i, m := range r.List() {
		if m.Name == name {
			return i
		}
	}
	return NotFound
}

// stamp fills the common prefix of a freshly created handle
func stamp(h Handle, attr *Attributes) {
	b := h.Base()
	b.Listener = attr.Listener
	b.UserData = attr.UserData
	b.ModuleID = attr.ModuleID
}

// PlayerCreate creates a playback session on attr.ModuleID
func (l *Layer) PlayerCreate(attr *Attributes, params *AudioParameters) Handle {
	if attr == nil {
		Logf(LogError, "player create: missing attributes")
		return nil
	}
	m := l.registry.Module(attr.ModuleID)
	if m == nil {
		Logf(LogError, "player create: invalid module id %d", attr.ModuleID)
		return nil
	}
	if m.Player == nil {
		Logf(LogError, "player create: module %s has no player", m.Name)
		return nil
	}

	h := m.Player.Create(attr, params)
	if h == nil {
		return nil
	}
	stamp(h, attr)
	return h
}

// RecorderCreate creates a capture session on attr.ModuleID
func (l *Layer) RecorderCreate(attr *Attributes, params *AudioParameters) Handle {
	if attr == nil {
		Logf(LogError, "recorder create: missing attributes")
		return nil
	}
	m := l.registry.Module(attr.ModuleID)
	if m == nil {
		Logf(LogError, "recorder create: invalid module id %d", attr.ModuleID)
		return nil
	}
	if m.Recorder == nil {
		Logf(LogError, "recorder create: module %s has no recorder", m.Name)
		return nil
	}

	h := m.Recorder.Create(attr, params)
	if h == nil {
		return nil
	}
	stamp(h, attr)
	return h
}

// player resolves the ops that created h
func (l *Layer) player(h Handle) PlayerOps {
	if h == nil {
		Logf(LogError, "player: nil handle")
		return nil
	}
	m := l.registry.Module(h.Base().ModuleID)
	if m == nil || m.Player == nil {
		Logf(LogError, "player: no player for module id %d", h.Base().ModuleID)
		return nil
	}
	return m.Player
}

func (l *Layer) recorder(h Handle) RecorderOps {
	if h == nil {
		Logf(LogError, "recorder: nil handle")
		return nil
	}
	m := l.registry.Module(h.Base().ModuleID)
	if m == nil || m.Recorder == nil {
		Logf(LogError, "recorder: no recorder for module id %d", h.Base().ModuleID)
		return nil
	}
	return m.Recorder
}

func (l *Layer) PlayerPlay(h Handle) {
	if ops := l.player(h); ops != nil {
		ops.Play(h)
	}
}

func (l *Layer) PlayerPause(h Handle) {
	if ops := l.player(h); ops != nil {
		ops.Pause(h)
	}
}

func (l *Layer) PlayerStop(h Handle) {
	if ops := l.player(h); ops != nil {
		ops.Stop(h)
	}
}

// PlayerPosition returns the position in ms
func (l *Layer) PlayerPosition(h Handle) int64 {
	if ops := l.player(h); ops != nil {
		return ops.Position(h)
	}
	return -1
}

// PlayerDuration returns the duration in ms, or -1 when unknown
func (l *Layer) PlayerDuration(h Handle) int64 {
	if ops := l.player(h); ops != nil {
		return ops.Duration(h)
	}
	return -1
}

func (l *Layer) PlayerBytesBuffered(h Handle) int64 {
	if ops := l.player(h); ops != nil {
		return ops.BytesBuffered(h)
	}
	return 0
}

func (l *Layer) PlayerSeek(h Handle, positionMs int64) {
	if ops := l.player(h); ops != nil {
		ops.Seek(h, positionMs)
	}
}

func (l *Layer) PlayerSetVolume(h Handle, volume float64) {
	if ops := l.player(h); ops != nil {
		ops.SetVolume(h, volume)
	}
}

func (l *Layer) PlayerSetMute(h Handle, mute bool) {
	if ops := l.player(h); ops != nil {
		ops.SetMute(h, mute)
	}
}

// PlayerWrite returns bytes accepted, or -1 on failure
func (l *Layer) PlayerWrite(h Handle, data []byte) int64 {
	if ops := l.player(h); ops != nil {
		return ops.Write(h, data)
	}
	return -1
}

func (l *Layer) PlayerNotifyEndOfStream(h Handle) {
	if ops := l.player(h); ops != nil {
		ops.NotifyEndOfStream(h)
	}
}

func (l *Layer) PlayerDestroy(h Handle) {
	if ops := l.player(h); ops != nil {
		ops.Destroy(h)
	}
}

func (l *Layer) RecorderPlay(h Handle) {
	if ops := l.recorder(h); ops != nil {
		ops.Play(h)
	}
}

func (l *Layer) RecorderStop(h Handle) {
	if ops := l.recorder(h); ops != nil {
		ops.Stop(h)
	}
}

func (l *Layer) RecorderDestroy(h Handle) {
	if ops := l.recorder(h); ops != nil {
		ops.Destroy(h)
	}
}
