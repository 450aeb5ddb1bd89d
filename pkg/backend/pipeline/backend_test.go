// ABOUTME: Tests for the pipeline backend operations
// ABOUTME: Covers creation checks, volume, the app source path and recorders
package pipeline

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/media"
)

func TestModuleDescriptor(t *testing.T) {
	m := Module()
	if m.Name != ModuleName {
		t.Errorf("expected name %s, got %s", ModuleName, m.Name)
	}
	want := aal.CapStreamPlayback | aal.CapURLPlayback | aal.CapLPCMPlayback
	if m.Capabilities != want {
		t.Errorf("expected capabilities %v, got %v", want, m.Capabilities)
	}
	if m.Player == nil || m.Recorder == nil {
		t.Error("expected player and recorder ops")
	}
	if !m.Initialize() {
		t.Error("Initialize should succeed")
	}
}

func TestPlayerCreateValidation(t *testing.T) {
	lpcm := aal.DefaultLPCM()
	badType := aal.AudioParameters{StreamType: aal.StreamType(7)}
	badFormat := aal.DefaultLPCM()
	badFormat.LPCM.SampleFormat = aal.SampleFormat(3)
	badRate := aal.DefaultLPCM()
	badRate.LPCM.SampleRate = 0

	tests := []struct {
		name   string
		uri    string
		params *aal.AudioParameters
		ok     bool
	}{
		{"stream with defaults", "", nil, true},
		{"stream with lpcm", "", &lpcm, true},
		{"stream with other type", "", &badType, false},
		{"stream with other format", "", &badFormat, false},
		{"stream with zero rate", "", &badRate, false},
		{"uri", "file:///a.wav", nil, true},
		{"uri with params", "file:///a.wav", &lpcm, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, _ := newTestLayer(t)
			h := layer.PlayerCreate(&aal.Attributes{ModuleID: 0, URI: tt.uri}, tt.params)
			if (h != nil) != tt.ok {
				t.Fatalf("expected ok=%v, got handle %v", tt.ok, h)
			}
			if h != nil {
				layer.PlayerDestroy(h)
			}
		})
	}
}

func TestPlayerCreateFactoryError(t *testing.T) {
	b := &Backend{NewPlayback: func(PlaybackConfig) (Playback, error) {
		return nil, errors.New("no device")
	}}
	layer := aal.NewLayer(aal.NewRegistry(b.Module()))

	if h := layer.PlayerCreate(&aal.Attributes{ModuleID: 0}, nil); h != nil {
		t.Error("expected nil handle when the pipeline cannot be built")
	}
}

func TestPlayerCreateConfig(t *testing.T) {
	var got PlaybackConfig
	b := &Backend{NewPlayback: func(cfg PlaybackConfig) (Playback, error) {
		got = cfg
		return newFakePipeline(cfg.Name, true), nil
	}}
	layer := aal.NewLayer(aal.NewRegistry(b.Module()))

	params := aal.AudioParameters{StreamType: aal.StreamLPCM,
		LPCM: aal.LPCMParameters{SampleFormat: aal.SampleFormatS16LE, Channels: 2, SampleRate: 44100}}
	h := layer.PlayerCreate(&aal.Attributes{ModuleID: 0, Device: "null"}, &params)
	if h == nil {
		t.Fatal("expected a handle")
	}
	defer layer.PlayerDestroy(h)

	if got.Device != "null" || got.LPCM != params.LPCM || got.URI != "" {
		t.Errorf("unexpected config %+v", got)
	}
	if !strings.HasPrefix(got.Name, "player-") {
		t.Errorf("expected generated name, got %q", got.Name)
	}
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	layer, h, f, _ := newTestPlayer(t, "file:///a.wav")

	tests := []struct {
		volume float64
		want   float64
	}{
		{0.5, 0.5},
		{1.5, 0.5},
		{-0.1, 0.5},
		{0, 0},
		{math.NaN(), 0},
		{1, 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		layer.PlayerSetVolume(h, tt.volume)
		if got := f.volume.Volume(); got != tt.want {
			t.Errorf("after SetVolume(%v) volume = %v, want %v", tt.volume, got, tt.want)
		}
	}

	layer.PlayerSetMute(h, true)
	if !f.volume.Mute() {
		t.Error("expected mute on the volume element")
	}
	if f.volume.Volume() != 1 {
		t.Error("mute must not change the volume")
	}
}

func TestPositionAndDuration(t *testing.T) {
	layer, h, f, _ := newTestPlayer(t, "file:///a.wav")

	if got := layer.PlayerPosition(h); got != 0 {
		t.Errorf("unknown position should be 0, got %d", got)
	}
	if got := layer.PlayerDuration(h); got != -1 {
		t.Errorf("unknown duration should be -1, got %d", got)
	}

	f.mu.Lock()
	f.position, f.duration = 1234, 5000
	f.mu.Unlock()

	if got := layer.PlayerPosition(h); got != 1234 {
		t.Errorf("expected 1234, got %d", got)
	}
	if got := layer.PlayerDuration(h); got != 5000 {
		t.Errorf("expected 5000, got %d", got)
	}
}

func TestWriteThroughAppSource(t *testing.T) {
	layer, h, f, _ := newTestPlayer(t, "")

	if got := layer.PlayerWrite(h, make([]byte, 640)); got != 640 {
		t.Errorf("expected 640 accepted, got %d", got)
	}
	if got := layer.PlayerBytesBuffered(h); got != 640 {
		t.Errorf("expected 640 buffered, got %d", got)
	}

	layer.PlayerNotifyEndOfStream(h)
	if got := layer.PlayerWrite(h, make([]byte, 2)); got != -1 {
		t.Errorf("write after end of stream should fail, got %d", got)
	}
	if f.appsrc.CurrentLevelBytes() != 640 {
		t.Error("rejected write must not change the queue")
	}
}

func TestWriteOnURIPlaybackFails(t *testing.T) {
	layer, h, _, _ := newTestPlayer(t, "file:///a.wav")

	if got := layer.PlayerWrite(h, []byte{0, 0}); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := layer.PlayerBytesBuffered(h); got != 0 {
		t.Errorf("expected 0 buffered, got %d", got)
	}
	layer.PlayerNotifyEndOfStream(h)
}

func TestNeedDataFiresOnDataRequested(t *testing.T) {
	_, _, f, rec := newTestPlayer(t, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]int32, 320)
		f.appsrc.Read(buf)
	}()

	rec.waitFor(t, "data-requested", 1, time.Second)
	f.appsrc.EndOfStream()
	<-done

	if rec.count("data-requested") != 1 {
		t.Errorf("expected one request per starving episode, got %v", rec.all())
	}
}

func TestAboutToFinishFiresOnAlmostDone(t *testing.T) {
	_, _, f, rec := newTestPlayer(t, "file:///a.wav")

	f.mu.Lock()
	fn := f.aboutToFinish
	f.mu.Unlock()
	if fn == nil {
		t.Fatal("about-to-finish callback not installed")
	}
	fn()

	rec.waitFor(t, "almost-done", 1, time.Second)
}

func TestDestroyTearsDown(t *testing.T) {
	layer, made := newTestLayer(t)
	h := layer.PlayerCreate(&aal.Attributes{ModuleID: 0, URI: "file:///a.wav"}, nil)
	f := (*made)[0]

	layer.PlayerDestroy(h)

	reqs := f.requests()
	if len(reqs) == 0 || reqs[len(reqs)-1] != null {
		t.Errorf("expected NULL request, got %v", reqs)
	}
	if !f.closed {
		t.Error("pipeline not closed")
	}
	select {
	case <-h.(*session).loop.done:
	default:
		t.Error("loop still running after destroy")
	}
}

func TestRecorderDeliversData(t *testing.T) {
	layer, made := newTestLayer(t)
	rec := &recorder{}

	h := layer.RecorderCreate(&aal.Attributes{ModuleID: 0, Listener: rec.listener()}, nil)
	if h == nil {
		t.Fatal("RecorderCreate returned nil")
	}
	defer layer.RecorderDestroy(h)
	f := (*made)[0]

	layer.RecorderPlay(h)
	startSequence(f)
	f.onData([]int16{1, 2, 3})
	rec.waitFor(t, "data", 1, time.Second)

	f.setState(playing)
	layer.RecorderStop(h)
	rec.waitFor(t, "stop:unknown", 1, time.Second)

	want := []string{"start", "data", "stop:unknown"}
	if got := rec.all(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !reflect.DeepEqual(rec.data[0], []int16{1, 2, 3}) {
		t.Errorf("unexpected samples %v", rec.data[0])
	}
}

func TestRecorderCreateValidation(t *testing.T) {
	layer, _ := newTestLayer(t)
	mp3 := aal.AudioParameters{StreamType: aal.StreamType(2)}

	if h := layer.RecorderCreate(&aal.Attributes{ModuleID: 0, URI: "file:///x"}, nil); h != nil {
		t.Error("recorder with uri should be rejected")
	}
	if h := layer.RecorderCreate(&aal.Attributes{ModuleID: 0}, &mp3); h != nil {
		t.Error("recorder with non-lpcm params should be rejected")
	}
}

func TestPlayerOpsRejectRecorderHandle(t *testing.T) {
	layer, _ := newTestLayer(t)
	h := layer.RecorderCreate(&aal.Attributes{ModuleID: 0}, nil)
	defer layer.RecorderDestroy(h)

	if got := layer.PlayerWrite(h, []byte{0, 0}); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := layer.PlayerDuration(h); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	layer.PlayerSetVolume(h, 0.5)
}

var _ Playback = (*media.Playbin)(nil)
