// ABOUTME: Test doubles for the hal backend
// ABOUTME: A track that consumes its reader on demand and a recording listener
package hal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// fakeTrack plays nothing; tests move data from the reader with advance
type fakeTrack struct {
	mu       sync.Mutex
	r        io.ReadSeeker
	playing  bool
	volume   float64
	buffered int
	seeks    []int64
	closed   int
}

func newFakeTrack(r io.ReadSeeker) *fakeTrack {
	return &fakeTrack{r: r, volume: 1}
}

func (f *fakeTrack) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *fakeTrack) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakeTrack) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeTrack) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffered = 0
	f.seeks = append(f.seeks, offset)
	return f.r.Seek(offset, whence)
}

func (f *fakeTrack) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

func (f *fakeTrack) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeTrack) BufferedSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

func (f *fakeTrack) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// advance pulls n bytes from the reader into the device buffer
func (f *fakeTrack) advance(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	got, _ := io.ReadFull(f.r, make([]byte, n))
	f.buffered += got
}

// play drains n bytes from the device buffer
func (f *fakeTrack) play(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > f.buffered {
		n = f.buffered
	}
	f.buffered -= n
}

func (f *fakeTrack) seekLog() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.seeks...)
}

// recorder collects listener callbacks as strings
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) listener() *aal.Listener {
	return &aal.Listener{
		OnStart: func(any) { r.add("start") },
		OnStop: func(status aal.Status, _ any) {
			r.add(fmt.Sprintf("stop:%s", status))
		},
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) waitFor(t *testing.T, ev string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, e := range r.all() {
			if e == ev {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s, saw %v", ev, r.all())
}

// testFormat keeps fixtures unconverted: 8 kHz mono, 16 bytes per ms
var testFormat = audio.Format{Codec: "pcm", SampleRate: 8000, Channels: 1, BitDepth: 16}

// writeWAV writes a mono 16-bit WAV of the given length
func writeWAV(t *testing.T, sampleRate, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	data := make([]int, frames)
	for i := range data {
		data[i] = (i % 40) * 500
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	return path
}

// newTestLayer installs a backend whose tracks are fakes
func newTestLayer(t *testing.T) (*aal.Layer, *[]*fakeTrack) {
	t.Helper()
	var tracks []*fakeTrack
	b := &Backend{
		Format: testFormat,
		NewTrack: func(r io.ReadSeeker) (Track, error) {
			tr := newFakeTrack(r)
			tracks = append(tracks, tr)
			return tr, nil
		},
	}
	return aal.NewLayer(aal.NewRegistry(b.Module())), &tracks
}

// create makes a player for path and fails the test when it cannot
func create(t *testing.T, layer *aal.Layer, uri string, rec *recorder) aal.Handle {
	t.Helper()
	h := layer.PlayerCreate(&aal.Attributes{ModuleID: 0, URI: uri, Listener: rec.listener()}, nil)
	if h == nil {
		t.Fatalf("create %s failed", uri)
	}
	t.Cleanup(func() { layer.PlayerDestroy(h) })
	return h
}
