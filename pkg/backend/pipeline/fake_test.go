// ABOUTME: Test doubles for the pipeline backend
// ABOUTME: A scripted pipeline and a listener that records callbacks in order
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/media"
)

var errNotReady = errors.New("not ready")

// fakePipeline records requests; tests post the bus messages themselves
type fakePipeline struct {
	name   string
	bus    *media.Bus
	volume *media.Volume
	appsrc *media.AppSource

	mu            sync.Mutex
	state         media.State
	setRet        media.StateChangeReturn
	requested     []media.State
	seekErr       error
	seeks         []int64
	position      int64
	duration      int64
	closed        bool
	aboutToFinish func()
	onData        func([]int16)
}

func newFakePipeline(name string, app bool) *fakePipeline {
	f := &fakePipeline{
		name:     name,
		bus:      media.NewBus(),
		volume:   media.NewVolume(),
		state:    media.Null,
		setRet:   media.StateChangeSuccess,
		position: -1,
		duration: -1,
	}
	if app {
		f.appsrc, _ = media.NewAppSource(name+"-appsrc", 16000, 1)
	}
	return f
}

func (f *fakePipeline) Name() string    { return f.name }
func (f *fakePipeline) Bus() *media.Bus { return f.bus }

func (f *fakePipeline) SetState(state media.State) media.StateChangeReturn {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, state)
	if f.setRet != media.StateChangeFailure {
		f.state = state
	}
	return f.setRet
}

func (f *fakePipeline) GetState(time.Duration) (media.StateChangeReturn, media.State, media.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return media.StateChangeSuccess, f.state, media.VoidPending
}

func (f *fakePipeline) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePipeline) Seek(ms int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, ms)
	return nil
}

func (f *fakePipeline) Position() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.position >= 0
}

func (f *fakePipeline) Duration() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, f.duration >= 0
}

func (f *fakePipeline) AppSource() *media.AppSource  { return f.appsrc }
func (f *fakePipeline) VolumeElement() *media.Volume { return f.volume }

func (f *fakePipeline) SetAboutToFinishFunc(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aboutToFinish = fn
}

func (f *fakePipeline) setState(state media.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakePipeline) requests() []media.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.State(nil), f.requested...)
}

// post helpers build messages the way the media framework does
func (f *fakePipeline) streamStart() {
	f.bus.Post(&media.Message{Type: media.MessageStreamStart, Source: f.name})
}

func (f *fakePipeline) eos() {
	f.bus.Post(&media.Message{Type: media.MessageEOS, Source: f.name})
}

func (f *fakePipeline) fail(msg string) {
	f.bus.Post(&media.Message{Type: media.MessageError, Source: f.name, Err: errors.New(msg)})
}

func (f *fakePipeline) changed(old, cur, pending, next media.State) {
	f.bus.Post(&media.Message{Type: media.MessageStateChanged, Source: f.name,
		Old: old, New: cur, Pending: pending, Next: next})
}

// recorder collects listener callbacks as strings
type recorder struct {
	mu     sync.Mutex
	events []string
	data   [][]int16
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
		OnData: func(samples []int16, _ any) {
			r.mu.Lock()
			r.data = append(r.data, samples)
			r.mu.Unlock()
			r.add("data")
		},
		OnDataRequested: func(any) { r.add("data-requested") },
		OnAlmostDone:    func(any) { r.add("almost-done") },
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(ev string) int {
	n := 0
	for _, e := range r.all() {
		if e == ev {
			n++
		}
	}
	return n
}

// waitFor polls until ev has been seen n times
func (r *recorder) waitFor(t *testing.T, ev string, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.count(ev) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %s, saw %v", n, ev, r.all())
}

// drain waits until the session loop has handled everything posted so far
func drain(t *testing.T, h aal.Handle) {
	t.Helper()
	s := h.(*session)
	done := make(chan struct{})
	s.loop.post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not drain")
	}
}

// newTestLayer installs a backend whose pipelines are fakes
func newTestLayer(t *testing.T) (*aal.Layer, *[]*fakePipeline) {
	t.Helper()
	var made []*fakePipeline
	b := &Backend{
		NewPlayback: func(cfg PlaybackConfig) (Playback, error) {
			f := newFakePipeline(cfg.Name, cfg.URI == "")
			made = append(made, f)
			return f, nil
		},
		NewCapture: func(cfg CaptureConfig, onData func([]int16)) (Pipeline, error) {
			f := newFakePipeline(cfg.Name, false)
			f.onData = onData
			made = append(made, f)
			return &fakeCapture{f: f}, nil
		},
	}
	return aal.NewLayer(aal.NewRegistry(b.Module())), &made
}

// fakeCapture exposes only the Pipeline methods of a fake
type fakeCapture struct {
	f *fakePipeline
}

func (c *fakeCapture) Name() string    { return c.f.Name() }
func (c *fakeCapture) Bus() *media.Bus { return c.f.Bus() }
func (c *fakeCapture) Close() error    { return c.f.Close() }

func (c *fakeCapture) SetState(state media.State) media.StateChangeReturn {
	return c.f.SetState(state)
}

func (c *fakeCapture) GetState(timeout time.Duration) (media.StateChangeReturn, media.State, media.State) {
	return c.f.GetState(timeout)
}
