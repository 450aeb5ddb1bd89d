// ABOUTME: Test doubles for the PCM backend
// ABOUTME: A scripted channel and a listener that records callbacks in order
package pcm

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// fakeChannel reports fixed readiness and records what the worker does
type fakeChannel struct {
	mu         sync.Mutex
	ready      Readiness
	waitErr    error
	readErr    error
	readShort  bool
	writeLimit int // -1 accepts everything
	written    bytes.Buffer
	events     []Event
	reads      int
	readSize   int
	prepared   int
	flushed    int
	closed     int
}

func newFakeChannel(ready Readiness) *fakeChannel {
	return &fakeChannel{ready: ready, writeLimit: -1}
}

func (f *fakeChannel) Prepare() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepared++
	return nil
}

func (f *fakeChannel) Wait(time.Duration) (Readiness, error) {
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.waitErr != nil {
		return 0, f.waitErr
	}
	r := f.ready
	if len(f.events) > 0 {
		r |= Eventful
	}
	return r, nil
}

func (f *fakeChannel) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	f.reads++
	f.readSize = len(p)
	for i := range p {
		p[i] = byte(f.reads)
	}
	if f.readShort {
		return len(p) / 2, nil
	}
	return len(p), nil
}

func (f *fakeChannel) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(p)
	if f.writeLimit >= 0 && n > f.writeLimit {
		n = f.writeLimit
	}
	f.written.Write(p[:n])
	return n, nil
}

func (f *fakeChannel) ReadEvent() (Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return Event{}, ErrNoEvent
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeChannel) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeChannel) writtenBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written.Bytes()...)
}

// recorder collects listener callbacks as strings
type recorder struct {
	mu      sync.Mutex
	events  []string
	samples [][]int16
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
			r.samples = append(r.samples, samples)
			r.mu.Unlock()
			r.add("data")
		},
		OnDataRequested: func(any) { r.add("data-requested") },
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

func (r *recorder) waitFor(t *testing.T, ev string, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if r.count(ev) >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d x %s, saw %v", n, ev, r.all())
}

// newTestLayer installs a backend whose channels come from open
func newTestLayer(open func(cfg ChannelConfig) *fakeChannel) (*aal.Layer, *[]ChannelConfig) {
	var cfgs []ChannelConfig
	b := &Backend{OpenChannel: func(cfg ChannelConfig) (Channel, error) {
		cfgs = append(cfgs, cfg)
		return open(cfg), nil
	}}
	return aal.NewLayer(aal.NewRegistry(b.Module())), &cfgs
}
