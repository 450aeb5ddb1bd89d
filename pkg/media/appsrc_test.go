// ABOUTME: Tests for the application source
// ABOUTME: Verifies queueing, need-data, end of stream and flushing
package media

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/output"
)

func newAppSource(t *testing.T, channels int) *AppSource {
	t.Helper()
	src, err := NewAppSource("src", 16000, channels)
	if err != nil {
		t.Fatalf("NewAppSource: %v", err)
	}
	return src
}

func TestAppSourceRejectsEmptyLayout(t *testing.T) {
	if _, err := NewAppSource("src", 16000, 0); !errors.Is(err, decode.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	p := NewPlaybin(PlaybinConfig{Name: "stream", URI: AppSrcURI, SampleRate: 16000, Sink: output.NewNull(false)})
	defer p.Close()
	if ret := p.SetState(Ready); ret != StateChangeFailure {
		t.Errorf("SetState(READY) = %s, want FAILURE", ret)
	}
}

func TestAppSourceReadsWholeFrames(t *testing.T) {
	src := newAppSource(t, 2)

	// Two frames plus half a frame
	data := audio.Int16ToBytes([]int16{1, -1, 2, -2, 3})
	if err := src.Push(data); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if src.CurrentLevelBytes() != 10 {
		t.Errorf("expected 10 queued bytes, got %d", src.CurrentLevelBytes())
	}

	samples := make([]int32, 8)
	n, err := src.Read(samples)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 samples, got %d", n)
	}
	if samples[0] != audio.SampleFromInt16(1) || samples[3] != audio.SampleFromInt16(-2) {
		t.Errorf("unexpected samples %v", samples[:n])
	}
	if src.CurrentLevelBytes() != 2 {
		t.Errorf("expected the partial frame to stay queued, got %d bytes", src.CurrentLevelBytes())
	}
}

func TestAppSourceEndOfStream(t *testing.T) {
	src := newAppSource(t, 1)
	src.Push(audio.Int16ToBytes([]int16{7}))
	src.EndOfStream()

	if err := src.Push([]byte{0, 0}); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream, got %v", err)
	}

	samples := make([]int32, 4)
	if n, err := src.Read(samples); n != 1 || err != nil {
		t.Fatalf("expected 1 sample, got %d, %v", n, err)
	}
	if _, err := src.Read(samples); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestAppSourceNeedData(t *testing.T) {
	src := newAppSource(t, 1)

	requests := make(chan int, 4)
	src.SetNeedDataFunc(func(length int) {
		requests <- length
		src.Push(audio.Int16ToBytes([]int16{1, 2}))
	})

	samples := make([]int32, 2)
	n, err := src.Read(samples)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 samples, got %d, %v", n, err)
	}

	select {
	case length := <-requests:
		if length != 4 {
			t.Errorf("expected need-data for 4 bytes, got %d", length)
		}
	default:
		t.Fatal("need-data not signalled")
	}
	if len(requests) != 0 {
		t.Errorf("expected one need-data, got %d more", len(requests))
	}
}

func TestAppSourceFlushUnblocksRead(t *testing.T) {
	src := newAppSource(t, 1)

	errc := make(chan error, 1)
	go func() {
		_, err := src.Read(make([]int32, 4))
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	src.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrFlushing) {
			t.Errorf("expected ErrFlushing, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("read not released by flush")
	}

	if err := src.Push([]byte{0, 0}); !errors.Is(err, ErrFlushing) {
		t.Errorf("expected ErrFlushing on push, got %v", err)
	}

	src.reset()
	if err := src.Push([]byte{0, 0}); err != nil {
		t.Errorf("push after reset failed: %v", err)
	}
}

func TestAppSourceKeepsDataBeforeActivation(t *testing.T) {
	src := newAppSource(t, 1)
	src.Push([]byte{1, 0})
	src.EndOfStream()
	src.reset()

	if src.CurrentLevelBytes() != 2 {
		t.Errorf("reset dropped data pushed before activation")
	}
	src.Read(make([]int32, 1))
	if _, err := src.Read(make([]int32, 1)); err != io.EOF {
		t.Errorf("reset dropped end of stream, got %v", err)
	}
}
