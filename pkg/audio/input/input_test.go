// ABOUTME: Audio input tests
// ABOUTME: Verifies device selection and the tone generator
package input

import (
	"errors"
	"testing"
	"time"
)

func TestImplementsInput(t *testing.T) {
	var _ Input = (*Malgo)(nil)
	var _ Input = (*Tone)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		device  string
		wantErr bool
	}{
		{"", false},
		{"default", false},
		{"malgo", false},
		{"tone", false},
		{"tone:1000", false},
		{"tone:abc", true},
		{"tone:-5", true},
		{"hw:0,0", true},
	}

	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			in, err := New(tt.device)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDevice) {
					t.Errorf("expected ErrUnknownDevice, got %v", err)
				}
				return
			}
			if err != nil || in == nil {
				t.Fatalf("unexpected result: %v, %v", in, err)
			}
		})
	}
}

func TestToneReadBeforeOpen(t *testing.T) {
	tone := NewTone(440, false)
	if _, err := tone.Read(make([]int16, 4)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestToneDuplicatesChannels(t *testing.T) {
	tone := NewTone(440, false)
	if _, err := tone.Open(48000, 2); err != nil {
		t.Fatalf("open failed: %v", err)
	}

	samples := make([]int16, 200)
	n, err := tone.Read(samples)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != 200 {
		t.Fatalf("expected 200 samples, got %d", n)
	}

	nonZero := false
	for i := 0; i < n; i += 2 {
		if samples[i] != samples[i+1] {
			t.Fatalf("frame %d: channels differ (%d vs %d)", i/2, samples[i], samples[i+1])
		}
		if samples[i] != 0 {
			nonZero = true
		}
		if samples[i] > 16384 || samples[i] < -16384 {
			t.Fatalf("sample %d exceeds half scale: %d", i, samples[i])
		}
	}
	if !nonZero {
		t.Error("tone produced silence")
	}
}

func TestTonePaces(t *testing.T) {
	tone := NewTone(440, true)
	tone.Open(1000, 1)

	start := time.Now()
	tone.Read(make([]int16, 50))
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("paced read returned after %v, expected about 50ms", elapsed)
	}
}

func TestToneClosed(t *testing.T) {
	tone := NewTone(440, false)
	tone.Open(16000, 1)
	tone.Close()
	if _, err := tone.Read(make([]int16, 4)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestMalgoReadBeforeOpen(t *testing.T) {
	in := NewMalgo()
	if _, err := in.Read(make([]int16, 4)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
	if err := in.Close(); err != nil {
		t.Errorf("close of unopened input failed: %v", err)
	}
}
