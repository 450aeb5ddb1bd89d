// ABOUTME: Tests for the volume element
// ABOUTME: Verifies gain, mute and 24-bit clamping
package media

import (
	"testing"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

func TestVolumeProcess(t *testing.T) {
	tests := []struct {
		name   string
		volume float64
		muted  bool
		in     int32
		want   int32
	}{
		{"unity", 1.0, false, 1000, 1000},
		{"half", 0.5, false, 1000, 500},
		{"zero", 0.0, false, 1000, 0},
		{"muted", 1.0, true, 1000, 0},
		{"clamp high", 4.0, false, audio.Max24Bit / 2, audio.Max24Bit},
		{"clamp low", 4.0, false, audio.Min24Bit / 2, audio.Min24Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVolume()
			v.SetVolume(tt.volume)
			v.SetMute(tt.muted)

			samples := []int32{tt.in}
			v.Process(samples)
			if samples[0] != tt.want {
				t.Errorf("expected %d, got %d", tt.want, samples[0])
			}
		})
	}
}

func TestVolumeMuteKeepsGain(t *testing.T) {
	v := NewVolume()
	v.SetVolume(0.3)
	v.SetMute(true)
	v.SetMute(false)

	if v.Volume() != 0.3 {
		t.Errorf("expected gain 0.3 after unmute, got %f", v.Volume())
	}
	if v.Mute() {
		t.Error("expected unmuted")
	}
}
