// ABOUTME: Volume element applying gain and mute to samples in place
// ABOUTME: Clamps scaled samples to the 24-bit range
package media

import (
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
)

// Volume scales samples flowing to the sink. It is safe for concurrent use.
type Volume struct {
	mu     sync.Mutex
	volume float64
	muted  bool
}

// NewVolume creates a volume element at unity gain
func NewVolume() *Volume {
	return &Volume{volume: 1.0}
}

// SetVolume sets the linear gain
func (v *Volume) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

// Volume returns the linear gain
func (v *Volume) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

// SetMute silences output without changing the gain
func (v *Volume) SetMute(muted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = muted
}

// Mute reports whether output is silenced
func (v *Volume) Mute() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

// Process applies volume and mute to samples
func (v *Volume) Process(samples []int32) {
	multiplier := v.multiplier()
	if multiplier == 1.0 {
		return
	}
	applyVolume(samples, multiplier)
}

// multiplier calculates the effective gain
func (v *Volume) multiplier() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.muted {
		return 0.0
	}
	return v.volume
}

func applyVolume(samples []int32, multiplier float64) {
	for i, sample := range samples {
		scaled := int64(float64(sample) * multiplier)

		// Clamp to 24-bit range to prevent overflow
		if scaled > audio.Max24Bit {
			scaled = audio.Max24Bit
		} else if scaled < audio.Min24Bit {
			scaled = audio.Min24Bit
		}

		samples[i] = int32(scaled)
	}
}
