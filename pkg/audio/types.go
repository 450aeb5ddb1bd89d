// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats and sample conversion helpers
package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a decoded PCM stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// String renders the format the way it shows up in logs
func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %d-bit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}

// FrameSize returns the number of bytes in one interleaved frame
func (f Format) FrameSize() int {
	return f.Channels * (f.BitDepth / 8)
}

// BytesPerMillisecond returns the byte rate of the format divided by 1000
func (f Format) BytesPerMillisecond() float64 {
	return float64(f.SampleRate*f.FrameSize()) / 1000.0
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// ScaleTo24Bit moves a sample of the given bit depth into the 24-bit range
func ScaleTo24Bit(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << uint(24-bitDepth)
	default:
		return sample >> uint(bitDepth-24)
	}
}

// Int16ToBytes encodes interleaved S16 samples as little-endian bytes
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToInt16 decodes little-endian S16 bytes; a trailing odd byte is ignored
func BytesToInt16(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
