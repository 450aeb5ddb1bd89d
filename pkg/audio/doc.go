// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion functions
// Package audio provides fundamental audio types shared by the decoders, the
// media pipeline and the AAL backends.
//
// Samples travel through the pipeline as int32 values in 24-bit range, so 16-bit
// and 24-bit sources share one code path:
//   - 16-bit ↔ 24-bit conversions
//   - int32 ↔ packed byte conversions
//   - S16LE byte ↔ int16 conversions for the LPCM streaming API
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "pcm",
//	    SampleRate: 16000,
//	    Channels:   1,
//	    BitDepth:   16,
//	}
//
//	// Convert 16-bit sample to 24-bit range
//	sample24 := audio.SampleFromInt16(sample16)
package audio
