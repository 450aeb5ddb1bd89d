// ABOUTME: Audio encoder package for encoding PCM samples to device bytes
// ABOUTME: Provides Encoder interface and the PCM implementation used by output sinks
// Package encode packs int32 samples in 24-bit range into signed 16-bit
// little-endian PCM for audio devices, saturating out-of-range values.
//
// Example:
//
//	encoder, err := encode.NewPCM(format)
//	data, err := encoder.Encode(samples)
package encode
