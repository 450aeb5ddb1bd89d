// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between sample rates and channel layouts
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling, plus mono/stereo remixing.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	outputSize := r.Resample(inputSamples, outputSamples)
package resample
