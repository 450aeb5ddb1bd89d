// ABOUTME: Audio input package for capturing audio
// ABOUTME: Provides the Input interface with malgo capture and a tone generator
// Package input provides audio capture sources.
//
// Example:
//
//	in, err := input.New("default")
//	format, err := in.Open(16000, 1)
//	n, err := in.Read(samples)
package input
