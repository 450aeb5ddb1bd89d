// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Output interface with oto, malgo, PortAudio and null sinks
// Package output provides audio playback sinks.
//
// Oto is the default. Malgo drives miniaudio directly, PortAudio is
// available with the portaudio build tag, and Null discards audio.
//
// Example:
//
//	out, err := output.New("default")
//	format, err := out.Open(48000, 2)
//	err = out.Write(samples)
package output
