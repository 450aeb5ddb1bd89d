// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides frame decoders and streaming sources for WAV, FLAC, MP3, Vorbis and Opus
// Package decode provides audio decoders for the media pipeline.
//
// Two shapes are offered:
//   - Decoder converts raw buffers (LPCM pushed by an application) to samples
//   - Source streams a container (WAV, FLAC, MP3, Ogg Vorbis, Ogg Opus)
//
// All of them output int32 samples in 24-bit range so the rest of the pipeline
// has a single sample representation.
//
// Example:
//
//	src, err := decode.Open(file)
//	n, err := src.Read(samples)
package decode
