// ABOUTME: Package documentation for the hardware audio-layer backend
// ABOUTME: URL playback on a seekable PCM image with synchronous callbacks
// Package hal is an AAL backend modelled on an object-based audio layer:
// a player object with a play state, a seek interface and a volume
// interface. It only plays URLs.
//
// Play, Pause and Stop report OnStart, OnStop(Paused) and OnStop(Unknown)
// on the caller's goroutine before they return. A monitor goroutine reports
// OnStop(Success) when the play head reaches the end.
package hal
