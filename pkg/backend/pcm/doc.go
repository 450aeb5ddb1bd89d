// ABOUTME: Package documentation for the low-level PCM backend
// ABOUTME: Describes the duplex worker, ring buffer and channel contract
// Package pcm is the AAL backend that drives a PCM channel directly.
//
// A player queues LPCM bytes into a ring buffer with Write. One worker
// goroutine per session waits for the channel to become readable, writable
// or to report an event, moves one fragment per pass and reports through the
// listener. The worker ends on end of stream, on a stop request or on a
// channel error; it flushes the channel and calls OnStop exactly once.
package pcm
