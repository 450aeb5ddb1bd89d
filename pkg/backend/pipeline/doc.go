// ABOUTME: Package documentation for the pipeline backend
// ABOUTME: Explains how pipeline messages become listener callbacks
// Package pipeline is the AAL backend built on the media pipeline framework.
//
// Every player or recorder owns one pipeline and one loop goroutine. The loop
// drains the pipeline bus and tasks posted by streaming goroutines, and
// reduces the stream of state changes to OnStart, OnStop and the data
// callbacks. Only the loop touches the logical state of a session.
//
// Listener callbacks run on the loop goroutine. Destroy joins the loop, so it
// must not be called from inside a callback.
package pipeline
