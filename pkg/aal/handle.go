// ABOUTME: Handle contract and the common prefix of every backend context
// ABOUTME: Base carries the listener, user data and owning module id
package aal

// Handle is a backend session returned by create and passed to every operation
type Handle interface {
	Base() *Base
}

// Base is the common prefix of every backend context. Backends hold it in a
// field and return it from their Base method.
type Base struct {
	Listener *Listener
	UserData any
	ModuleID int
}

// EmitStart calls OnStart if set
func (b *Base) EmitStart() {
	if b.Listener != nil && b.Listener.OnStart != nil {
		b.Listener.OnStart(b.UserData)
	}
}

// EmitStop calls OnStop if set
func (b *Base) EmitStop(status Status) {
	if b.Listener != nil && b.Listener.OnStop != nil {
		b.Listener.OnStop(status, b.UserData)
	}
}

// EmitData calls OnData if set
func (b *Base) EmitData(samples []int16) {
	if b.Listener != nil && b.Listener.OnData != nil {
		b.Listener.OnData(samples, b.UserData)
	}
}

// EmitDataRequested calls OnDataRequested if set
func (b *Base) EmitDataRequested() {
	if b.Listener != nil && b.Listener.OnDataRequested != nil {
		b.Listener.OnDataRequested(b.UserData)
	}
}

// EmitAlmostDone calls OnAlmostDone if set
func (b *Base) EmitAlmostDone() {
	if b.Listener != nil && b.Listener.OnAlmostDone != nil {
		b.Listener.OnAlmostDone(b.UserData)
	}
}
