// ABOUTME: Shared pipeline state machine
// ABOUTME: Steps through states one at a time, prerolling asynchronously into PAUSED
package media

import (
	"log"
	"sync"
	"time"
)

// ClockTimeNone makes GetState wait for a transition to finish without a deadline
const ClockTimeNone time.Duration = -1

// elementHooks are the per-transition actions of a concrete pipeline
type elementHooks interface {
	// setup runs on NULL -> READY
	setup() error
	// activate prerolls on READY -> PAUSED, off the caller's goroutine
	activate() error
	// play runs on PAUSED -> PLAYING
	play() error
	// pause runs on PLAYING -> PAUSED
	pause() error
	// deactivate runs on PAUSED -> READY and must stop streaming goroutines
	deactivate()
	// teardown runs on READY -> NULL
	teardown()
}

// core implements SetState/GetState for a pipeline made of elementHooks
type core struct {
	name  string
	bus   *Bus
	hooks elementHooks

	// transition serializes state changes; an async preroll holds it until done
	transition sync.Mutex

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	pending State
	changed chan struct{}
	closed  bool
}

func newCore(name string, hooks elementHooks) *core {
	c := &core{
		name:    name,
		bus:     NewBus(),
		hooks:   hooks,
		state:   Null,
		pending: VoidPending,
		changed: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Name returns the pipeline name used as the source of its messages
func (c *core) Name() string { return c.name }

// Bus returns the pipeline bus
func (c *core) Bus() *Bus { return c.bus }

// SetState moves the pipeline toward target one state at a time.
// READY -> PAUSED completes asynchronously and returns StateChangeAsync.
func (c *core) SetState(target State) StateChangeReturn {
	if target == VoidPending {
		return StateChangeFailure
	}

	c.transition.Lock()

	c.mu.Lock()
	cur := c.state
	if c.closed && target != Null {
		c.mu.Unlock()
		c.transition.Unlock()
		return StateChangeFailure
	}
	if cur == target {
		c.mu.Unlock()
		c.transition.Unlock()
		return StateChangeSuccess
	}
	c.pending = target
	c.mu.Unlock()

	for cur != target {
		next := step(cur, target)
		if cur == Ready && next == Paused {
			go c.preroll(target)
			return StateChangeAsync
		}
		if err := c.change(cur, next, target); err != nil {
			log.Printf("%s: state change %s -> %s failed: %v", c.name, cur, next, err)
			c.finish()
			c.transition.Unlock()
			return StateChangeFailure
		}
		cur = next
	}

	c.finish()
	c.transition.Unlock()
	return StateChangeSuccess
}

// preroll completes READY -> PAUSED and continues toward target.
// It owns c.transition, taken by SetState.
func (c *core) preroll(target State) {
	defer c.transition.Unlock()

	if err := c.hooks.activate(); err != nil {
		c.bus.Post(&Message{Type: MessageError, Source: c.name, Err: err})
		c.finish()
		return
	}
	c.commit(Ready, Paused, target)

	cur := Paused
	for cur != target {
		next := step(cur, target)
		if err := c.change(cur, next, target); err != nil {
			log.Printf("%s: state change %s -> %s failed: %v", c.name, cur, next, err)
			break
		}
		cur = next
	}
	c.finish()
}

// change runs the hook for one step and records it
func (c *core) change(old, next, target State) error {
	var err error
	switch {
	case old == Null && next == Ready:
		err = c.hooks.setup()
	case old == Paused && next == Playing:
		err = c.hooks.play()
	case old == Playing && next == Paused:
		err = c.hooks.pause()
	case old == Paused && next == Ready:
		c.hooks.deactivate()
	case old == Ready && next == Null:
		c.hooks.teardown()
	}
	if err != nil {
		return err
	}
	c.commit(old, next, target)
	return nil
}

// commit stores the new state and posts the state-changed message
func (c *core) commit(old, cur, target State) {
	pending, following := VoidPending, VoidPending
	if cur != target {
		pending = target
		following = step(cur, target)
	}

	c.mu.Lock()
	c.state = cur
	c.signal()
	c.mu.Unlock()

	c.bus.Post(newStateChanged(c.name, old, cur, pending, following))
}

// finish clears the pending state
func (c *core) finish() {
	c.mu.Lock()
	c.pending = VoidPending
	c.signal()
	c.mu.Unlock()
}

// signal wakes GetState and streaming goroutines (must hold c.mu)
func (c *core) signal() {
	close(c.changed)
	c.changed = make(chan struct{})
	c.cond.Broadcast()
}

// GetState waits up to timeout for a pending transition and reports the
// current and pending states. A negative timeout waits indefinitely.
func (c *core) GetState(timeout time.Duration) (StateChangeReturn, State, State) {
	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		c.mu.Lock()
		cur, pending, changed := c.state, c.pending, c.changed
		c.mu.Unlock()

		if pending == VoidPending {
			return StateChangeSuccess, cur, VoidPending
		}

		select {
		case <-changed:
		case <-deadline:
			return StateChangeAsync, cur, pending
		}
	}
}

// current returns the committed state
func (c *core) current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// waitPlaying blocks until the pipeline is PLAYING or cancelled reports true.
// cancelled is evaluated with c.mu held. It returns false when cancelled.
func (c *core) waitPlaying(cancelled func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if cancelled() {
			return false
		}
		if c.state == Playing {
			return true
		}
		c.cond.Wait()
	}
}

// wake rouses goroutines blocked in waitPlaying or waitUntil after their
// cancellation condition changed (must hold c.mu)
func (c *core) wake() {
	c.cond.Broadcast()
}

// waitUntil blocks until done reports true; done is evaluated with c.mu held
func (c *core) waitUntil(done func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !done() {
		c.cond.Wait()
	}
}

// Close drives the pipeline to NULL and rejects later transitions
func (c *core) Close() error {
	c.SetState(Null)

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
