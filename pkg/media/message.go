// ABOUTME: Bus message types posted by pipelines
// ABOUTME: Error, EOS, stream start and state change notifications
package media

import "fmt"

// MessageType identifies a bus message
type MessageType int

const (
	MessageError MessageType = iota
	MessageEOS
	MessageStreamStart
	MessageStateChanged
	MessageBuffering
	MessageDurationChanged
	MessageStreamStatus
)

func (t MessageType) String() string {
	switch t {
	case MessageError:
		return "error"
	case MessageEOS:
		return "eos"
	case MessageStreamStart:
		return "stream-start"
	case MessageStateChanged:
		return "state-changed"
	case MessageBuffering:
		return "buffering"
	case MessageDurationChanged:
		return "duration-changed"
	case MessageStreamStatus:
		return "stream-status"
	default:
		return "unknown"
	}
}

// StreamStatus describes streaming goroutine lifecycle events
type StreamStatus int

const (
	StreamStatusCreate StreamStatus = iota
	StreamStatusEnter
	StreamStatusLeave
)

func (s StreamStatus) String() string {
	switch s {
	case StreamStatusCreate:
		return "create"
	case StreamStatusEnter:
		return "enter"
	case StreamStatusLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Message is a notification posted on a pipeline bus
type Message struct {
	Type MessageType

	// Source names the element that posted the message
	Source string

	// Err is set for MessageError
	Err error

	// Old, New and Pending are set for MessageStateChanged. Next is the
	// state the element moves to after New while a transition is in progress.
	Old     State
	New     State
	Pending State
	Next    State

	// Percent is set for MessageBuffering
	Percent int

	// Status and Owner are set for MessageStreamStatus
	Status StreamStatus
	Owner  string
}

func (m *Message) String() string {
	switch m.Type {
	case MessageError:
		return fmt.Sprintf("%s: error: %v", m.Source, m.Err)
	case MessageStateChanged:
		return fmt.Sprintf("%s: state-changed old=%s new=%s pending=%s next=%s",
			m.Source, m.Old, m.New, m.Pending, m.Next)
	case MessageBuffering:
		return fmt.Sprintf("%s: buffering %d%%", m.Source, m.Percent)
	case MessageStreamStatus:
		return fmt.Sprintf("%s: stream-status %s owner=%s", m.Source, m.Status, m.Owner)
	default:
		return fmt.Sprintf("%s: %s", m.Source, m.Type)
	}
}

func newStateChanged(src string, old, cur, pending, next State) *Message {
	return &Message{Type: MessageStateChanged, Source: src, Old: old, New: cur, Pending: pending, Next: next}
}
