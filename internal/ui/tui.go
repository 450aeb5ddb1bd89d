// ABOUTME: TUI initialization and the command channel to the player
// ABOUTME: Wraps the bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeCmd sets the volume in percent and the mute flag
type VolumeCmd struct {
	Volume int
	Muted  bool
}

// PauseCmd toggles between playing and paused
type PauseCmd struct{}

// SeekCmd moves the play head
type SeekCmd struct {
	PositionMs int64
}

// Controls carries commands from the TUI to the player
type Controls struct {
	Commands chan any
	Quit     chan struct{}
}

// NewControls creates a new command channel pair
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan any, 10),
		Quit:     make(chan struct{}),
	}
}

// send drops the command when the player is not keeping up
func (c *Controls) send(cmd any) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case <-c.Quit:
	default:
		close(c.Quit)
	}
}

// NewModel creates a new TUI model; controls may be nil
func NewModel(controls *Controls, volume int) Model {
	return Model{
		volume:   volume,
		state:    "stopped",
		duration: -1,
		controls: controls,
	}
}

// Run creates the TUI program; the caller runs it
func Run(controls *Controls, volume int) *tea.Program {
	return tea.NewProgram(NewModel(controls, volume), tea.WithAltScreen())
}
