// ABOUTME: Bubbletea model for the AAL player TUI
// ABOUTME: Renders playback state and turns key presses into player commands
package ui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// seekStepMs is how far left/right move the play head
const seekStepMs = 5000

// Model represents the TUI state
type Model struct {
	// Session
	module string
	uri    string

	// Stream
	codec      string
	sampleRate int
	channels   int
	bitDepth   int

	// Playback
	state    string
	position int64
	duration int64
	buffered int64
	volume   int
	muted    bool
	lastErr  string

	// Runtime
	goroutines int
	memAlloc   uint64
	memSys     uint64

	showDebug bool

	width  int
	height int

	controls *Controls
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreamInfo()
	s += m.renderControls()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the module and play state
func (m Model) renderHeader() string {
	stateIcon := "■"
	switch m.state {
	case "playing":
		stateIcon = "▶"
	case "paused":
		stateIcon = "⏸"
	case "error":
		stateIcon = "✗"
	}

	status := m.state
	if m.state == "error" && m.lastErr != "" {
		status = "error: " + m.lastErr
	}

	return fmt.Sprintf(`┌─ AAL Player ─────────────────────────────────────────┐
│ Module: %-45s │
│ State:  %s %-43s │
├──────────────────────────────────────────────────────┤
`, truncate(m.module, 45), stateIcon, truncate(status, 43))
}

// renderStreamInfo renders the resource and its format
func (m Model) renderStreamInfo() string {
	if m.uri == "" {
		return "│ No stream                                            │\n"
	}

	s := "│ Now Playing:                                         │\n"
	s += fmt.Sprintf("│   %-50s │\n", truncate(filepath.Base(m.uri), 50))
	s += fmt.Sprintf("│   %s / %s%-34s │\n", formatMs(m.position), formatMs(m.duration), "")

	if m.codec != "" {
		s += fmt.Sprintf("│ Format: %s %dHz %s %d-bit%-17s │\n",
			m.codec, m.sampleRate, channelName(m.channels), m.bitDepth, "")
	}
	return s
}

// renderControls renders volume and buffer status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Buffer: %d bytes%-31s │\n",
		volumeBar, m.volume, muteIcon, "",
		m.buffered, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Pause ←/→:Seek ↑/↓:Volume m:Mute d:Debug q:Quit│
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders runtime information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Goroutines: %-38d │
│   Heap: %d KiB (sys %d KiB)%-20s │
`, m.goroutines, m.memAlloc/1024, m.memSys/1024, "")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.controls.send(VolumeCmd{Volume: m.volume, Muted: m.muted})
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.controls.send(VolumeCmd{Volume: m.volume, Muted: m.muted})
		}
	case "m":
		m.muted = !m.muted
		m.controls.send(VolumeCmd{Volume: m.volume, Muted: m.muted})
	case " ", "p":
		m.controls.send(PauseCmd{})
	case "left":
		m.controls.send(SeekCmd{PositionMs: max(m.position-seekStepMs, 0)})
	case "right":
		m.controls.send(SeekCmd{PositionMs: m.position + seekStepMs})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Module != "" {
		m.module = msg.Module
	}
	if msg.URI != "" {
		m.uri = msg.URI
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.State != "" {
		m.state = msg.State
		m.lastErr = msg.Err
	}
	if msg.Progress {
		m.position = msg.Position
		m.duration = msg.Duration
		m.buffered = msg.Buffered
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
		m.memSys = msg.MemSys
	}
}

// StatusMsg updates TUI state. Zero fields leave the model unchanged.
type StatusMsg struct {
	Module     string
	URI        string
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	State      string
	Err        string

	// Progress marks Position, Duration and Buffered as set
	Progress bool
	Position int64
	Duration int64
	Buffered int64

	Volume     int
	Goroutines int
	MemAlloc   uint64
	MemSys     uint64
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

// formatMs renders m:ss, or --:-- when unknown
func formatMs(ms int64) string {
	if ms < 0 {
		return "--:--"
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
