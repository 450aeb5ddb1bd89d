// ABOUTME: Entry point for the AAL player
// ABOUTME: Plays a URI through a module chosen by name or capability, with a TUI
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-aal/internal/config"
	"github.com/Resonate-Protocol/resonate-aal/internal/ui"
	"github.com/Resonate-Protocol/resonate-aal/internal/version"
	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-aal/pkg/modules"
)

var (
	envFile    = flag.String("env", ".env", "Optional .env file")
	moduleName = flag.String("module", "", "Backend module name (default: first with URL playback)")
	device     = flag.String("device", "", "Output device (default, malgo, portaudio, null)")
	volume     = flag.Float64("volume", -1, "Initial volume in [0, 1]")
	logLevel   = flag.String("log-level", "", "Minimum AAL log level (verbose, info, warn, error)")
	logFile    = flag.String("log-file", "", "Log file path (default aal-player.log)")
	list       = flag.Bool("list", false, "List modules and exit")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs = flag.Bool("stream-logs", false, "Alias for -no-tui")
)

// playerEvent is a listener callback forwarded to the main loop
type playerEvent struct {
	started bool
	status  aal.Status
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file|url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := applyFlags(&cfg); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	layer := aal.NewLayer(modules.Default())
	if *list {
		listModules(layer)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	uri := flag.Arg(0)

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	aal.SetLogFunc(func(_ aal.LogLevel, line string) { log.Print(line) })
	aal.SetLogLevel(cfg.LogLevel)

	log.Printf("Starting %s %s", version.Product, version.Version)

	id, err := modules.Resolve(layer, cfg.Module, aal.CapURLPlayback)
	if err != nil {
		log.Fatalf("No module: %v", err)
	}
	if !layer.Initialize(id) {
		log.Fatalf("Module %s failed to initialize", layer.Name(id))
	}
	defer layer.Deinitialize(id)

	events := make(chan playerEvent, 16)
	post := func(ev playerEvent) {
		select {
		case events <- ev:
		default:
			log.Printf("Dropped player event %+v", ev)
		}
	}
	listener := &aal.Listener{
		OnStart: func(any) { post(playerEvent{started: true}) },
		OnStop:  func(status aal.Status, _ any) { post(playerEvent{status: status}) },
	}

	h := layer.PlayerCreate(&aal.Attributes{
		ModuleID: id,
		Device:   cfg.Device,
		URI:      uri,
		Listener: listener,
	}, nil)
	if h == nil {
		log.Fatalf("Failed to create a %s player for %s", layer.Name(id), uri)
	}
	defer layer.PlayerDestroy(h)

	var tuiProg *tea.Program
	var controls *ui.Controls
	if useTUI {
		controls = ui.NewControls()
		tuiProg = ui.Run(controls, int(cfg.Volume*100))
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		defer tuiProg.Quit()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	status := ui.StatusMsg{Module: layer.Name(id), URI: uri}
	if format, err := probe(uri); err == nil {
		status.Codec = format.Codec
		status.SampleRate = format.SampleRate
		status.Channels = format.Channels
		status.BitDepth = format.BitDepth
	}
	updateTUI(status)

	layer.PlayerSetVolume(h, cfg.Volume)
	layer.PlayerPlay(h)

	p := &player{layer: layer, h: h, update: updateTUI}
	p.run(events, controls, !useTUI)

	log.Printf("Player stopped")
}

// applyFlags lets explicitly set flags override the configuration
func applyFlags(cfg *config.Config) error {
	if *moduleName != "" {
		cfg.Module = *moduleName
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		level, err := aal.ParseLogLevel(*logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if *volume >= 0 {
		if *volume > 1 {
			return fmt.Errorf("volume %v is outside [0, 1]", *volume)
		}
		cfg.Volume = *volume
	}
	return nil
}

func listModules(layer *aal.Layer) {
	for id := 0; id < layer.Count(); id++ {
		fmt.Printf("%d  %-10s %s\n", id, layer.Name(id), layer.Capabilities(id))
	}
}

// probe reads the format of a local file for display
func probe(uri string) (audio.Format, error) {
	path := strings.TrimPrefix(uri, "file://")
	if strings.Contains(path, "://") {
		return audio.Format{}, fmt.Errorf("not a local file: %s", uri)
	}
	f, err := os.Open(path)
	if err != nil {
		return audio.Format{}, err
	}
	defer f.Close()

	src, err := decode.Open(f)
	if err != nil {
		return audio.Format{}, err
	}
	defer src.Close()
	return src.Format(), nil
}

// player drives one handle from listener events and TUI commands
type player struct {
	layer  *aal.Layer
	h      aal.Handle
	update func(ui.StatusMsg)
	state  string
}

// run returns on quit, on a signal, or at the end of the stream when exitAtEnd
func (p *player) run(events <-chan playerEvent, controls *ui.Controls, exitAtEnd bool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	// Runtime stats are expensive; sample them less often
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	var commands <-chan any
	var quit <-chan struct{}
	if controls != nil {
		commands = controls.Commands
		quit = controls.Quit
	}

	for {
		select {
		case ev := <-events:
			if p.handleEvent(ev) && exitAtEnd {
				return
			}
		case cmd := <-commands:
			p.handleCommand(cmd)
		case <-ticker.C:
			p.update(ui.StatusMsg{
				Progress: true,
				Position: p.layer.PlayerPosition(p.h),
				Duration: p.layer.PlayerDuration(p.h),
				Buffered: p.layer.PlayerBytesBuffered(p.h),
			})
		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			p.update(ui.StatusMsg{
				Goroutines: runtime.NumGoroutine(),
				MemAlloc:   m.Alloc,
				MemSys:     m.Sys,
			})
		case <-quit:
			log.Printf("Received quit signal from TUI")
			return
		case <-sigChan:
			log.Printf("Shutdown signal received")
			return
		}
	}
}

// handleEvent reports whether playback has finished
func (p *player) handleEvent(ev playerEvent) bool {
	if ev.started {
		p.setState("playing", "")
		return false
	}

	log.Printf("Playback stopped: %s", ev.status)
	switch ev.status {
	case aal.StatusPaused:
		p.setState("paused", "")
		return false
	case aal.StatusError:
		p.setState("error", "playback failed, see log")
	case aal.StatusSuccess:
		p.setState("ended", "")
	default:
		p.setState("stopped", "")
	}
	return true
}

func (p *player) setState(state, errText string) {
	p.state = state
	p.update(ui.StatusMsg{State: state, Err: errText})
}

func (p *player) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case ui.VolumeCmd:
		log.Printf("Volume change: %d%%, muted=%v", c.Volume, c.Muted)
		p.layer.PlayerSetVolume(p.h, float64(c.Volume)/100)
		p.layer.PlayerSetMute(p.h, c.Muted)
	case ui.PauseCmd:
		if p.state == "playing" {
			p.layer.PlayerPause(p.h)
		} else {
			p.layer.PlayerPlay(p.h)
		}
	case ui.SeekCmd:
		p.layer.PlayerSeek(p.h, c.PositionMs)
	}
}
