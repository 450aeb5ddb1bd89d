// ABOUTME: Records LPCM from an AAL recording module into a WAV file
// ABOUTME: Collects OnData callbacks for a fixed duration and encodes with go-audio/wav
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-aal/internal/config"
	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/modules"
)

func main() {
	envFile := flag.String("env", ".env", "Optional .env file")
	moduleName := flag.String("module", "", "Backend module name (default: first with LPCM recording)")
	device := flag.String("device", "", "Input device (default, null, tone, tone:<hz>)")
	rate := flag.Int("rate", aal.AVSSampleRate, "Sample rate in Hz")
	channels := flag.Int("channels", aal.AVSChannels, "Channel count")
	duration := flag.Duration("duration", 5*time.Second, "How long to record")
	out := flag.String("out", "recording.wav", "Output WAV file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *moduleName != "" {
		cfg.Module = *moduleName
	}
	if *device != "" {
		cfg.Device = *device
	}
	aal.SetLogFunc(func(_ aal.LogLevel, line string) { log.Print(line) })
	aal.SetLogLevel(cfg.LogLevel)

	layer := aal.NewLayer(modules.Default())
	id, err := modules.Resolve(layer, cfg.Module, aal.CapLPCMRecording)
	if err != nil {
		log.Fatalf("No module: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := newWAVWriter(f, *rate, *channels)

	chunks := make(chan []int16, 64)
	stopped := make(chan aal.Status, 1)
	listener := &aal.Listener{
		OnData: func(samples []int16, _ any) {
			select {
			case chunks <- append([]int16(nil), samples...):
			default:
				log.Printf("Writer is behind, dropped %d samples", len(samples))
			}
		},
		OnStop: func(status aal.Status, _ any) {
			select {
			case stopped <- status:
			default:
			}
		},
	}

	params := aal.DefaultLPCM()
	params.LPCM.SampleRate = *rate
	params.LPCM.Channels = *channels

	h := layer.RecorderCreate(&aal.Attributes{
		ModuleID: id,
		Name:     "aal-recorder",
		Device:   cfg.Device,
		Listener: listener,
	}, &params)
	if h == nil {
		log.Fatalf("Failed to create a %s recorder", layer.Name(id))
	}

	log.Printf("Recording %v from %s into %s", *duration, layer.Name(id), *out)
	layer.RecorderPlay(h)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	deadline := time.After(*duration)

loop:
	for {
		select {
		case samples := <-chunks:
			if err := w.write(samples); err != nil {
				log.Printf("Write failed: %v", err)
				break loop
			}
		case status := <-stopped:
			log.Printf("Recorder stopped early: %s", status)
			break loop
		case <-deadline:
			break loop
		case <-sigChan:
			log.Printf("Shutdown signal received")
			break loop
		}
	}

	layer.RecorderStop(h)
	layer.RecorderDestroy(h)

	// Destroy joins the worker, so no more data arrives
	for {
		select {
		case samples := <-chunks:
			if err := w.write(samples); err != nil {
				log.Printf("Write failed: %v", err)
			}
			continue
		default:
		}
		break
	}

	if err := w.close(); err != nil {
		log.Fatalf("Failed to finish %s: %v", *out, err)
	}
	fmt.Printf("Wrote %d frames (%v) to %s\n", w.frames, w.duration(), *out)
}

// wavWriter streams int16 chunks into a 16-bit WAV encoder
type wavWriter struct {
	enc      *wav.Encoder
	format   *goaudio.Format
	rate     int
	channels int
	frames   int
}

func newWAVWriter(f *os.File, rate, channels int) *wavWriter {
	return &wavWriter{
		enc:      wav.NewEncoder(f, rate, 16, channels, 1),
		format:   &goaudio.Format{NumChannels: channels, SampleRate: rate},
		rate:     rate,
		channels: channels,
	}
}

func (w *wavWriter) write(samples []int16) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	if err := w.enc.Write(&goaudio.IntBuffer{Format: w.format, Data: data, SourceBitDepth: 16}); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	w.frames += len(samples) / w.channels
	return nil
}

func (w *wavWriter) close() error {
	return w.enc.Close()
}

func (w *wavWriter) duration() time.Duration {
	return time.Duration(w.frames) * time.Second / time.Duration(w.rate)
}
