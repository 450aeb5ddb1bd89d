// ABOUTME: Streams LPCM through the write path of an AAL playback module
// ABOUTME: Feeds a generated tone or a raw S16LE file, paced by OnDataRequested
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Resonate-Protocol/resonate-aal/internal/config"
	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/input"
	"github.com/Resonate-Protocol/resonate-aal/pkg/modules"
)

// chunkMs is the length of each Write
const chunkMs = 20

func main() {
	envFile := flag.String("env", ".env", "Optional .env file")
	moduleName := flag.String("module", "", "Backend module name (default: first with LPCM playback)")
	device := flag.String("device", "", "Output device")
	rate := flag.Int("rate", aal.AVSSampleRate, "Sample rate in Hz")
	channels := flag.Int("channels", aal.AVSChannels, "Channel count")
	tone := flag.Float64("tone", input.DefaultToneFrequency, "Tone frequency in Hz when no -in file is given")
	duration := flag.Duration("duration", 3*time.Second, "Tone length")
	in := flag.String("in", "", "Raw S16LE file to stream instead of a tone")
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

	src, err := openSource(*in, *tone, *duration, *rate, *channels)
	if err != nil {
		log.Fatalf("Source error: %v", err)
	}

	layer := aal.NewLayer(modules.Default())
	id, err := modules.Resolve(layer, cfg.Module, aal.CapLPCMPlayback)
	if err != nil {
		log.Fatalf("No module: %v", err)
	}

	requested := make(chan struct{}, 1)
	stopped := make(chan aal.Status, 1)
	listener := &aal.Listener{
		OnDataRequested: func(any) {
			select {
			case requested <- struct{}{}:
			default:
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

	h := layer.PlayerCreate(&aal.Attributes{
		ModuleID: id,
		Name:     "aal-stream",
		Device:   cfg.Device,
		Listener: listener,
	}, &params)
	if h == nil {
		log.Fatalf("Failed to create a %s player", layer.Name(id))
	}
	defer layer.PlayerDestroy(h)

	layer.PlayerSetVolume(h, cfg.Volume)
	layer.PlayerPlay(h)

	format := audio.Format{Codec: "pcm", SampleRate: *rate, Channels: *channels, BitDepth: 16}
	chunk := make([]byte, int(format.BytesPerMillisecond()*chunkMs))
	written := 0

	for {
		n, err := io.ReadFull(src, chunk)
		if n > 0 {
			if !push(layer, h, chunk[:n], requested, stopped) {
				return
			}
			written += n
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}
	}

	layer.PlayerNotifyEndOfStream(h)
	status := <-stopped
	fmt.Printf("Streamed %d bytes through %s: %s\n", written, layer.Name(id), status)
}

// push retries a write until the backend accepts it; false means playback ended
func push(layer *aal.Layer, h aal.Handle, data []byte, requested <-chan struct{}, stopped <-chan aal.Status) bool {
	for {
		n := layer.PlayerWrite(h, data)
		switch {
		case n < 0:
			log.Printf("Write rejected")
			return false
		case n >= int64(len(data)):
			return true
		case n > 0:
			data = data[n:]
			continue
		}

		select {
		case <-requested:
		case status := <-stopped:
			log.Printf("Playback stopped: %s", status)
			return false
		case <-time.After(chunkMs * time.Millisecond):
		}
	}
}

// openSource returns the raw file, or a tone rendered to S16LE bytes
func openSource(path string, hz float64, d time.Duration, rate, channels int) (io.Reader, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	gen := input.NewTone(hz, false)
	if _, err := gen.Open(rate, channels); err != nil {
		return nil, err
	}
	defer gen.Close()

	samples := make([]int16, int(d.Seconds()*float64(rate))*channels)
	if _, err := gen.Read(samples); err != nil {
		return nil, fmt.Errorf("tone: %w", err)
	}
	return bytes.NewReader(audio.Int16ToBytes(samples)), nil
}
