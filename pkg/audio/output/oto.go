// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM through a player fed by a pipe on the shared oto context
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/Resonate-Protocol/resonate-aal/pkg/audio/encode"
	"github.com/ebitengine/oto/v3"
)

const (
	// oto allows one context per process, so every Oto output shares this format
	SharedSampleRate = 48000
	SharedChannels   = 2
)

var (
	sharedOnce   sync.Once
	sharedCtx    *oto.Context
	sharedErr    error
	sharedFormat = audio.Format{Codec: "pcm", SampleRate: SharedSampleRate, Channels: SharedChannels, BitDepth: 16}
)

// SharedContext returns the process-wide oto context, creating it on first use
func SharedContext() (*oto.Context, audio.Format, error) {
	sharedOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SharedSampleRate,
			ChannelCount: SharedChannels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			sharedErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		sharedCtx = ctx
		log.Printf("Audio context initialized: %s", sharedFormat)
	})
	return sharedCtx, sharedFormat, sharedErr
}

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	encoder    encode.Encoder
	paused     bool
	ready      bool

	// generation changes on every Flush so interrupted writes can tell
	// a flush apart from a broken pipe
	generation uint64
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Open attaches a player to the shared context; the context format wins over the request
func (o *Oto) Open(sampleRate, channels int) (audio.Format, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		return sharedFormat, nil
	}

	ctx, format, err := SharedContext()
	if err != nil {
		return audio.Format{}, err
	}

	if sampleRate != format.SampleRate || channels != format.Channels {
		log.Printf("Requested %dHz %dch, converting to shared %dHz %dch",
			sampleRate, channels, format.SampleRate, format.Channels)
	}

	encoder, err := encode.NewPCM(format)
	if err != nil {
		return audio.Format{}, err
	}

	o.otoCtx = ctx
	o.encoder = encoder
	o.newPlayer()
	o.ready = true

	return format, nil
}

// newPlayer creates a persistent player reading from a fresh pipe (must hold o.mu)
func (o *Oto) newPlayer() {
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	if !o.paused {
		o.player.Play()
	}
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int32) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return ErrNotOpen
	}
	pw := o.pipeWriter
	gen := o.generation
	encoder := o.encoder
	o.mu.Unlock()

	data, err := encoder.Encode(samples)
	if err != nil {
		return err
	}

	if _, err := pw.Write(data); err != nil {
		o.mu.Lock()
		flushed := o.generation != gen
		o.mu.Unlock()
		if flushed {
			return nil
		}
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Pause stops the player from pulling data
func (o *Oto) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.paused = true
	if o.player != nil {
		o.player.Pause()
	}
	return nil
}

// Resume restarts the player
func (o *Oto) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.paused = false
	if o.player != nil {
		o.player.Play()
	}
	return nil
}

// Flush discards queued audio by replacing the player and its pipe
func (o *Oto) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil
	}

	o.generation++
	o.closePlayer()
	o.newPlayer()
	return nil
}

// Buffered returns bytes queued inside the oto player
func (o *Oto) Buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return 0
	}
	return o.player.BufferedSize()
}

// Close releases output resources; the shared context stays alive
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.closePlayer()
	o.ready = false
	return nil
}

// closePlayer tears down the pipe and player (must hold o.mu)
func (o *Oto) closePlayer() {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
}
