// ABOUTME: Malgo-based audio capture implementation
// ABOUTME: Queues miniaudio capture callbacks for blocking reads
package input

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/gen2brain/malgo"
)

// captureQueueDepth bounds how many callback periods are held before dropping
const captureQueueDepth = 64

// Malgo captures from the default miniaudio input device
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format

	chunks  chan []int16
	done    chan struct{}
	pending []int16
	dropped int
}

// NewMalgo creates a new Malgo capture input
func NewMalgo() Input {
	return &Malgo{}
}

// Open initializes and starts a 16-bit capture device
func (m *Malgo) Open(sampleRate, channels int) (audio.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return m.format, nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	m.chunks = make(chan []int16, captureQueueDepth)
	m.done = make(chan struct{})

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pInputSamples)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return audio.Format{}, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return audio.Format{}, fmt.Errorf("failed to start capture device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.format = audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}

	log.Printf("Audio input initialized: %s (malgo)", m.format)
	return m.format, nil
}

// dataCallback copies one capture period into the queue
func (m *Malgo) dataCallback(pInput []byte) {
	chunk := audio.BytesToInt16(pInput)
	select {
	case m.chunks <- chunk:
	default:
		m.dropped++
	}
}

// Read blocks until samples is full or the input is closed
func (m *Malgo) Read(samples []int16) (int, error) {
	m.mu.Lock()
	chunks, done := m.chunks, m.done
	m.mu.Unlock()

	if chunks == nil {
		return 0, ErrNotOpen
	}

	n := 0
	for n < len(samples) {
		if len(m.pending) == 0 {
			select {
			case chunk := <-chunks:
				m.pending = chunk
			case <-done:
				return n, ErrClosed
			}
		}
		c := copy(samples[n:], m.pending)
		m.pending = m.pending[c:]
		n += c
	}
	return n, nil
}

// Close stops capture
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}
	close(m.done)

	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: capture device stop error: %v", err)
	}
	m.device.Uninit()
	m.device = nil

	if err := m.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil

	if m.dropped > 0 {
		log.Printf("Audio input dropped %d capture periods", m.dropped)
	}
	return nil
}
