// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with a sample ring buffer drained by the device callback
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-aal/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
	ready    bool

	// Ring buffer for callback-based playback
	ringBuffer *RingBuffer
	mu         sync.Mutex
}

// RingBuffer provides thread-safe circular buffer for audio samples.
// Write blocks while the buffer is full until Read frees space or Close is called.
type RingBuffer struct {
	buffer   []int32
	readPos  int
	writePos int
	size     int
	count    int // Number of samples currently in buffer
	closed   bool
	mu       sync.Mutex
	space    *sync.Cond
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	rb := &RingBuffer{
		buffer: make([]int32, capacity),
		size:   capacity,
	}
	rb.space = sync.NewCond(&rb.mu)
	return rb
}

// Write adds all samples to the ring buffer, waiting for room as needed.
// It returns the number written, which is short only if the buffer was closed.
func (rb *RingBuffer) Write(samples []int32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for written < len(samples) {
		for rb.count == rb.size && !rb.closed {
			rb.space.Wait()
		}
		if rb.closed {
			break
		}
		for written < len(samples) && rb.count < rb.size {
			rb.buffer[rb.writePos] = samples[written]
			rb.writePos = (rb.writePos + 1) % rb.size
			rb.count++
			written++
		}
	}
	return written
}

// Read retrieves samples from the ring buffer
func (rb *RingBuffer) Read(samples []int32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := 0; i < len(samples) && rb.count > 0; i++ {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % rb.size
		rb.count--
		read++
	}

	// Zero-fill remaining if underrun
	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}

	if read > 0 {
		rb.space.Broadcast()
	}
	return read
}

// Reset drops all buffered samples
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.readPos, rb.writePos, rb.count = 0, 0, 0
	rb.space.Broadcast()
}

// Close wakes blocked writers; later writes return immediately
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.closed = true
	rb.space.Broadcast()
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// NewMalgo creates a new Malgo output
func NewMalgo() Output {
	return &Malgo{}
}

// Open initializes a 16-bit playback device in the requested format
func (m *Malgo) Open(sampleRate, channels int) (audio.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	format := audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16}

	// If already initialized with same format, reuse
	if m.device != nil && m.format == format {
		return m.format, nil
	}

	if m.device != nil {
		log.Printf("Format change detected (%s -> %s), reinitializing device", m.format, format)
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return audio.Format{}, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	// Create ring buffer (500ms capacity)
	bufferSamples := (sampleRate * channels * 500) / 1000
	m.ringBuffer = NewRingBuffer(bufferSamples)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount, channels)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return audio.Format{}, fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.format = format
	m.ready = true

	log.Printf("Audio output initialized: %s (malgo)", format)
	return format, nil
}

// Write queues audio samples for playback, blocking while the ring buffer is full
func (m *Malgo) Write(samples []int32) error {
	m.mu.Lock()
	rb := m.ringBuffer
	ready := m.ready
	m.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	rb.Write(samples)
	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32, channels int) {
	samples := make([]int32, int(frameCount)*channels)
	m.ringBuffer.Read(samples)

	for i, sample := range samples {
		sample16 := audio.SampleToInt16(sample)
		pOutput[i*2] = byte(sample16)
		pOutput[i*2+1] = byte(sample16 >> 8)
	}
}

// Pause stops the device; queued samples are kept
func (m *Malgo) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}
	return m.device.Stop()
}

// Resume restarts the device
func (m *Malgo) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}
	return m.device.Start()
}

// Flush drops queued samples
func (m *Malgo) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ringBuffer != nil {
		m.ringBuffer.Reset()
	}
	return nil
}

// Buffered returns queued bytes
func (m *Malgo) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ringBuffer == nil {
		return 0
	}
	return m.ringBuffer.Available() * 2
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.ringBuffer != nil {
		m.ringBuffer.Close()
	}
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
		m.ready = false
	}
}
