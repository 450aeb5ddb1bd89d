// ABOUTME: Miniaudio PCM channel built on malgo
// ABOUTME: The device callback drains or fills the shared device buffer
package pcm

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/Resonate-Protocol/resonate-aal/pkg/aal"
)

// MalgoChannel is one direction of a miniaudio device with S16 samples
type MalgoChannel struct {
	*deviceBuffer
	cfg ChannelConfig

	devMu    sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	started  bool
}

// OpenMalgo initializes the default miniaudio device for cfg.Direction
func OpenMalgo(cfg ChannelConfig) (Channel, error) {
	c := &MalgoChannel{deviceBuffer: newDeviceBuffer(cfg), cfg: cfg}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	var deviceConfig malgo.DeviceConfig
	if cfg.Direction == Capture {
		deviceConfig = malgo.DefaultDeviceConfig(malgo.Capture)
		deviceConfig.Capture.Format = malgo.FormatS16
		deviceConfig.Capture.Channels = uint32(cfg.Channels)
	} else {
		deviceConfig = malgo.DefaultDeviceConfig(malgo.Playback)
		deviceConfig.Playback.Format = malgo.FormatS16
		deviceConfig.Playback.Channels = uint32(cfg.Channels)
	}
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.FragmentSize / (cfg.Channels * 2))
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		if cfg.Direction == Capture {
			c.produce(pInputSamples)
			return
		}
		c.consume(pOutputSample)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to initialize %s device: %w", cfg.Direction, err)
	}

	c.malgoCtx = ctx
	c.device = device
	aal.Logf(aal.LogInfo, "pcm %s channel: %d Hz %d ch, %d byte fragments (malgo)",
		cfg.Direction, cfg.SampleRate, cfg.Channels, cfg.FragmentSize)
	return c, nil
}

// Prepare starts the device
func (c *MalgoChannel) Prepare() error {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	if c.device == nil {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	c.started = true
	return nil
}

// Flush plays out queued playback, then stops the device
func (c *MalgoChannel) Flush() error {
	c.drain(drainTimeout(c.cfg))

	c.devMu.Lock()
	defer c.devMu.Unlock()

	var err error
	if c.device != nil && c.started {
		err = c.device.Stop()
		c.started = false
	}
	c.reset()
	return err
}

// Close releases the device and its context
func (c *MalgoChannel) Close() error {
	c.close()

	c.devMu.Lock()
	defer c.devMu.Unlock()

	if c.device != nil {
		if c.started {
			c.device.Stop()
		}
		c.device.Uninit()
		c.device = nil
	}
	if c.malgoCtx != nil {
		if err := c.malgoCtx.Uninit(); err != nil {
			aal.Logf(aal.LogWarn, "malgo context uninit error: %v", err)
		}
		c.malgoCtx.Free()
		c.malgoCtx = nil
	}
	return nil
}
