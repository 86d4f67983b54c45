//go:build !linux

package recorder

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"
)

// malgoSource captures through miniaudio (CoreAudio, WASAPI).
type malgoSource struct {
	ctx        *malgo.AllocatedContext
	sampleRate int
	channels   int
	deviceID   *malgo.DeviceID
	device     *malgo.Device
}

func openPlatformSource(sampleRate, channels int, device string) (pcmSource, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	src := &malgoSource{ctx: ctx, sampleRate: sampleRate, channels: channels}
	if id, err := hex.DecodeString(device); err == nil && len(id) > 0 {
		var devID malgo.DeviceID
		copy(devID[:], id)
		src.deviceID = &devID
	}
	return src, nil
}

func (m *malgoSource) Start(onSamples func([]int16)) error {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(m.channels) //nolint:gosec // validated 1..2 by config
	cfg.SampleRate = uint32(m.sampleRate)     //nolint:gosec // validated positive by config
	if m.deviceID != nil {
		cfg.Capture.DeviceID = m.deviceID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, _ uint32) {
			samples := make([]int16, len(data)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:])) //nolint:gosec // reinterpreting PCM bits
			}
			onSamples(samples)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("malgo device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("malgo start: %w", err)
	}
	m.device = dev
	return nil
}

func (m *malgoSource) Stop() {
	if m.device != nil {
		_ = m.device.Stop()
	}
}

func (m *malgoSource) Close() {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	_ = m.ctx.Uninit()
	m.ctx.Free()
}
