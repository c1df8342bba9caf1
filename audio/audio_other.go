//go:build !linux

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, render RenderCallback) (PlaybackDevice, error) {
	if render == nil {
		return nil, fmt.Errorf("malgo: nil render callback")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Playback.DeviceID = devID.Pointer()
	}

	channels := int(config.Channels)
	var scratch []float32

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			n := int(frameCount) * channels
			if cap(scratch) < n {
				scratch = make([]float32, n)
			}
			buf := scratch[:n]
			for i := range buf {
				buf[i] = 0
			}
			render(buf, frameCount)
			for i, s := range buf {
				binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}

	name := "system default"
	if device != nil {
		name = device.Name
	}
	return &malgoPlayback{device: dev, name: name}, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoPlayback struct {
	device *malgo.Device
	name   string
}

func (d *malgoPlayback) Start() error {
	return d.device.Start()
}

func (d *malgoPlayback) Stop() {
	d.device.Stop()
}

func (d *malgoPlayback) Close() {
	d.device.Uninit()
}

func (d *malgoPlayback) DeviceName() string {
	return d.name
}
