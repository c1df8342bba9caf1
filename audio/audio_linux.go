//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("ambient"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	var devices []DeviceInfo
	for _, s := range sinks {
		devices = append(devices, DeviceInfo{
			ID:   s.ID(),
			Name: s.Name(),
		})
	}
	return devices, nil
}

func (p *pulseContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, render RenderCallback) (PlaybackDevice, error) {
	if render == nil {
		return nil, fmt.Errorf("pulse: nil render callback")
	}
	return &pulsePlayback{
		client: p.client,
		device: device,
		config: config,
		render: render,
	}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulsePlayback struct {
	client *pulse.Client
	device *DeviceInfo
	config PlaybackConfig
	render RenderCallback

	mu     sync.Mutex
	stream *pulse.PlaybackStream
}

func (d *pulsePlayback) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return nil
	}

	channels := int(d.config.Channels)
	reader := pulse.Float32Reader(func(out []float32) (int, error) {
		frames := len(out) / channels
		if frames == 0 {
			return 0, nil
		}
		usable := frames * channels
		d.render(out[:usable], uint32(frames))
		return usable, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(int(d.config.SampleRate)),
		pulse.PlaybackLatency(0.1),
	}
	if channels == 1 {
		opts = append(opts, pulse.PlaybackMono)
	} else {
		opts = append(opts, pulse.PlaybackStereo)
	}
	if d.device != nil {
		sink, err := d.client.SinkByID(d.device.ID)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := d.client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}
	stream.Start()
	d.stream = stream
	return nil
}

func (d *pulsePlayback) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		d.stream.Stop()
		d.stream.Close()
		d.stream = nil
	}
}

func (d *pulsePlayback) Close() {
	d.Stop()
}

func (d *pulsePlayback) DeviceName() string {
	if d.device != nil {
		return d.device.Name
	}
	return "system default"
}
