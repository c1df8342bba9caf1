package audio

import "sync"

// FakeContext is an in-process engine for tests: the render callback is
// pulled on demand instead of by a hardware clock.
type FakeContext struct {
	mu      sync.Mutex
	devices []DeviceInfo
}

func NewFakeContext(devices ...DeviceInfo) *FakeContext {
	return &FakeContext{devices: devices}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]DeviceInfo(nil), f.devices...), nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, render RenderCallback) (PlaybackDevice, error) {
	name := "fake"
	if device != nil {
		name = device.Name
	}
	return &FakePlayback{
		name:     name,
		channels: int(config.Channels),
		render:   render,
	}, nil
}

type FakePlayback struct {
	name     string
	channels int
	render   RenderCallback

	mu      sync.Mutex
	started bool
}

func (d *FakePlayback) Start() error {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()
	return nil
}

func (d *FakePlayback) Stop() {
	d.mu.Lock()
	d.started = false
	d.mu.Unlock()
}

func (d *FakePlayback) Close()             { d.Stop() }
func (d *FakePlayback) DeviceName() string { return d.name }

func (d *FakePlayback) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Pull renders the next quantum synchronously and returns the samples.
// A stopped device yields silence, matching what hardware would emit.
func (d *FakePlayback) Pull(frames int) []float32 {
	out := make([]float32, frames*d.channels)
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if started {
		d.render(out, uint32(frames))
	}
	return out
}
