package audio

// RenderCallback fills dst with interleaved float32 samples. dst holds
// frames*channels values and must be written completely; silence is zeros.
type RenderCallback func(dst []float32, frames uint32)

type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewPlayback(device *DeviceInfo, config PlaybackConfig, render RenderCallback) (PlaybackDevice, error)
	Close()
}

type PlaybackDevice interface {
	Start() error
	Stop()
	Close()
	DeviceName() string
}
