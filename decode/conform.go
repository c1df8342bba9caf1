package decode

import "fmt"

// Conform returns a clip matching the requested rate and channel count,
// resampling with Catmull-Rom cubic interpolation and averaging or
// duplicating channels as needed. The input clip is not modified.
func Conform(clip *Clip, rate, channels int) (*Clip, error) {
	if clip.Frames() == 0 {
		return nil, ErrEmptyClip
	}
	if channels < 1 || rate < 1 {
		return nil, fmt.Errorf("invalid target format: %d Hz, %d ch", rate, channels)
	}

	out := clip
	if out.Channels != channels {
		out = remix(out, channels)
	}
	if out.Rate != rate {
		out = resample(out, rate)
	}
	return out, nil
}

func remix(clip *Clip, channels int) *Clip {
	frames := clip.Frames()
	data := make([]float32, frames*channels)

	switch {
	case clip.Channels == 1:
		// Duplicate mono into every output channel.
		for f := 0; f < frames; f++ {
			for c := 0; c < channels; c++ {
				data[f*channels+c] = clip.Data[f]
			}
		}
	case channels == 1:
		inv := float32(1.0) / float32(clip.Channels)
		for f := 0; f < frames; f++ {
			var sum float32
			base := f * clip.Channels
			for c := 0; c < clip.Channels; c++ {
				sum += clip.Data[base+c]
			}
			data[f] = sum * inv
		}
	default:
		// Arbitrary N->M: average down or repeat the last channel up.
		for f := 0; f < frames; f++ {
			for c := 0; c < channels; c++ {
				src := c
				if src >= clip.Channels {
					src = clip.Channels - 1
				}
				data[f*channels+c] = clip.Data[f*clip.Channels+src]
			}
		}
	}

	return &Clip{Data: data, Rate: clip.Rate, Channels: channels}
}

func resample(clip *Clip, rate int) *Clip {
	srcFrames := clip.Frames()
	ch := clip.Channels
	ratio := float64(clip.Rate) / float64(rate)
	dstFrames := int(float64(srcFrames) / ratio)
	if dstFrames < 1 {
		dstFrames = 1
	}

	frame := func(i, c int) float32 {
		if i < 0 {
			i = 0
		}
		if i >= srcFrames {
			i = srcFrames - 1
		}
		return clip.Data[i*ch+c]
	}

	data := make([]float32, dstFrames*ch)
	for f := 0; f < dstFrames; f++ {
		pos := float64(f) * ratio
		i := int(pos)
		x := float32(pos - float64(i))
		for c := 0; c < ch; c++ {
			data[f*ch+c] = cubicInterpolate(
				frame(i-1, c), frame(i, c), frame(i+1, c), frame(i+2, c), x)
		}
	}

	return &Clip{Data: data, Rate: rate, Channels: ch}
}

// cubicInterpolate evaluates a Catmull-Rom spline at fractional position x
// between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1
	return a0*x*x*x + a1*x*x + a2*x + a3
}
