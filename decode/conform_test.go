package decode

import (
	"errors"
	"testing"
)

func constClip(v float32, frames, rate, channels int) *Clip {
	data := make([]float32, frames*channels)
	for i := range data {
		data[i] = v
	}
	return &Clip{Data: data, Rate: rate, Channels: channels}
}

func TestConformNoop(t *testing.T) {
	in := constClip(0.25, 441, 44100, 2)
	out, err := Conform(in, 44100, 2)
	if err != nil {
		t.Fatalf("conform: %v", err)
	}
	if out != in {
		t.Fatal("expected clip to be returned unchanged")
	}
}

func TestConformMonoToStereo(t *testing.T) {
	in := &Clip{Data: []float32{0.1, 0.2, 0.3}, Rate: 44100, Channels: 1}
	out, err := Conform(in, 44100, 2)
	if err != nil {
		t.Fatalf("conform: %v", err)
	}
	want := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
	if len(out.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(out.Data), len(want))
	}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Fatalf("sample %d: got %f, want %f", i, out.Data[i], want[i])
		}
	}
}

func TestConformStereoToMonoAverages(t *testing.T) {
	in := &Clip{Data: []float32{0.2, 0.4, -0.2, -0.4}, Rate: 44100, Channels: 2}
	out, err := Conform(in, 44100, 1)
	if err != nil {
		t.Fatalf("conform: %v", err)
	}
	want := []float32{0.3, -0.3}
	for i := range want {
		if diff := out.Data[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: got %f, want %f", i, out.Data[i], want[i])
		}
	}
}

func TestConformUpsampleLength(t *testing.T) {
	in := constClip(0.5, 1000, 22050, 1)
	out, err := Conform(in, 44100, 1)
	if err != nil {
		t.Fatalf("conform: %v", err)
	}
	if f := out.Frames(); f < 1990 || f > 2010 {
		t.Fatalf("got %d frames, want ~2000", f)
	}
	// A constant signal must stay constant through interpolation.
	for i, v := range out.Data {
		if diff := v - 0.5; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("sample %d drifted: %f", i, v)
		}
	}
}

func TestConformDownsampleLength(t *testing.T) {
	in := constClip(0.5, 4410, 44100, 2)
	out, err := Conform(in, 22050, 2)
	if err != nil {
		t.Fatalf("conform: %v", err)
	}
	if f := out.Frames(); f < 2195 || f > 2215 {
		t.Fatalf("got %d frames, want ~2205", f)
	}
}

func TestConformEmptyClip(t *testing.T) {
	if _, err := Conform(&Clip{Rate: 44100, Channels: 2}, 44100, 2); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip, got %v", err)
	}
}

func TestCubicInterpolateEndpoints(t *testing.T) {
	if v := cubicInterpolate(0, 1, 2, 3, 0); v != 1 {
		t.Fatalf("x=0: got %f, want 1", v)
	}
	if v := cubicInterpolate(0, 1, 2, 3, 1); v != 2 {
		t.Fatalf("x=1: got %f, want 2", v)
	}
}
