package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// makeWav builds a canonical 44-byte-header PCM16 wav from float samples.
func makeWav(samples []float32, rate, channels int) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		v := int16(s * 32767)
		binary.Write(&pcm, binary.LittleEndian, v)
	}

	var buf bytes.Buffer
	dataLen := uint32(pcm.Len())
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func sine(frames int, freq float64, rate, channels int) []float32 {
	out := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(f)/float64(rate)))
		for c := 0; c < channels; c++ {
			out[f*channels+c] = v
		}
	}
	return out
}

func TestWavDecodeRoundTrip(t *testing.T) {
	want := sine(4410, 440, 44100, 2)
	raw := makeWav(want, 44100, 2)

	src, err := (WavDecoder{}).Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Fatalf("got %d Hz %d ch", src.SampleRate(), src.Channels())
	}

	clip, err := ReadAll(src)
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	if len(clip.Data) != len(want) {
		t.Fatalf("got %d samples, want %d", len(clip.Data), len(want))
	}
	for i := range want {
		if diff := clip.Data[i] - want[i]; diff > 0.001 || diff < -0.001 {
			t.Fatalf("sample %d: got %f, want %f", i, clip.Data[i], want[i])
		}
	}
}

func TestWavDecodeRejectsGarbage(t *testing.T) {
	if _, err := (WavDecoder{}).Decode(bytes.NewReader([]byte("not a wav at all"))); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	r := Default()
	_, _, err := r.Open("ambient.xyz")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistryExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.WAV")
	if err := os.WriteFile(path, makeWav(sine(441, 440, 44100, 1), 44100, 1), 0644); err != nil {
		t.Fatal(err)
	}

	src, closer, err := Default().Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closer.Close()
	defer src.Close()
	if src.Channels() != 1 {
		t.Fatalf("got %d channels, want 1", src.Channels())
	}
}

func TestLoadConformsToEngineFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mono22k.wav")
	if err := os.WriteFile(path, makeWav(sine(2205, 220, 22050, 1), 22050, 1), 0644); err != nil {
		t.Fatal(err)
	}

	clip, err := Default().Load(path, 44100, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if clip.Rate != 44100 || clip.Channels != 2 {
		t.Fatalf("got %d Hz %d ch", clip.Rate, clip.Channels)
	}
	// 0.1s at source rate should stay ~0.1s after resampling.
	if f := clip.Frames(); f < 4300 || f > 4500 {
		t.Fatalf("got %d frames, want ~4410", f)
	}
}

func TestReadAllEmptyStream(t *testing.T) {
	src := &memSource{sampleRate: 44100, channels: 2}
	if _, err := ReadAll(src); !errors.Is(err, ErrEmptyClip) {
		t.Fatalf("expected ErrEmptyClip, got %v", err)
	}
}

func TestMemSourcePartialReads(t *testing.T) {
	src := &memSource{data: sine(100, 440, 44100, 1), sampleRate: 44100, channels: 1}
	buf := make([]float32, 33)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if total != 100 {
		t.Fatalf("got %d samples, want 100", total)
	}
}
