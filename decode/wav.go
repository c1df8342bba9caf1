package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrNotWav = errors.New("not a wav file")

// memSource serves a fully decoded clip through the Source interface.
type memSource struct {
	data       []float32
	pos        int
	sampleRate int
	channels   int
}

func (s *memSource) SampleRate() int { return s.sampleRate }
func (s *memSource) Channels() int   { return s.channels }
func (s *memSource) Close() error    { return nil }

func (s *memSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(dst, s.data[s.pos:])
	s.pos += n
	return n, nil
}

type WavDecoder struct{}

// Decode reads the whole stream up front; wav parsing needs seeking and
// ambient clips are preloaded anyway.
func (WavDecoder) Decode(r io.Reader) (Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return nil, ErrNotWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	return &memSource{
		data:       floatSamples(buf, bitDepth),
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
	}, nil
}

// floatSamples normalizes integer PCM to float32 in [-1,1].
func floatSamples(buf *audio.IntBuffer, bitDepth int) []float32 {
	scale := float32(int64(1) << (bitDepth - 1))
	data := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float32(v) / scale
	}
	return data
}
