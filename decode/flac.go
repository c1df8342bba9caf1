package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

type flacSource struct {
	stream     *flac.Stream
	sampleRate int
	channels   int
	scale      float32

	pending []float32 // interleaved leftovers from the last parsed frame
}

func (s *flacSource) SampleRate() int { return s.sampleRate }
func (s *flacSource) Channels() int   { return s.channels }
func (s *flacSource) Close() error    { return s.stream.Close() }

func (s *flacSource) ReadSamples(dst []float32) (int, error) {
	total := 0
	for total < len(dst) {
		if len(s.pending) > 0 {
			n := copy(dst[total:], s.pending)
			s.pending = s.pending[n:]
			total += n
			continue
		}
		f, err := s.stream.ParseNext()
		if err != nil {
			if total > 0 && err == io.EOF {
				return total, nil
			}
			return total, err
		}
		nframes := f.Subframes[0].NSamples
		s.pending = make([]float32, 0, nframes*s.channels)
		for i := 0; i < nframes; i++ {
			for ch := 0; ch < s.channels; ch++ {
				s.pending = append(s.pending, float32(f.Subframes[ch].Samples[i])/s.scale)
			}
		}
	}
	return total, nil
}

type FlacDecoder struct{}

func (FlacDecoder) Decode(r io.Reader) (Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}
	info := stream.Info
	return &flacSource{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}
