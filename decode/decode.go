// Package decode turns ambient clip files (wav, mp3, ogg, flac) into
// interleaved float32 PCM ready for the playback engine.
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrUnknownFormat = errors.New("unknown audio format")
	ErrEmptyClip     = errors.New("clip contains no samples")
)

// Source is a stream of interleaved float32 samples in [-1, 1].
type Source interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst and returns the number of float32 values
	// written (not frames). n == 0 with io.EOF means the stream is done.
	ReadSamples(dst []float32) (n int, err error)
	Close() error
}

// Decoder constructs a Source from raw file bytes.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps lowercase file extensions (without dot) to decoders.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[ext] = d
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.codecs[ext]
	return d, ok
}

// Default returns a registry with every format this build supports.
func Default() *Registry {
	r := NewRegistry()
	r.Register("wav", WavDecoder{})
	r.Register("mp3", MP3Decoder{})
	r.Register("ogg", VorbisDecoder{})
	r.Register("flac", FlacDecoder{})
	return r
}

// Clip is a fully decoded clip.
type Clip struct {
	Data     []float32 // interleaved
	Rate     int
	Channels int
}

// Frames returns the number of sample frames in the clip.
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// Open decodes the file at path using the registry, picking the decoder
// by file extension.
func (r *Registry) Open(path string) (Source, io.Closer, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	dec, ok := r.Get(ext)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return src, f, nil
}

// ReadAll drains src into a Clip.
func ReadAll(src Source) (*Clip, error) {
	buf := make([]float32, 8192)
	clip := &Clip{Rate: src.SampleRate(), Channels: src.Channels()}
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			clip.Data = append(clip.Data, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	if len(clip.Data) == 0 {
		return nil, ErrEmptyClip
	}
	return clip, nil
}

// Load opens, decodes, and conforms a clip file to the given engine format.
func (r *Registry) Load(path string, rate, channels int) (*Clip, error) {
	src, closer, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	defer src.Close()

	clip, err := ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return Conform(clip, rate, channels)
}
