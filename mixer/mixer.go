// Package mixer holds the registry of named ambient sound slots and renders
// the combined mix for the playback engine. All state shared with the render
// callback sits behind one mutex, so parameter changes and preset applies
// land between render quanta.
package mixer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ZaviQ7/ambient-sound-generator/decode"
)

// Engine output format. Every clip is conformed to this at load time.
const (
	SampleRate = 44100
	Channels   = 2
)

var (
	ErrUnknownSlot = errors.New("unknown sound slot")
	ErrNotLoaded   = errors.New("sound clip not loaded")
)

// SlotDef names a slot and the clip file it plays, relative to the sound
// directory.
type SlotDef struct {
	Name string
	File string
}

// DefaultSlots is the fixed ambient sound set.
var DefaultSlots = []SlotDef{
	{"Rain", "rain.mp3"},
	{"Coffee Shop", "coffee_shop.mp3"},
	{"White Noise", "white_noise.mp3"},
	{"Forest", "forest.mp3"},
	{"Ocean", "ocean.mp3"},
}

// SlotSettings is the per-slot state captured by presets.
type SlotSettings struct {
	Volume  float64 `json:"volume"`
	Playing bool    `json:"is_playing"`
	Effects Effects `json:"effects"`
}

// SlotState is a read-only view of one slot for the front-ends.
type SlotState struct {
	Name    string
	File    string
	Loaded  bool
	Playing bool
	Volume  float64
	Effects Effects
	Level   float64 // RMS of the slot's contribution in the last quantum
}

type slot struct {
	name    string
	file    string
	clip    *decode.Clip
	volume  float64
	playing bool
	effects Effects
	cursor  int // frame position within clip
	chain   *effectChain
	level   float64
}

type Mixer struct {
	mu      sync.Mutex
	order   []string
	slots   map[string]*slot
	muted   bool
	master  float64
	level   float64 // bus RMS of the last quantum
	scratch []float32
}

func New() *Mixer {
	return &Mixer{
		slots:  make(map[string]*slot),
		master: 1.0,
	}
}

// AddSlot registers a named slot. A nil clip registers the slot as
// unloadable: it shows up in the board but Play fails. The registry is
// fixed once the front-ends start; AddSlot is a setup-time call.
func (m *Mixer) AddSlot(name, file string, clip *decode.Clip) error {
	if clip != nil && (clip.Rate != SampleRate || clip.Channels != Channels) {
		return fmt.Errorf("slot %q: clip is %d Hz %d ch, want %d Hz %d ch",
			name, clip.Rate, clip.Channels, SampleRate, Channels)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[name]; ok {
		return fmt.Errorf("slot %q already registered", name)
	}
	m.order = append(m.order, name)
	m.slots[name] = &slot{
		name:    name,
		file:    file,
		clip:    clip,
		volume:  1.0,
		effects: DefaultEffects(),
		chain:   newEffectChain(),
	}
	return nil
}

// Play starts a slot from the beginning of its clip.
func (m *Mixer) Play(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	if s.clip == nil {
		return fmt.Errorf("%w: %q (%s)", ErrNotLoaded, name, s.file)
	}
	s.playing = true
	s.cursor = 0
	s.chain.reset()
	return nil
}

func (m *Mixer) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	s.playing = false
	s.level = 0
	return nil
}

// Toggle flips a slot between playing and stopped. Returns the new state.
func (m *Mixer) Toggle(name string) (bool, error) {
	m.mu.Lock()
	s, ok := m.slots[name]
	playing := ok && s.playing
	m.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	if playing {
		return false, m.Stop(name)
	}
	return true, m.Play(name)
}

func (m *Mixer) SetVolume(name string, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	s.volume = clamp(v, 0, 1)
	return nil
}

// SetEffects replaces a slot's effect parameters, clamped to their ranges.
// Playback is never interrupted; the new parameters take hold at the next
// render quantum.
func (m *Mixer) SetEffects(name string, fx Effects) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	s.effects = fx.clamped()
	return nil
}

func (m *Mixer) SetMaster(v float64) {
	m.mu.Lock()
	m.master = clamp(v, 0, 1)
	m.mu.Unlock()
}

func (m *Mixer) Master() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.master
}

func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

func (m *Mixer) ToggleMuted() bool {
	m.mu.Lock()
	m.muted = !m.muted
	muted := m.muted
	m.mu.Unlock()
	return muted
}

func (m *Mixer) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Slots returns the slot states in registration order.
func (m *Mixer) Slots() []SlotState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SlotState, 0, len(m.order))
	for _, name := range m.order {
		s := m.slots[name]
		out = append(out, SlotState{
			Name:    s.name,
			File:    s.file,
			Loaded:  s.clip != nil,
			Playing: s.playing,
			Volume:  s.volume,
			Effects: s.effects,
			Level:   s.level,
		})
	}
	return out
}

// Level returns the bus RMS of the last render quantum.
func (m *Mixer) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Snapshot captures every slot's settings, keyed by slot name.
func (m *Mixer) Snapshot() map[string]SlotSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]SlotSettings, len(m.slots))
	for name, s := range m.slots {
		out[name] = SlotSettings{Volume: s.volume, Playing: s.playing, Effects: s.effects}
	}
	return out
}

// Apply restores a snapshot: volume and effects first, then playback state.
// Names the registry does not know are skipped. The whole apply happens
// under the render lock, so the mix switches between quanta, not mid-buffer.
func (m *Mixer) Apply(settings map[string]SlotSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, cfg := range settings {
		s, ok := m.slots[name]
		if !ok {
			continue
		}
		s.volume = clamp(cfg.Volume, 0, 1)
		s.effects = cfg.Effects.clamped()
		if cfg.Playing && s.clip != nil {
			if !s.playing {
				s.cursor = 0
				s.chain.reset()
			}
			s.playing = true
		} else {
			s.playing = false
			s.level = 0
		}
	}
}

// Render is the engine callback. dst holds frames*Channels interleaved
// samples and is filled completely.
func (m *Mixer) Render(dst []float32, frames uint32) {
	for i := range dst {
		dst[i] = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := int(frames) * Channels
	if n > len(dst) {
		n = len(dst)
	}
	if cap(m.scratch) < n {
		m.scratch = make([]float32, n)
	}
	buf := m.scratch[:n]

	for _, name := range m.order {
		s := m.slots[name]
		if !s.playing || s.clip == nil {
			continue
		}
		s.readLoop(buf)
		s.chain.process(buf, s.effects)

		gain := float32(s.volume)
		var sumSq float64
		for i, v := range buf {
			v *= gain
			dst[i] += v
			sumSq += float64(v) * float64(v)
		}
		s.level = math.Sqrt(sumSq / float64(n))
	}

	master := float32(m.master)
	if m.muted {
		master = 0
	}
	var busSq float64
	for i := range dst[:n] {
		v := dst[i] * master
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		dst[i] = v
		busSq += float64(v) * float64(v)
	}
	m.level = math.Sqrt(busSq / float64(n))
}

// readLoop copies the next quantum from the clip into buf, wrapping at the
// clip boundary for a seamless loop.
func (s *slot) readLoop(buf []float32) {
	data := s.clip.Data
	frames := s.clip.Frames()
	pos := s.cursor * Channels
	for i := 0; i < len(buf); {
		copied := copy(buf[i:], data[pos:])
		i += copied
		pos += copied
		if pos >= len(data) {
			pos = 0
		}
	}
	s.cursor = (s.cursor + len(buf)/Channels) % frames
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
