package mixer

import (
	"errors"
	"testing"

	"github.com/ZaviQ7/ambient-sound-generator/decode"
)

func constClip(v float32, frames int) *decode.Clip {
	data := make([]float32, frames*Channels)
	for i := range data {
		data[i] = v
	}
	return &decode.Clip{Data: data, Rate: SampleRate, Channels: Channels}
}

// rampClip counts 0,1,2,... per frame so loop seams are visible.
func rampClip(frames int) *decode.Clip {
	data := make([]float32, frames*Channels)
	for f := 0; f < frames; f++ {
		for c := 0; c < Channels; c++ {
			data[f*Channels+c] = float32(f)
		}
	}
	return &decode.Clip{Data: data, Rate: SampleRate, Channels: Channels}
}

func testMixer(t *testing.T) *Mixer {
	t.Helper()
	m := New()
	if err := m.AddSlot("Rain", "rain.mp3", constClip(0.25, 100)); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSlot("Ocean", "ocean.mp3", constClip(0.25, 100)); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSlot("Forest", "forest.mp3", nil); err != nil {
		t.Fatal(err)
	}
	return m
}

func render(m *Mixer, frames int) []float32 {
	dst := make([]float32, frames*Channels)
	m.Render(dst, uint32(frames))
	return dst
}

func TestUnknownSlotErrors(t *testing.T) {
	m := testMixer(t)
	if err := m.Play("Volcano"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("Play: expected ErrUnknownSlot, got %v", err)
	}
	if err := m.Stop("Volcano"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("Stop: expected ErrUnknownSlot, got %v", err)
	}
	if err := m.SetVolume("Volcano", 0.5); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("SetVolume: expected ErrUnknownSlot, got %v", err)
	}
	if _, err := m.Toggle("Volcano"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("Toggle: expected ErrUnknownSlot, got %v", err)
	}
}

func TestPlayUnloadedSlot(t *testing.T) {
	m := testMixer(t)
	if err := m.Play("Forest"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestRenderSilentWhenNothingPlays(t *testing.T) {
	m := testMixer(t)
	for i, v := range render(m, 64) {
		if v != 0 {
			t.Fatalf("sample %d: got %f, want silence", i, v)
		}
	}
}

func TestRenderSumsPlayingSlots(t *testing.T) {
	m := testMixer(t)
	if err := m.Play("Rain"); err != nil {
		t.Fatal(err)
	}
	if err := m.Play("Ocean"); err != nil {
		t.Fatal(err)
	}
	for i, v := range render(m, 64) {
		if diff := v - 0.5; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: got %f, want 0.5", i, v)
		}
	}
}

func TestVolumeScalesAndClamps(t *testing.T) {
	m := testMixer(t)
	m.Play("Rain")
	if err := m.SetVolume("Rain", 0.5); err != nil {
		t.Fatal(err)
	}
	for i, v := range render(m, 16) {
		if diff := v - 0.125; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: got %f, want 0.125", i, v)
		}
	}

	m.SetVolume("Rain", 3.0)
	if got := m.Slots()[0].Volume; got != 1.0 {
		t.Fatalf("volume not clamped: %f", got)
	}
	m.SetVolume("Rain", -1.0)
	if got := m.Slots()[0].Volume; got != 0.0 {
		t.Fatalf("volume not clamped at zero: %f", got)
	}
}

func TestLoopWrapsSeamlessly(t *testing.T) {
	m := New()
	if err := m.AddSlot("Ramp", "ramp.wav", rampClip(10)); err != nil {
		t.Fatal(err)
	}
	m.Play("Ramp")

	out := render(m, 25)
	for f := 0; f < 25; f++ {
		want := float32(f % 10)
		if out[f*Channels] != want {
			t.Fatalf("frame %d: got %f, want %f", f, out[f*Channels], want)
		}
	}
	// Next render continues where the last one left off.
	out = render(m, 5)
	for f := 0; f < 5; f++ {
		want := float32((25 + f) % 10)
		if out[f*Channels] != want {
			t.Fatalf("continuation frame %d: got %f, want %f", f, out[f*Channels], want)
		}
	}
}

func TestPlayRestartsFromClipStart(t *testing.T) {
	m := New()
	m.AddSlot("Ramp", "ramp.wav", rampClip(10))
	m.Play("Ramp")
	render(m, 7)
	m.Play("Ramp")
	out := render(m, 3)
	if out[0] != 0 {
		t.Fatalf("got %f, want restart at frame 0", out[0])
	}
}

func TestMuteSilencesButKeepsPlaying(t *testing.T) {
	m := testMixer(t)
	m.Play("Rain")
	m.SetMuted(true)
	for i, v := range render(m, 16) {
		if v != 0 {
			t.Fatalf("sample %d: got %f, want silence while muted", i, v)
		}
	}
	m.SetMuted(false)
	if out := render(m, 16); out[0] == 0 {
		t.Fatal("expected audio to resume after unmute")
	}
	if !m.Slots()[0].Playing {
		t.Fatal("mute must not stop the slot")
	}
}

func TestToggleMuted(t *testing.T) {
	m := testMixer(t)
	if !m.ToggleMuted() {
		t.Fatal("first toggle should mute")
	}
	if m.ToggleMuted() {
		t.Fatal("second toggle should unmute")
	}
}

func TestBusClampsToFullScale(t *testing.T) {
	m := New()
	m.AddSlot("A", "a.wav", constClip(0.8, 100))
	m.AddSlot("B", "b.wav", constClip(0.8, 100))
	m.Play("A")
	m.Play("B")
	for i, v := range render(m, 16) {
		if v > 1.0 || v < -1.0 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
		if v != 1.0 {
			t.Fatalf("sample %d: got %f, want clamp at 1.0", i, v)
		}
	}
}

func TestMasterVolume(t *testing.T) {
	m := testMixer(t)
	m.Play("Rain")
	m.SetMaster(0.5)
	for i, v := range render(m, 16) {
		if diff := v - 0.125; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: got %f, want 0.125", i, v)
		}
	}
}

func TestSnapshotApplyRoundTrip(t *testing.T) {
	m := testMixer(t)
	m.Play("Rain")
	m.SetVolume("Rain", 0.3)
	m.SetEffects("Rain", Effects{Reverb: 0.4, EQLow: 1.2, EQMid: 0.8, EQHigh: 1.1})

	snap := m.Snapshot()

	m.Stop("Rain")
	m.SetVolume("Rain", 1.0)
	m.SetEffects("Rain", DefaultEffects())

	m.Apply(snap)

	s := m.Slots()[0]
	if !s.Playing || s.Volume != 0.3 {
		t.Fatalf("apply did not restore slot: %+v", s)
	}
	if s.Effects.Reverb != 0.4 || s.Effects.EQLow != 1.2 {
		t.Fatalf("apply did not restore effects: %+v", s.Effects)
	}
}

func TestApplySkipsUnknownAndUnloaded(t *testing.T) {
	m := testMixer(t)
	m.Apply(map[string]SlotSettings{
		"Volcano": {Volume: 0.5, Playing: true, Effects: DefaultEffects()},
		"Forest":  {Volume: 0.5, Playing: true, Effects: DefaultEffects()},
		"Rain":    {Volume: 0.7, Playing: true, Effects: DefaultEffects()},
	})

	slots := m.Slots()
	for _, s := range slots {
		switch s.Name {
		case "Forest":
			if s.Playing {
				t.Fatal("unloaded slot must not start playing")
			}
			if s.Volume != 0.5 {
				t.Fatalf("unloaded slot should still take settings, got volume %f", s.Volume)
			}
		case "Rain":
			if !s.Playing || s.Volume != 0.7 {
				t.Fatalf("Rain not applied: %+v", s)
			}
		}
	}
}

func TestApplyKeepsRunningSlotPosition(t *testing.T) {
	m := New()
	m.AddSlot("Ramp", "ramp.wav", rampClip(10))
	m.Play("Ramp")
	render(m, 4)

	// Re-applying a snapshot that says "playing" must not rewind the clip.
	m.Apply(map[string]SlotSettings{
		"Ramp": {Volume: 1.0, Playing: true, Effects: DefaultEffects()},
	})
	out := render(m, 1)
	if out[0] != 4 {
		t.Fatalf("got frame %f, want playback to continue at 4", out[0])
	}
}

func TestSlotLevelTracksPlayback(t *testing.T) {
	m := testMixer(t)
	m.Play("Rain")
	render(m, 256)
	slots := m.Slots()
	if slots[0].Level < 0.2 {
		t.Fatalf("Rain level too low: %f", slots[0].Level)
	}
	if slots[1].Level != 0 {
		t.Fatalf("stopped slot has level %f", slots[1].Level)
	}
	if m.Level() < 0.2 {
		t.Fatalf("bus level too low: %f", m.Level())
	}
}

func TestDuplicateSlotRejected(t *testing.T) {
	m := testMixer(t)
	if err := m.AddSlot("Rain", "rain.mp3", nil); err == nil {
		t.Fatal("expected duplicate slot error")
	}
}

func TestAddSlotRejectsWrongFormat(t *testing.T) {
	m := New()
	clip := &decode.Clip{Data: make([]float32, 100), Rate: 22050, Channels: 2}
	if err := m.AddSlot("Rain", "rain.mp3", clip); err == nil {
		t.Fatal("expected format mismatch error")
	}
}
