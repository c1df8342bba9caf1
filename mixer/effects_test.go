package mixer

import (
	"math"
	"testing"
)

func TestEffectsClamped(t *testing.T) {
	fx := Effects{Reverb: 1.5, EQLow: -1, EQMid: 3, EQHigh: 0.5}.clamped()
	if fx.Reverb != 1 || fx.EQLow != 0 || fx.EQMid != 2 || fx.EQHigh != 0.5 {
		t.Fatalf("bad clamp: %+v", fx)
	}
}

func TestFlatChainIsPassthrough(t *testing.T) {
	ch := newEffectChain()
	buf := make([]float32, 64*Channels)
	for i := range buf {
		buf[i] = float32(i%7) * 0.1
	}
	want := append([]float32(nil), buf...)

	ch.process(buf, DefaultEffects())
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d modified: got %f, want %f", i, buf[i], want[i])
		}
	}
}

// A DC signal lands entirely in the low band once the filters settle, so a
// zero low gain should squash it.
func TestEQLowGainKillsDC(t *testing.T) {
	ch := newEffectChain()
	fx := Effects{Reverb: 0, EQLow: 0, EQMid: 1, EQHigh: 1}

	buf := make([]float32, 512*Channels)
	// Warm up the filter state over a few quanta.
	for q := 0; q < 20; q++ {
		for i := range buf {
			buf[i] = 0.5
		}
		ch.process(buf, fx)
	}
	last := buf[len(buf)-1]
	if last > 0.05 || last < -0.05 {
		t.Fatalf("DC not attenuated: %f", last)
	}
}

func TestEQUnityGainsPreserveDC(t *testing.T) {
	ch := newEffectChain()
	// Unity gains but reverb off and non-flat via a hair of reverb? No:
	// exercise the EQ path by nudging one gain to force eqActive, then
	// back-to-back with a truly flat pass for comparison.
	fx := Effects{Reverb: 0, EQLow: 1, EQMid: 1, EQHigh: 1.000001}

	buf := make([]float32, 512*Channels)
	for q := 0; q < 20; q++ {
		for i := range buf {
			buf[i] = 0.5
		}
		ch.process(buf, fx)
	}
	last := buf[len(buf)-1]
	if diff := last - 0.5; diff > 0.01 || diff < -0.01 {
		t.Fatalf("unity EQ altered signal: %f", last)
	}
}

func TestReverbAddsEnergy(t *testing.T) {
	dry := newEffectChain()
	wet := newEffectChain()
	fxWet := Effects{Reverb: 1, EQLow: 1, EQMid: 1, EQHigh: 1}

	var dryRMS, wetRMS float64
	bufD := make([]float32, 512*Channels)
	bufW := make([]float32, 512*Channels)
	for q := 0; q < 40; q++ {
		for i := range bufD {
			v := float32(math.Sin(float64(q*len(bufD)+i) * 0.01))
			bufD[i] = v
			bufW[i] = v
		}
		dry.process(bufD, DefaultEffects())
		wet.process(bufW, fxWet)
		for i := range bufD {
			dryRMS += float64(bufD[i]) * float64(bufD[i])
			wetRMS += float64(bufW[i]) * float64(bufW[i])
		}
	}
	if wetRMS <= dryRMS {
		t.Fatalf("reverb added no energy: wet %f <= dry %f", wetRMS, dryRMS)
	}
}

func TestReverbTailClearedWhenDisabled(t *testing.T) {
	ch := newEffectChain()
	fxWet := Effects{Reverb: 1, EQLow: 1, EQMid: 1, EQHigh: 1}

	buf := make([]float32, 4096*Channels)
	for i := range buf {
		buf[i] = 0.5
	}
	ch.process(buf, fxWet)

	// Turn reverb off but keep the chain active via an EQ tweak; feeding
	// silence must now yield silence, not a leftover tail.
	fxOff := Effects{Reverb: 0, EQLow: 1.5, EQMid: 1, EQHigh: 1}
	for i := range buf {
		buf[i] = 0
	}
	ch.process(buf, fxOff)
	// The EQ one-poles legitimately ring down for a few dozen samples;
	// anything after that must be silence, not a comb tail.
	for i := len(buf) / 2; i < len(buf); i++ {
		if buf[i] > 0.01 || buf[i] < -0.01 {
			t.Fatalf("sample %d carries stale tail: %f", i, buf[i])
		}
	}
}

func TestChainResetClearsState(t *testing.T) {
	ch := newEffectChain()
	fxWet := Effects{Reverb: 1, EQLow: 1, EQMid: 1, EQHigh: 1}

	buf := make([]float32, 4096*Channels)
	for i := range buf {
		buf[i] = 0.9
	}
	ch.process(buf, fxWet)
	ch.reset()

	for i := range buf {
		buf[i] = 0
	}
	ch.process(buf, fxWet)
	for i := range buf {
		if buf[i] != 0 {
			t.Fatalf("sample %d nonzero after reset: %f", i, buf[i])
		}
	}
}
