package mixer

import "math"

// Effects are the per-slot processing parameters. Reverb is a wet mix in
// [0,1]; the EQ gains are linear in [0,2] with 1.0 flat.
type Effects struct {
	Reverb float64 `json:"reverb"`
	EQLow  float64 `json:"eq_low"`
	EQMid  float64 `json:"eq_mid"`
	EQHigh float64 `json:"eq_high"`
}

func DefaultEffects() Effects {
	return Effects{Reverb: 0, EQLow: 1, EQMid: 1, EQHigh: 1}
}

func (e Effects) clamped() Effects {
	return Effects{
		Reverb: clamp(e.Reverb, 0, 1),
		EQLow:  clamp(e.EQLow, 0, 2),
		EQMid:  clamp(e.EQMid, 0, 2),
		EQHigh: clamp(e.EQHigh, 0, 2),
	}
}

func (e Effects) flat() bool {
	return e.Reverb == 0 && e.EQLow == 1 && e.EQMid == 1 && e.EQHigh == 1
}

// Band split points for the 3-band EQ.
const (
	eqLowCutoffHz  = 250.0
	eqHighCutoffHz = 4000.0
)

// Comb delays for the reverb tail, in frames at 44.1kHz. Mutually prime so
// the echoes don't stack.
var combDelays = [2]int{1687, 2053}

const combFeedback = 0.66

// onePole is a leaky integrator used as a gentle low-pass.
type onePole struct {
	a float32
	y float32
}

func newOnePole(cutoffHz float64) onePole {
	return onePole{a: float32(1 - math.Exp(-2*math.Pi*cutoffHz/SampleRate))}
}

func (f *onePole) next(x float32) float32 {
	f.y += f.a * (x - f.y)
	return f.y
}

// comb is a feedback comb filter, one per channel per delay tap.
type comb struct {
	buf []float32
	pos int
}

func (c *comb) next(x float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = x + out*combFeedback
	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

// effectChain carries the filter state for one slot. Parameters arrive
// fresh every quantum; only the state lives here.
type effectChain struct {
	low   [Channels]onePole
	high  [Channels]onePole
	combs [Channels][2]comb
	wet   bool // reverb state holds a tail from previous quanta
}

func newEffectChain() *effectChain {
	ch := &effectChain{}
	for c := 0; c < Channels; c++ {
		ch.low[c] = newOnePole(eqLowCutoffHz)
		ch.high[c] = newOnePole(eqHighCutoffHz)
		for t := range combDelays {
			ch.combs[c][t].buf = make([]float32, combDelays[t])
		}
	}
	return ch
}

// reset clears all filter memory, used when a slot (re)starts so old tails
// don't bleed into the fresh clip.
func (ch *effectChain) reset() {
	for c := 0; c < Channels; c++ {
		ch.low[c].y = 0
		ch.high[c].y = 0
		for t := range ch.combs[c] {
			clear(ch.combs[c][t].buf)
			ch.combs[c][t].pos = 0
		}
	}
	ch.wet = false
}

// process runs EQ then reverb over interleaved samples in place.
func (ch *effectChain) process(buf []float32, fx Effects) {
	if fx.flat() {
		if ch.wet {
			ch.reset()
		}
		return
	}

	gl := float32(fx.EQLow)
	gm := float32(fx.EQMid)
	gh := float32(fx.EQHigh)
	eqActive := gl != 1 || gm != 1 || gh != 1

	mix := float32(fx.Reverb)
	if mix > 0 {
		ch.wet = true
	} else if ch.wet {
		// Reverb just turned off; drop the stale tail.
		for c := 0; c < Channels; c++ {
			for t := range ch.combs[c] {
				clear(ch.combs[c][t].buf)
				ch.combs[c][t].pos = 0
			}
		}
		ch.wet = false
	}

	for i := 0; i < len(buf); i += Channels {
		for c := 0; c < Channels; c++ {
			x := buf[i+c]

			if eqActive {
				lo := ch.low[c].next(x)
				hiCut := ch.high[c].next(x)
				hi := x - hiCut
				mid := hiCut - lo
				x = gl*lo + gm*mid + gh*hi
			}

			if mix > 0 {
				wet := (ch.combs[c][0].next(x) + ch.combs[c][1].next(x)) * 0.5
				x = x + mix*wet
			}

			buf[i+c] = x
		}
	}
}
