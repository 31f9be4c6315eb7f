// Package render provides the built-in fallback tone renderer. It stands in
// for the external audio engine behind the Renderer interface: a plain sine
// at the preset's cutoff-derived pitch with linear attack/release ramps,
// good enough to audition a compiled patch.
package render

import (
	"context"
	"fmt"
	"math"
)

const SampleRate = 44100

// ToneRenderer is stateless and deterministic: the same parameters and
// duration always yield the same buffer.
type ToneRenderer struct{}

func NewToneRenderer() *ToneRenderer {
	return &ToneRenderer{}
}

// Render synthesizes a mono float32 buffer at 44.1 kHz. The tone frequency
// tracks the filter cutoff, folded into a musical register; attack and
// release ramp linearly per the envelope parameters.
func (r *ToneRenderer) Render(ctx context.Context, params map[string]float64, durationSec float64) ([]float32, error) {
	if durationSec <= 0 {
		return nil, fmt.Errorf("render: duration %g must be positive", durationSec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freq := toneFrequency(params["filter_cutoff"])
	attack := params["envelope_attack"]
	release := params["envelope_release"]
	sustain := params["envelope_sustain"]
	if sustain <= 0 {
		sustain = 0.7
	}

	n := int(durationSec * SampleRate)
	buf := make([]float32, n)
	for i := range buf {
		t := float64(i) / SampleRate
		env := envelopeAt(t, durationSec, attack, release, sustain)
		buf[i] = float32(env * math.Sin(2*math.Pi*freq*t))
	}
	return buf, nil
}

// toneFrequency folds the cutoff into [110, 880] Hz so extreme filter
// settings still audition as a pitched tone.
func toneFrequency(cutoff float64) float64 {
	f := cutoff
	if f <= 0 {
		return 220
	}
	for f > 880 {
		f /= 2
	}
	for f < 110 {
		f *= 2
	}
	return f
}

func envelopeAt(t, total, attack, release, sustain float64) float64 {
	switch {
	case attack > 0 && t < attack:
		return sustain * (t / attack)
	case release > 0 && t > total-release:
		remaining := (total - t) / release
		if remaining < 0 {
			remaining = 0
		}
		return sustain * remaining
	default:
		return sustain
	}
}
