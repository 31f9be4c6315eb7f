package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
)

func padPreset() *domain.NormalizedPreset {
	return &domain.NormalizedPreset{
		Name: "warm_pad",
		Role: domain.RolePad,
		Oscillator: domain.Oscillator{
			Types:     []domain.OscillatorType{domain.OscSawtooth, domain.OscSine},
			MixRatios: []float64{0.7, 0.3},
			Detune:    1.004,
		},
		Envelope: domain.Envelope{
			Type: domain.EnvADSR, Attack: 0.3, Decay: 0.2, Sustain: 0.8, Release: 1.5,
			Curve: domain.CurveLinear,
		},
		Filter: domain.Filter{
			Type: domain.FilterLowPass, Cutoff: 2000, Resonance: 0.3, Slope: "12dB/oct",
		},
		Effects: []domain.Effect{
			{Type: "reverb", Mix: 0.4},
			{Type: "delay", Mix: 0.3, Feedback: ptr(0.4), Time: ptr(0.25)},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func newTestBuilder() *Builder {
	return NewBuilder(config.Default())
}

func TestBuildSignalChain(t *testing.T) {
	g := newTestBuilder().Build(padPreset())

	require.True(t, g.ValidationPassed, "unexpected errors: %v", g.ValidationErrors)

	// two oscillators, envelope, filter, two effects, stereo, clipper,
	// limiter, lfo
	assert.Len(t, g.Nodes, 10)
	assert.Len(t, g.NodesOf(domain.NodeOscillator), 2)
	require.NotNil(t, g.Node(domain.NodeFilter))
	require.NotNil(t, g.Node(domain.NodeLimiter))

	hasConn := func(from, to string) bool {
		for _, c := range g.Connections {
			if c.From == from && c.To == to {
				return true
			}
		}
		return false
	}
	assert.True(t, hasConn("osc_0_sawtooth", "filter_main"))
	assert.True(t, hasConn("osc_1_sine", "filter_main"))
	assert.True(t, hasConn("env_main", "filter_main"))
	assert.True(t, hasConn("filter_main", "fx_0_reverb"))
	assert.True(t, hasConn("fx_0_reverb", "fx_1_delay"))
	assert.True(t, hasConn("fx_1_delay", "stereo_width"))
	assert.True(t, hasConn("stereo_width", "clipper_soft"))
	assert.True(t, hasConn("clipper_soft", "limiter_tp"))
	assert.True(t, hasConn("lfo_main", "filter_main"))
}

func TestBuildBusMembership(t *testing.T) {
	g := newTestBuilder().Build(padPreset())
	assert.Equal(t, []string{"env_main"}, g.Buses[domain.BusModEnv])
	assert.Equal(t, []string{"lfo_main"}, g.Buses[domain.BusModLFO])
	assert.Empty(t, g.Buses[domain.BusMacroMotion])
}

func TestBuildWithoutEffects(t *testing.T) {
	p := padPreset()
	p.Effects = nil
	g := newTestBuilder().Build(p)

	require.True(t, g.ValidationPassed, "unexpected errors: %v", g.ValidationErrors)
	var direct bool
	for _, c := range g.Connections {
		if c.From == "filter_main" && c.To == "stereo_width" {
			direct = true
		}
	}
	assert.True(t, direct, "filter should feed stereo directly when no effects exist")
}

func TestOscillatorVariantParameters(t *testing.T) {
	p := padPreset()
	p.Oscillator = domain.Oscillator{
		Types:           []domain.OscillatorType{domain.OscFM, domain.OscAdditive},
		MixRatios:       []float64{0.5, 0.5},
		Detune:          1.0,
		ModulationIndex: ptr(2.5),
		CarrierRatio:    ptr(2.0),
		Harmonics:       []float64{1.0, 0.5, 0.25},
	}
	g := newTestBuilder().Build(p)

	fm := g.Nodes[0]
	assert.Equal(t, 2.5, fm.Parameters["modulation_index"])
	assert.Equal(t, 2.0, fm.Parameters["carrier_ratio"])

	additive := g.Nodes[1]
	assert.Equal(t, 1.0, additive.Parameters["harmonic_0"])
	assert.Equal(t, 0.5, additive.Parameters["harmonic_1"])
	assert.Equal(t, 0.25, additive.Parameters["harmonic_2"])
}

func TestAcyclicityForBuiltGraphs(t *testing.T) {
	presets := []*domain.NormalizedPreset{
		padPreset(),
		{
			Name:       "sub_bass",
			Role:       domain.RoleBass,
			Oscillator: domain.Oscillator{Types: []domain.OscillatorType{domain.OscSine}, MixRatios: []float64{1}},
			Filter:     domain.Filter{Cutoff: 400},
		},
	}
	for _, p := range presets {
		g := newTestBuilder().Build(p)
		assert.False(t, hasCycle(g), "graph for %s must be acyclic", p.Name)
	}
}

func TestIntentionalBackEdgeFlagged(t *testing.T) {
	g := newTestBuilder().Build(padPreset())
	require.False(t, hasCycle(g))

	g.Connections = append(g.Connections, domain.Connection{
		From: "limiter_tp", FromPort: "audio_out", To: "filter_main", ToPort: "audio_in",
	})
	assert.True(t, hasCycle(g))
}

func TestUnsafeCutoffReported(t *testing.T) {
	p := padPreset()
	p.Filter.Cutoff = 25000
	g := newTestBuilder().Build(p)

	assert.False(t, g.ValidationPassed)
	var found bool
	for _, e := range g.ValidationErrors {
		if strings.Contains(e, "cutoff") {
			found = true
		}
	}
	assert.True(t, found, "expected cutoff error, got %v", g.ValidationErrors)
}

func TestUnsafeDelayFeedbackReported(t *testing.T) {
	p := padPreset()
	p.Effects = []domain.Effect{{Type: "delay", Mix: 0.5, Feedback: ptr(0.95)}}
	g := newTestBuilder().Build(p)

	assert.False(t, g.ValidationPassed)
	var found bool
	for _, e := range g.ValidationErrors {
		if strings.Contains(e, "feedback") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestModulationNodesExemptFromConnectivity(t *testing.T) {
	g := newTestBuilder().Build(padPreset())
	// Drop the LFO connection: the node dangles but must not be reported.
	var kept []domain.Connection
	for _, c := range g.Connections {
		if c.From != "lfo_main" {
			kept = append(kept, c)
		}
	}
	g.Connections = kept
	errors := newTestBuilder().validate(g)
	for _, e := range errors {
		assert.NotContains(t, e, "lfo_main")
	}
}
