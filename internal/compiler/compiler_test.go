package compiler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
	"synthgraph/internal/errs"
	"synthgraph/internal/graph"
	"synthgraph/internal/policy"
	"synthgraph/internal/semantic"
)

func testPresets() []*domain.NormalizedPreset {
	return []*domain.NormalizedPreset{
		{
			Name:          "Warm Analog Dream",
			Category:      "pads",
			SynthesisType: domain.SynthSubtractive,
			Role:          domain.RolePad,
			Oscillator: domain.Oscillator{
				Types:     []domain.OscillatorType{domain.OscSine, domain.OscSawtooth},
				MixRatios: []float64{0.6, 0.4},
				Detune:    1.002,
			},
			Envelope: domain.Envelope{
				Type: domain.EnvADSR, Attack: 0.4, Decay: 0.5, Sustain: 0.7, Release: 1.2,
				Curve: domain.CurveLinear,
			},
			Filter: domain.Filter{
				Type: domain.FilterLowPass, Cutoff: 900, Resonance: 0.2, EnvelopeAmount: 0.3,
			},
			Characteristics: domain.SoundCharacteristics{
				Timbral: "warm", Material: "analog", Dynamic: "sustained",
				Emotional: []string{"dreamy", "calm"},
			},
		},
		{
			Name:          "Industrial Scrape",
			Category:      "fx",
			SynthesisType: domain.SynthGranular,
			Role:          domain.RoleFX,
			Oscillator: domain.Oscillator{
				Types:     []domain.OscillatorType{domain.OscNoise},
				MixRatios: []float64{1.0},
				Detune:    1.0,
			},
			Envelope: domain.Envelope{
				Type: domain.EnvADSR, Attack: 0.2, Decay: 0.6, Sustain: 0.5, Release: 1.0,
				Curve: domain.CurveExponential,
			},
			Filter: domain.Filter{
				Type: domain.FilterBandPass, Cutoff: 3000, Resonance: 0.5, EnvelopeAmount: 0.6,
			},
			Characteristics: domain.SoundCharacteristics{
				Timbral: "harsh", Material: "metal", Dynamic: "percussive",
			},
		},
	}
}

func testCompiler(t *testing.T, presets []*domain.NormalizedPreset) *Compiler {
	t.Helper()
	cfg := config.Default()
	index := semantic.NewIndex(cfg.Search)
	index.Build(presets)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(index, presets, policy.NewManager(log), graph.NewBuilder(cfg), log)
}

func TestCompileProducesCompleteResult(t *testing.T) {
	c := testCompiler(t, testPresets())

	res, err := c.Compile(context.Background(), "warm analog pad", Options{})
	require.NoError(t, err)

	assert.Equal(t, "Warm Analog Dream", res.PresetID)
	assert.Greater(t, res.Score, 0.0)
	require.NotNil(t, res.Preset)
	require.NotNil(t, res.Decisions)
	require.NotNil(t, res.Graph)
	assert.True(t, res.Graph.ValidationPassed, "diagnostics: %v", res.Diagnostics)

	for _, key := range []string{
		"filter_cutoff", "filter_resonance", "oscillator_detune",
		"envelope_attack", "envelope_release",
		"stereo_width", "reverb_amount", "delay_amount", "lfo_rate",
	} {
		assert.Contains(t, res.Parameters, key)
	}
	assert.Contains(t, res.Changes, "routing")
}

func TestCompileAppliesRolePolicy(t *testing.T) {
	c := testCompiler(t, testPresets())

	res, err := c.Compile(context.Background(), "warm analog pad", Options{Role: domain.RoleBass, Tempo: 120})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleBass, res.Adjustments.Role)
	assert.Equal(t, domain.RoleBass, res.Preset.Role)
	// The bass attack ceiling is 0.04s at 120 BPM; decisions leave the
	// envelope alone, so the clamp survives into the parameter export.
	assert.LessOrEqual(t, res.Parameters["envelope_attack"], 0.04+1e-9)
}

func TestCompileIsDeterministic(t *testing.T) {
	c := testCompiler(t, testPresets())

	a, err := c.Compile(context.Background(), "warm analog pad", Options{Tempo: 100, Key: "Dm"})
	require.NoError(t, err)
	b, err := c.Compile(context.Background(), "warm analog pad", Options{Tempo: 100, Key: "Dm"})
	require.NoError(t, err)

	assert.Equal(t, a.Decisions, b.Decisions)
	assert.Equal(t, a.Parameters, b.Parameters)
	assert.Equal(t, a.PresetID, b.PresetID)
}

func TestCompileDoesNotMutateLibraryPresets(t *testing.T) {
	presets := testPresets()
	original := presets[0].Clone()
	c := testCompiler(t, presets)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Compile(context.Background(), "warm analog pad", Options{Role: domain.RoleLead})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, original, presets[0])
}

func TestCompileEmptyLibrary(t *testing.T) {
	c := testCompiler(t, nil)

	_, err := c.Compile(context.Background(), "anything", Options{})
	assert.ErrorIs(t, err, errs.ErrNoPresets)
}

func TestCompileNoMatch(t *testing.T) {
	presets := testPresets()
	cfg := config.Default()
	index := semantic.NewIndex(cfg.Search)
	index.Build(nil) // presets known to the compiler but absent from the index
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(index, presets, policy.NewManager(log), graph.NewBuilder(cfg), log)

	_, err := c.Compile(context.Background(), "anything", Options{})
	assert.ErrorIs(t, err, errs.ErrNoMatch)
}

func TestCompileHonorsContextCancellation(t *testing.T) {
	c := testCompiler(t, testPresets())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, "warm analog pad", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
