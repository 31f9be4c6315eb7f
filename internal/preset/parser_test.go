package preset

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgraph/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseInstrumentsDialect(t *testing.T) {
	doc := []byte(`{
		"instruments": {
			"warm_pad": {
				"synthesisType": "subtractive",
				"oscillator": {"types": ["sawtooth", "sine"], "mix_ratios": [0.7, 0.3], "detune": 10},
				"adsr": {"attack": "200ms", "decay": 0.3, "sustain": 0.8, "release": "1.5s"},
				"filter": {"type": "low-pass", "cutoff": 2000, "resonance": 0.3},
				"effects": [{"type": "reverb", "mix": 0.4}],
				"soundCharacteristics": {"timbral": "warm", "emotional": ["calm", "dreamy"]}
			}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "electronic_track")
	require.NoError(t, err)
	require.Len(t, presets, 1)

	p := presets[0]
	assert.Equal(t, "warm_pad", p.Name)
	assert.Equal(t, "electronic_track", p.Category)
	assert.Equal(t, domain.SynthSubtractive, p.SynthesisType)
	assert.Equal(t, []domain.OscillatorType{domain.OscSawtooth, domain.OscSine}, p.Oscillator.Types)
	assert.Equal(t, domain.Text("200ms"), p.Envelope.Attack)
	assert.Equal(t, domain.Number(0.8), p.Envelope.Sustain)
	assert.Equal(t, domain.Number(2000), p.Filter.Cutoff)
	require.Len(t, p.Effects, 1)
	assert.Equal(t, "reverb", p.Effects[0].Type)
	assert.Equal(t, "warm", p.Characteristics.Timbral)
	assert.Equal(t, []string{"calm", "dreamy"}, p.Characteristics.Emotional)
}

func TestParseWeightedEmotionalTags(t *testing.T) {
	doc := []byte(`{
		"instruments": {
			"dream_pad": {
				"adsr": {"attack": 100},
				"soundCharacteristics": {
					"timbral": "soft",
					"emotional": [{"tag": "dreamy", "weight": 0.8}, {"tag": "calm", "weight": 0.6}, "floaty"]
				}
			}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "electronic_track")
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, []string{"dreamy", "calm", "floaty"}, presets[0].Characteristics.Emotional)
}

func TestParseGroupsDialect(t *testing.T) {
	doc := []byte(`{
		"groups": {
			"sub_bass": {
				"synthesis_type": "fm",
				"oscillator": {"types": ["sine"], "modulation_index": 2.5, "carrier_ratio": 1.0},
				"envelope": {"attack": 5, "release": [80, 250]},
				"filter": {"cutoff": "500Hz"},
				"fx": [{"type": "distortion", "amount": 0.2}]
			}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "group")
	require.NoError(t, err)
	require.Len(t, presets, 1)

	p := presets[0]
	assert.Equal(t, "sub_bass", p.Name)
	assert.Equal(t, domain.SynthFM, p.SynthesisType)
	assert.Equal(t, domain.Number(2.5), p.Oscillator.ModulationIndex)
	assert.Equal(t, domain.Range(80, 250), p.Envelope.Release)
	assert.Equal(t, domain.Text("500Hz"), p.Filter.Cutoff)
	require.Len(t, p.Effects, 1)
	assert.Equal(t, "distortion", p.Effects[0].Type)
	assert.Equal(t, domain.Number(0.2), p.Effects[0].Amount)
}

func TestParseEffectExtraFields(t *testing.T) {
	doc := []byte(`{
		"groups": {
			"shimmer": {
				"envelope": {"attack": 100},
				"fx": [{"type": "reverb", "mix": 0.5, "shimmer_pitch": 12, "room_size": 0.8}]
			}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "group")
	require.NoError(t, err)
	require.Len(t, presets, 1)
	require.Len(t, presets[0].Effects, 1)
	assert.Equal(t, map[string]float64{"shimmer_pitch": 12, "room_size": 0.8}, presets[0].Effects[0].Extra)
}

func TestParseGuitarDialect(t *testing.T) {
	doc := []byte(`{
		"guitar_types": {
			"acoustic": {
				"groups": {
					"fingerpicked": {
						"strings": {"count": 6},
						"harmonics": {"vibe_set": [1.0, 0.5, 0.25]},
						"envelope": {"attack": 2, "release": 800},
						"filter": {"cutoff": 4000}
					}
				}
			}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "guitar")
	require.NoError(t, err)
	require.Len(t, presets, 1)

	p := presets[0]
	assert.Equal(t, "fingerpicked", p.Name)
	assert.Equal(t, domain.SynthPhysicalModeling, p.SynthesisType)
	assert.Equal(t, []domain.OscillatorType{domain.OscKarplusStrong}, p.Oscillator.Types)
	assert.Equal(t, []float64{1.0, 0.5, 0.25}, p.Oscillator.Harmonics)
	assert.Equal(t, "acoustic", p.Metadata["guitar_type"])
}

func TestParseGuitarDialectDefaultHarmonics(t *testing.T) {
	doc := []byte(`{
		"guitar_types": {
			"electric": {"groups": {"clean": {"envelope": {"attack": 1}}}}
		}
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "guitar")
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, []float64{1.0}, presets[0].Oscillator.Harmonics)
}

func TestParseHeuristicScan(t *testing.T) {
	doc := []byte(`{
		"mystery_sound": {
			"oscillator": {"types": ["square"]},
			"envelope": {"attack": 10}
		},
		"not_a_preset": {"author": "someone", "year": 2024},
		"version": "1.2"
	}`)

	presets, err := NewParser(testLogger()).Parse(doc, "misc")
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "mystery_sound", presets[0].Name)
	assert.Equal(t, []domain.OscillatorType{domain.OscSquare}, presets[0].Oscillator.Types)
}

func TestParseDefaults(t *testing.T) {
	doc := []byte(`{"groups": {"bare": {"oscillator": {}}}}`)

	presets, err := NewParser(testLogger()).Parse(doc, "group")
	require.NoError(t, err)
	require.Len(t, presets, 1)

	p := presets[0]
	assert.Equal(t, domain.SynthSubtractive, p.SynthesisType)
	assert.Equal(t, []domain.OscillatorType{domain.OscSine}, p.Oscillator.Types)
	assert.Equal(t, []domain.Scalar{domain.Number(1.0)}, p.Oscillator.MixRatios)
	assert.Equal(t, domain.EnvADSR, p.Envelope.Type)
	assert.Equal(t, domain.Number(1.0), p.Envelope.Sustain)
	assert.Equal(t, domain.FilterLowPass, p.Filter.Type)
	assert.Equal(t, domain.Number(1000.0), p.Filter.Cutoff)
	assert.Equal(t, "12dB/oct", p.Filter.Slope)
	assert.Equal(t, "neutral", p.Characteristics.Timbral)
	assert.Equal(t, "medium", p.Topology.Damping)
}

func TestParseFilesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "pads.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"groups": {"soft_pad": {"envelope": {"attack": 300}}}}`), 0o644))

	bad := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"groups": not valid json`), 0o644))

	presets, failures := NewParser(testLogger()).ParseFiles([]string{good, bad})
	require.Len(t, presets, 1)
	assert.Equal(t, "soft_pad", presets[0].Name)
	assert.Equal(t, "pads", presets[0].Category)
	require.Len(t, failures, 1)
	assert.ErrorContains(t, failures[0], "broken.json")
}

func TestParseFileCategoryFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "electronic_track.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"instruments": {"kick": {"adsr": {"attack": 1}}}}`), 0o644))

	presets, err := NewParser(testLogger()).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "electronic_track", presets[0].Category)
}
