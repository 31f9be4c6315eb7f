package policy

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgraph/internal/domain"
)

func testManager() *Manager {
	return NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slowPad() *domain.NormalizedPreset {
	return &domain.NormalizedPreset{
		Name:          "Slow Pad",
		SynthesisType: domain.SynthSubtractive,
		Envelope: domain.Envelope{
			Type:    domain.EnvADSR,
			Attack:  0.05,
			Decay:   0.5,
			Sustain: 0.7,
			Release: 5.0,
			Curve:   domain.CurveExponential,
		},
		Filter: domain.Filter{
			Type:           domain.FilterHighPass,
			Cutoff:         8000,
			Resonance:      0.2,
			EnvelopeAmount: 0.3,
		},
	}
}

func TestApplyClampsIntoRoleRanges(t *testing.T) {
	m := testManager()
	p := slowPad()

	adj := m.Apply(p, domain.RolePad, 120, "C")

	// Attack 0.05 is below the pad floor of 0.2; release 5.0 above 3.0.
	assert.InDelta(t, 0.2, p.Envelope.Attack, 1e-9)
	assert.InDelta(t, 3.0, p.Envelope.Release, 1e-9)
	assert.InDelta(t, 0.5, p.Envelope.Decay, 1e-9)
	assert.InDelta(t, 0.7, p.Envelope.Sustain, 1e-9)

	assert.InDelta(t, 1200, p.Filter.Cutoff, 1e-9)
	assert.Equal(t, domain.FilterLowPass, p.Filter.Type)
	assert.Equal(t, domain.CurveLinear, p.Envelope.Curve)

	assert.Contains(t, adj.Clamped, "envelope.attack")
	assert.Contains(t, adj.Clamped, "envelope.release")
	assert.Contains(t, adj.Clamped, "filter.cutoff")
	assert.NotContains(t, adj.Clamped, "envelope.sustain")
}

func TestApplyScalesEnvelopeWithTempo(t *testing.T) {
	m := testManager()
	p := slowPad()

	// At 240 BPM the pad envelope bounds halve: attack range becomes
	// [0.1, 0.4] and release [0.3, 1.5].
	adj := m.Apply(p, domain.RolePad, 240, "C")

	require.InDelta(t, 0.5, adj.TempoFactor, 1e-9)
	assert.InDelta(t, 0.1, p.Envelope.Attack, 1e-9)
	assert.InDelta(t, 1.5, p.Envelope.Release, 1e-9)
	// Sustain is a level, untouched by tempo.
	assert.InDelta(t, 0.7, p.Envelope.Sustain, 1e-9)
}

func TestApplyIgnoresTempoForUnscaledRoles(t *testing.T) {
	m := testManager()
	p := slowPad()

	adj := m.Apply(p, domain.RoleFX, 240, "C")

	assert.InDelta(t, 1.0, adj.TempoFactor, 1e-9)
	// FX release range is [0.5, 2.0] regardless of tempo.
	assert.InDelta(t, 2.0, p.Envelope.Release, 1e-9)

	p2 := slowPad()
	adj2 := m.Apply(p2, domain.RoleDrone, 240, "C")
	assert.InDelta(t, 1.0, adj2.TempoFactor, 1e-9)
}

func TestApplySynthesisPreference(t *testing.T) {
	m := testManager()

	// Subtractive is a pad preference, so it survives.
	p := slowPad()
	adj := m.Apply(p, domain.RolePad, 120, "C")
	assert.Equal(t, domain.SynthSubtractive, adj.SynthesisType)
	assert.Equal(t, domain.SynthSubtractive, p.SynthesisType)

	// Granular is not; the pad falls back to its first preference.
	p2 := slowPad()
	p2.SynthesisType = domain.SynthGranular
	adj2 := m.Apply(p2, domain.RolePad, 120, "C")
	assert.Equal(t, domain.SynthSubtractive, adj2.SynthesisType)

	// A pluck keeps physical modeling.
	p3 := slowPad()
	p3.SynthesisType = domain.SynthPhysicalModeling
	adj3 := m.Apply(p3, domain.RolePluck, 120, "C")
	assert.Equal(t, domain.SynthPhysicalModeling, adj3.SynthesisType)
}

func TestUnknownRoleFallsBackToPad(t *testing.T) {
	m := testManager()
	pol := m.Policy(domain.Role("kazoo"))
	assert.Equal(t, domain.RolePad, pol.Role)

	p := slowPad()
	adj := m.Apply(p, domain.Role("kazoo"), 120, "C")
	assert.Equal(t, domain.RolePad, adj.Role)
	assert.Equal(t, domain.RolePad, p.Role)
}

func TestEveryRoleHasACompletePolicy(t *testing.T) {
	m := testManager()
	for _, role := range domain.Roles {
		pol := m.Policy(role)
		assert.Equal(t, role, pol.Role, "role %s", role)
		assert.NotEmpty(t, pol.SynthesisPreferences, "role %s", role)
		assert.Less(t, pol.Envelope.AttackMin, pol.Envelope.AttackMax, "role %s", role)
		assert.Less(t, pol.Filter.CutoffMin, pol.Filter.CutoffMax, "role %s", role)
		assert.Greater(t, pol.Priority, 0, "role %s", role)
		assert.LessOrEqual(t, pol.Spatial.ReverbAmount, 1.0, "role %s", role)
	}
}

func TestApplyReturnsAdvisoryTargets(t *testing.T) {
	m := testManager()
	p := slowPad()

	adj := m.Apply(p, domain.RoleBass, 120, "A")

	assert.True(t, adj.Spatial.MonoCompatible)
	assert.InDelta(t, 0.0, adj.Spatial.StereoWidth, 1e-9)
	assert.InDelta(t, 0.5, adj.Modulation.LFORateMin, 1e-9)
	assert.InDelta(t, 4.0, adj.Modulation.LFORateMax, 1e-9)
}
