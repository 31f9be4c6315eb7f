package policy

import (
	"log/slog"

	"synthgraph/internal/domain"
)

// Adjustments records what a policy application changed or prescribed for
// a preset. Spatial and modulation targets are advisory and consumed by
// downstream stages rather than written into the preset.
type Adjustments struct {
	Role          domain.Role          `json:"role"`
	TempoFactor   float64              `json:"tempo_factor"`
	Envelope      EnvelopePolicy       `json:"-"`
	Filter        FilterPolicy         `json:"-"`
	Spatial       SpatialPolicy        `json:"spatial"`
	Modulation    ModulationPolicy     `json:"modulation"`
	SynthesisType domain.SynthesisType `json:"synthesis_type"`
	Clamped       []string             `json:"clamped,omitempty"`
}

// Manager applies role policies to normalized presets.
type Manager struct {
	policies map[domain.Role]RolePolicy
	log      *slog.Logger
}

func NewManager(log *slog.Logger) *Manager {
	return &Manager{policies: defaultPolicies, log: log}
}

// Policy returns the policy for role, falling back to the pad policy for
// roles without a table entry.
func (m *Manager) Policy(role domain.Role) RolePolicy {
	if p, ok := m.policies[role]; ok {
		return p
	}
	return m.policies[domain.RolePad]
}

// Apply clamps the preset's envelope and filter into the role's ranges,
// fixes the envelope curve and filter type, and picks a synthesis type
// from the role's preferences. The preset is modified in place and the
// prescribed spatial and modulation targets are returned.
//
// When the policy is tempo-scaled, envelope time bounds shrink or grow by
// 120/tempo so that the same role breathes at the caller's pace. Sustain
// is a level, not a time, and is never scaled.
func (m *Manager) Apply(p *domain.NormalizedPreset, role domain.Role, tempo float64, key string) Adjustments {
	pol := m.Policy(role)

	factor := 1.0
	if pol.TempoScaling && tempo > 0 {
		factor = 120.0 / tempo
	}

	adj := Adjustments{
		Role:        pol.Role,
		TempoFactor: factor,
		Envelope:    pol.Envelope,
		Filter:      pol.Filter,
		Spatial:     pol.Spatial,
		Modulation:  pol.Modulation,
	}

	env := &p.Envelope
	clampField(&env.Attack, pol.Envelope.AttackMin*factor, pol.Envelope.AttackMax*factor, "envelope.attack", &adj)
	clampField(&env.Decay, pol.Envelope.DecayMin*factor, pol.Envelope.DecayMax*factor, "envelope.decay", &adj)
	clampField(&env.Sustain, pol.Envelope.SustainMin, pol.Envelope.SustainMax, "envelope.sustain", &adj)
	clampField(&env.Release, pol.Envelope.ReleaseMin*factor, pol.Envelope.ReleaseMax*factor, "envelope.release", &adj)
	env.Curve = pol.Envelope.Curve
	env.Type = pol.Envelope.Type

	f := &p.Filter
	clampField(&f.Cutoff, pol.Filter.CutoffMin, pol.Filter.CutoffMax, "filter.cutoff", &adj)
	clampField(&f.Resonance, pol.Filter.ResonanceMin, pol.Filter.ResonanceMax, "filter.resonance", &adj)
	clampField(&f.EnvelopeAmount, pol.Filter.EnvAmountMin, pol.Filter.EnvAmountMax, "filter.envelope_amount", &adj)
	f.Type = pol.Filter.PreferredType

	adj.SynthesisType = pickSynthesis(p.SynthesisType, pol.SynthesisPreferences)
	p.SynthesisType = adj.SynthesisType
	p.Role = pol.Role

	if m.log != nil && len(adj.Clamped) > 0 {
		m.log.Debug("policy clamped preset fields",
			slog.String("preset", p.Name),
			slog.String("role", string(pol.Role)),
			slog.Any("fields", adj.Clamped))
	}
	return adj
}

// pickSynthesis keeps the preset's synthesis type when the role allows it
// and otherwise falls back to the role's first preference.
func pickSynthesis(current domain.SynthesisType, prefs []domain.SynthesisType) domain.SynthesisType {
	for _, pref := range prefs {
		if current == pref {
			return current
		}
	}
	if len(prefs) > 0 {
		return prefs[0]
	}
	return current
}

func clampField(v *float64, min, max float64, name string, adj *Adjustments) {
	switch {
	case *v < min:
		*v = min
	case *v > max:
		*v = max
	default:
		return
	}
	adj.Clamped = append(adj.Clamped, name)
}
