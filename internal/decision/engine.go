// Package decision resolves concrete parameter values and modulation
// routings from a query context. Identical inputs produce bit-identical
// output: all randomness is drawn from generators seeded by the query
// vector alone.
package decision

import (
	"fmt"
	"math"

	"synthgraph/internal/domain"
)

// Context is everything a head may consult when resolving a decision.
type Context struct {
	QueryVector []float64
	Role        domain.Role
	Tempo       float64
	Key         string
}

// valueHead resolves one parameter: a base mean from the query vector,
// role weighting, role-dependent jitter, then mapping into [Min,Max].
type valueHead struct {
	parameter   string
	min, max    float64
	roleWeights map[domain.Role]float64
}

// routingTargets lists every parameter a modulation source may drive.
var routingTargets = []string{
	"filter_cutoff", "filter_resonance", "oscillator_detune",
	"reverb_amount", "delay_amount", "distortion_amount",
	"stereo_width", "lfo_rate",
}

var valueHeads = []valueHead{
	{"filter_cutoff", 20, 20000, map[domain.Role]float64{
		domain.RolePad: 0.6, domain.RoleBass: 0.3, domain.RoleLead: 0.8, domain.RoleFX: 1.0,
	}},
	{"filter_resonance", 0.0, 0.9, map[domain.Role]float64{
		domain.RolePad: 0.3, domain.RoleBass: 0.6, domain.RoleLead: 0.5, domain.RoleFX: 0.8,
	}},
	{"oscillator_detune", 0.0, 0.1, map[domain.Role]float64{
		domain.RolePad: 0.4, domain.RoleBass: 0.1, domain.RoleLead: 0.7, domain.RoleFX: 0.9,
	}},
	{"reverb_amount", 0.0, 1.0, map[domain.Role]float64{
		domain.RolePad: 0.8, domain.RoleBass: 0.2, domain.RoleLead: 0.5, domain.RoleFX: 0.7,
	}},
	{"delay_amount", 0.0, 1.0, map[domain.Role]float64{
		domain.RolePad: 0.4, domain.RoleBass: 0.1, domain.RoleLead: 0.6, domain.RoleFX: 0.8,
	}},
	{"distortion_amount", 0.0, 1.0, map[domain.Role]float64{
		domain.RolePad: 0.1, domain.RoleBass: 0.3, domain.RoleLead: 0.5, domain.RoleFX: 0.8,
	}},
	{"stereo_width", 0.0, 1.0, map[domain.Role]float64{
		domain.RolePad: 1.0, domain.RoleBass: 0.0, domain.RoleLead: 0.5, domain.RoleFX: 1.0,
	}},
	{"lfo_rate", 0.1, 10.0, map[domain.Role]float64{
		domain.RolePad: 0.5, domain.RoleBass: 0.3, domain.RoleLead: 0.7, domain.RoleFX: 1.0,
	}},
}

// jitterSigma is the role-dependent spread of the value jitter. Stable
// roles (drone, bass) barely move; fx roam.
var jitterSigma = map[domain.Role]float64{
	domain.RolePad:     0.05,
	domain.RoleBass:    0.03,
	domain.RoleLead:    0.08,
	domain.RoleFX:      0.15,
	domain.RoleTexture: 0.10,
	domain.RoleArp:     0.12,
	domain.RoleDrone:   0.02,
	domain.RoleRhythm:  0.08,
	domain.RoleBell:    0.06,
	domain.RoleChord:   0.05,
	domain.RolePluck:   0.07,
}

// routingRoleAdjust scales the base connection probability per role and
// target. Unlisted role/target pairs use 1.0.
var routingRoleAdjust = map[domain.Role]map[string]float64{
	domain.RolePad: {
		"filter_cutoff": 0.8, "filter_resonance": 0.6,
		"oscillator_detune": 0.4, "reverb_amount": 0.7,
	},
	domain.RoleBass: {
		"filter_cutoff": 0.9, "filter_resonance": 0.7,
		"oscillator_detune": 0.2, "reverb_amount": 0.3,
	},
	domain.RoleLead: {
		"filter_cutoff": 0.8, "filter_resonance": 0.6,
		"oscillator_detune": 0.7, "reverb_amount": 0.5,
	},
	domain.RoleFX: {
		"filter_cutoff": 0.9, "filter_resonance": 0.8,
		"oscillator_detune": 0.8, "reverb_amount": 0.6,
	},
}

// routingAmountScale tempers the modulation amount per role.
var routingAmountScale = map[domain.Role]float64{
	domain.RolePad:     0.3,
	domain.RoleBass:    0.2,
	domain.RoleLead:    0.5,
	domain.RoleFX:      0.8,
	domain.RoleTexture: 0.6,
	domain.RoleArp:     0.7,
	domain.RoleDrone:   0.1,
	domain.RoleRhythm:  0.6,
	domain.RoleBell:    0.4,
	domain.RoleChord:   0.3,
	domain.RolePluck:   0.5,
}

const baseConnectionProb = 0.3

// Engine coordinates the value and routing heads. It is stateless; one
// instance serves any number of concurrent inferences.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Infer resolves every value and routing head against the context. Only
// enabled routings are recorded.
func (e *Engine) Infer(ctx Context) *domain.Decisions {
	seed := vectorSeed(ctx.QueryVector)
	d := &domain.Decisions{Seed: seed}

	for _, head := range valueHeads {
		d.Values = append(d.Values, head.infer(ctx, seed))
	}
	for _, source := range []string{domain.BusModLFO, domain.BusModEnv, domain.BusMacroMotion} {
		d.Routings = append(d.Routings, inferRoutings(ctx, source)...)
	}
	return d
}

func (h valueHead) infer(ctx Context, seed uint32) domain.ValueDecision {
	mean := baseValue(ctx.QueryVector)
	if w, ok := h.roleWeights[ctx.Role]; ok {
		mean *= w
	}
	mean = clampUnit(mean)

	sigma := jitterSigma[ctx.Role]
	if sigma == 0 {
		sigma = 0.05
	}
	jitter := newRand(seed).NormFloat64() * sigma
	final := clampUnit(mean + jitter)

	return domain.ValueDecision{
		Parameter: h.parameter,
		Mean:      mean,
		Sigma:     sigma,
		Min:       h.min,
		Max:       h.max,
		Value:     h.min + final*(h.max-h.min),
	}
}

// inferRoutings decides, per target, whether a source bus modulates it.
// The probability blends the role adjustment with the query activity, then
// a seeded uniform factor in [0.8,1.2] perturbs it; connections past 0.5
// are enabled.
func inferRoutings(ctx Context, source string) []domain.RoutingDecision {
	activity := 0.5 + 0.5*vectorNorm(ctx.QueryVector)
	var out []domain.RoutingDecision
	for _, target := range routingTargets {
		adjust := 1.0
		if roleAdj, ok := routingRoleAdjust[ctx.Role]; ok {
			if a, ok := roleAdj[target]; ok {
				adjust = a
			}
		}
		prob := clampUnit(baseConnectionProb * adjust * activity)

		factor := 0.8 + newRand(vectorSeed(ctx.QueryVector, target)).Float64()*0.4
		prob = clampUnit(prob * factor)
		if prob <= 0.5 {
			continue
		}

		scale, ok := routingAmountScale[ctx.Role]
		if !ok {
			scale = 0.5
		}
		out = append(out, domain.RoutingDecision{
			Source:  source,
			Target:  target,
			Amount:  clampUnit(prob * scale),
			Enabled: true,
		})
	}
	return out
}

// Apply writes the resolved filter and oscillator values back onto the
// preset and returns the full change set, routing map included.
func (e *Engine) Apply(preset *domain.NormalizedPreset, d *domain.Decisions) map[string]any {
	changes := make(map[string]any)
	for _, v := range d.Values {
		switch v.Parameter {
		case "filter_cutoff":
			preset.Filter.Cutoff = v.Value
			changes[v.Parameter] = v.Value
		case "filter_resonance":
			preset.Filter.Resonance = v.Value
			changes[v.Parameter] = v.Value
		case "oscillator_detune":
			preset.Oscillator.Detune = v.Value
			changes[v.Parameter] = v.Value
		}
	}
	changes["routing"] = d.RoutingMap()
	return changes
}

// Validate reports decisions outside their declared bounds. A non-empty
// result indicates an internal defect: the clamps should make this
// unreachable.
func (e *Engine) Validate(d *domain.Decisions) []string {
	var issues []string
	for _, v := range d.Values {
		if v.Value < v.Min || v.Value > v.Max {
			issues = append(issues, fmt.Sprintf("parameter %s value %g outside range [%g, %g]",
				v.Parameter, v.Value, v.Min, v.Max))
		}
	}
	for _, r := range d.Routings {
		if r.Amount < 0.0 || r.Amount > 1.0 {
			issues = append(issues, fmt.Sprintf("routing %s->%s amount %g outside range [0.0, 1.0]",
				r.Source, r.Target, r.Amount))
		}
	}
	return issues
}

// baseValue projects the leading query dimensions onto a fixed weighting;
// shorter vectors fall back to their mean.
func baseValue(vector []float64) float64 {
	weights := []float64{0.4, 0.3, 0.2, 0.1}
	if len(vector) >= len(weights) {
		sum := 0.0
		for i, w := range weights {
			sum += vector[i] * w
		}
		return sum
	}
	if len(vector) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range vector {
		sum += v
	}
	return sum / float64(len(vector))
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
