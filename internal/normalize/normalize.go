// Package normalize converts raw presets to SI units and canonical ranges,
// infers roles, applies role defaults, and enforces safety bounds.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
)

// roleKeywords maps name substrings to roles. Order matters: the first
// matching set wins.
var roleKeywords = []struct {
	role     domain.Role
	keywords []string
}{
	{domain.RolePad, []string{"pad", "warm", "calm", "ambient"}},
	{domain.RoleBass, []string{"bass", "punchy", "driving"}},
	{domain.RoleLead, []string{"lead", "bright", "energetic", "supersaw"}},
	{domain.RoleFX, []string{"fx", "chaotic", "experimental"}},
	{domain.RoleTexture, []string{"texture", "evolving", "tense"}},
	{domain.RoleArp, []string{"arp", "plucky", "rhythmic"}},
	{domain.RoleDrone, []string{"drone", "airy", "ambient"}},
	{domain.RoleRhythm, []string{"rhythm", "crunchy", "aggressive"}},
	{domain.RoleBell, []string{"bell", "glassy", "clear"}},
	{domain.RoleChord, []string{"chord", "soft", "lush"}},
	// "karplus" contains "arp", so any name carrying it is claimed by
	// the arp entry above before this one is reached.
	{domain.RolePluck, []string{"pluck", "karplus"}},
}

// Normalizer resolves every scalar field of a raw preset against the
// configured safety bounds and role defaults.
type Normalizer struct {
	safety config.SafetyConfig
	roles  map[string]config.RoleDefaults
}

func New(cfg *config.AppConfig) *Normalizer {
	return &Normalizer{safety: cfg.Safety, roles: cfg.Roles}
}

// Normalize converts one raw preset. It never fails: every unparsable or
// out-of-range value is defaulted or clamped and recorded as an issue.
func (n *Normalizer) Normalize(raw domain.RawPreset) *domain.NormalizedPreset {
	var issues []string

	env := n.normalizeEnvelope(raw.Envelope, &issues)
	filter := n.normalizeFilter(raw.Filter, &issues)
	osc := n.normalizeOscillator(raw.Oscillator, &issues)
	effects := n.normalizeEffects(raw.Effects, &issues)
	role := inferRole(raw)

	n.applyRoleDefaults(&env, role, &issues)
	n.checkSafety(filter, effects, &issues)

	return &domain.NormalizedPreset{
		Name:            raw.Name,
		Category:        raw.Category,
		SynthesisType:   raw.SynthesisType,
		Oscillator:      osc,
		Envelope:        env,
		Filter:          filter,
		Effects:         effects,
		Characteristics: raw.Characteristics,
		Topology:        raw.Topology,
		Role:            role,
		Metadata:        raw.Metadata,
		Issues:          issues,
	}
}

func (n *Normalizer) normalizeEnvelope(env domain.RawEnvelope, issues *[]string) domain.Envelope {
	return domain.Envelope{
		Type:    env.Type,
		Attack:  timeSeconds(env.Attack, "envelope.attack", issues),
		Decay:   timeSeconds(env.Decay, "envelope.decay", issues),
		Sustain: level(env.Sustain, "envelope.sustain", issues),
		Release: timeSeconds(env.Release, "envelope.release", issues),
		Hold:    timeSeconds(env.Hold, "envelope.hold", issues),
		Delay:   timeSeconds(env.Delay, "envelope.delay", issues),
		Curve:   env.Curve,
	}
}

func (n *Normalizer) normalizeFilter(f domain.RawFilter, issues *[]string) domain.Filter {
	cutoff := frequencyHz(f.Cutoff, "filter.cutoff", issues)
	cutoff = clamp(cutoff, n.safety.CutoffMinHz, n.safety.CutoffMaxHz, "filter.cutoff", issues)
	return domain.Filter{
		Type:           f.Type,
		Cutoff:         cutoff,
		Resonance:      level(f.Resonance, "filter.resonance", issues),
		EnvelopeAmount: level(f.EnvelopeAmount, "filter.envelope_amount", issues),
		Slope:          f.Slope,
	}
}

func (n *Normalizer) normalizeOscillator(osc domain.RawOscillator, issues *[]string) domain.Oscillator {
	out := domain.Oscillator{
		Types:     append([]domain.OscillatorType(nil), osc.Types...),
		MixRatios: mixRatios(osc.MixRatios, "oscillator.mix_ratios", issues),
		Detune:    detuneRatio(osc.Detune, "oscillator.detune", issues),
		Harmonics: append([]float64(nil), osc.Harmonics...),
	}
	if !osc.ModulationIndex.IsZero() {
		v := clamp(plainNumber(osc.ModulationIndex, "oscillator.modulation_index", issues),
			0.0, 10.0, "oscillator.modulation_index", issues)
		out.ModulationIndex = &v
	}
	if !osc.CarrierRatio.IsZero() {
		v := clamp(plainNumber(osc.CarrierRatio, "oscillator.carrier_ratio", issues),
			0.1, 10.0, "oscillator.carrier_ratio", issues)
		out.CarrierRatio = &v
	}
	if !osc.MorphRate.IsZero() {
		v := frequencyHz(osc.MorphRate, "oscillator.morph_rate", issues)
		out.MorphRateHz = &v
	}
	if !osc.TableIndex.IsZero() {
		v := plainNumber(osc.TableIndex, "oscillator.table_index", issues)
		out.TableIndex = &v
	}
	if !osc.GrainDensity.IsZero() {
		v := plainNumber(osc.GrainDensity, "oscillator.grain_density", issues)
		out.GrainDensity = &v
	}
	if !osc.GrainSize.IsZero() {
		v := timeSeconds(osc.GrainSize, "oscillator.grain_size", issues)
		out.GrainSize = &v
	}
	return out
}

func (n *Normalizer) normalizeEffects(effects []domain.RawEffect, issues *[]string) []domain.Effect {
	out := make([]domain.Effect, 0, len(effects))
	for i, eff := range effects {
		name := func(field string) string { return fmt.Sprintf("fx[%d].%s", i, field) }
		e := domain.Effect{
			Type: eff.Type,
			Mix:  level(eff.Mix, name("mix"), issues),
		}
		if !eff.Feedback.IsZero() {
			v := clamp(level(eff.Feedback, name("feedback"), issues),
				0.0, n.safety.FeedbackMax, name("feedback"), issues)
			e.Feedback = &v
		}
		if !eff.Time.IsZero() {
			v := timeSeconds(eff.Time, name("time"), issues)
			e.Time = &v
		}
		if !eff.Gain.IsZero() {
			v := clamp(gainDB(eff.Gain, name("gain"), issues),
				-60.0, n.safety.GainMaxDB, name("gain"), issues)
			e.Gain = &v
		}
		if !eff.Amount.IsZero() {
			v := level(eff.Amount, name("amount"), issues)
			e.Amount = &v
		}
		if !eff.Decay.IsZero() {
			v := timeSeconds(eff.Decay, name("decay"), issues)
			e.Decay = &v
		}
		if !eff.Wet.IsZero() {
			v := level(eff.Wet, name("wet"), issues)
			e.Wet = &v
		}
		if !eff.Rate.IsZero() {
			v := frequencyHz(eff.Rate, name("rate"), issues)
			e.Rate = &v
		}
		if !eff.Depth.IsZero() {
			v := level(eff.Depth, name("depth"), issues)
			e.Depth = &v
		}
		if !eff.Frequency.IsZero() {
			v := frequencyHz(eff.Frequency, name("frequency"), issues)
			e.Frequency = &v
		}
		if !eff.Density.IsZero() {
			v := level(eff.Density, name("density"), issues)
			e.Density = &v
		}
		if !eff.Threshold.IsZero() {
			v := gainDB(eff.Threshold, name("threshold"), issues)
			e.Threshold = &v
		}
		if !eff.Ratio.IsZero() {
			v := clamp(plainNumber(eff.Ratio, name("ratio"), issues),
				1.0, 20.0, name("ratio"), issues)
			e.Ratio = &v
		}
		if len(eff.Extra) > 0 {
			e.Extra = make(map[string]float64, len(eff.Extra))
			for k, v := range eff.Extra {
				e.Extra[k] = v
			}
		}
		out = append(out, e)
	}
	return out
}

// inferRole returns the explicit role when one is declared, otherwise
// matches the preset name against the ordered keyword sets. Unmatched
// names default to pad.
func inferRole(raw domain.RawPreset) domain.Role {
	if raw.Role != "" {
		return raw.Role
	}
	name := strings.ToLower(raw.Name)
	for _, entry := range roleKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.role
			}
		}
	}
	return domain.RolePad
}

// applyRoleDefaults fills effectively-zero attack and release times from
// the role's default table. A value below one millisecond counts as unset.
func (n *Normalizer) applyRoleDefaults(env *domain.Envelope, role domain.Role, issues *[]string) {
	defaults, ok := n.roles[string(role)]
	if !ok {
		return
	}
	if env.Attack < 0.001 {
		atk := defaults.Attack
		if atk == "" {
			atk = "50ms"
		}
		env.Attack = timeSeconds(domain.Text(atk), "role_default.attack", issues)
	}
	if env.Release < 0.001 {
		rel := defaults.Release
		if rel == "" {
			rel = "500ms"
		}
		env.Release = timeSeconds(domain.Text(rel), "role_default.release", issues)
	}
}

// checkSafety reports remaining bound violations without altering values.
func (n *Normalizer) checkSafety(filter domain.Filter, effects []domain.Effect, issues *[]string) {
	if filter.Cutoff < n.safety.CutoffMinHz || filter.Cutoff > n.safety.CutoffMaxHz {
		*issues = append(*issues, fmt.Sprintf("filter.cutoff %gHz outside safe range [%g, %g]",
			filter.Cutoff, n.safety.CutoffMinHz, n.safety.CutoffMaxHz))
	}
	if filter.Resonance > n.safety.ResonanceMax {
		*issues = append(*issues, fmt.Sprintf("filter.resonance %g exceeds safe maximum %g",
			filter.Resonance, n.safety.ResonanceMax))
	}
	for i, eff := range effects {
		if eff.Feedback != nil && *eff.Feedback > n.safety.FeedbackMax {
			*issues = append(*issues, fmt.Sprintf("fx[%d].feedback %g exceeds safe maximum %g",
				i, *eff.Feedback, n.safety.FeedbackMax))
		}
		if eff.Gain != nil && *eff.Gain > n.safety.GainMaxDB {
			*issues = append(*issues, fmt.Sprintf("fx[%d].gain %gdB exceeds safe maximum %gdB",
				i, *eff.Gain, n.safety.GainMaxDB))
		}
	}
}

// timeSeconds converts a time value to seconds. Bare numbers below 10 are
// read as milliseconds, "ms"/"s" suffixes are honored, and "a-b" ranges
// are averaged as milliseconds.
func timeSeconds(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		if s.Num < 10 {
			return s.Num / 1000.0
		}
		return s.Num
	case domain.ScalarText:
		text := strings.TrimSpace(s.Text)
		switch {
		case strings.HasSuffix(text, "ms"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(text, "ms"), 64)
			if err != nil {
				*issues = append(*issues, fmt.Sprintf("invalid time format for %s: %s", param, s.Text))
				return 0.0
			}
			return v / 1000.0
		case strings.HasSuffix(text, "s"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(text, "s"), 64)
			if err != nil {
				*issues = append(*issues, fmt.Sprintf("invalid time format for %s: %s", param, s.Text))
				return 0.0
			}
			return v
		case strings.Contains(text, "-"):
			lo, hi, err := parseRangeText(text)
			if err != nil {
				*issues = append(*issues, fmt.Sprintf("invalid time range format for %s: %s", param, s.Text))
				return 0.0
			}
			return (lo + hi) / 2.0 / 1000.0
		default:
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				*issues = append(*issues, fmt.Sprintf("invalid time format for %s: %s", param, s.Text))
				return 0.0
			}
			if v < 10 {
				return v / 1000.0
			}
			return v
		}
	case domain.ScalarRange:
		return (s.Lo + s.Hi) / 2.0 / 1000.0
	default:
		return 0.0
	}
}

// frequencyHz converts a frequency value to Hz, honoring "Hz"/"kHz"
// suffixes and averaging ranges. Unparsable input defaults to 1000 Hz.
func frequencyHz(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		return s.Num
	case domain.ScalarText:
		text := strings.TrimSpace(s.Text)
		switch {
		case strings.HasSuffix(text, "kHz"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(text, "kHz"), 64)
			if err == nil {
				return v * 1000.0
			}
		case strings.HasSuffix(text, "Hz"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(text, "Hz"), 64)
			if err == nil {
				return v
			}
		default:
			v, err := strconv.ParseFloat(text, 64)
			if err == nil {
				return v
			}
		}
		*issues = append(*issues, fmt.Sprintf("invalid frequency format for %s: %s", param, s.Text))
		return 1000.0
	case domain.ScalarRange:
		return (s.Lo + s.Hi) / 2.0
	default:
		return 1000.0
	}
}

// level converts a percentage-or-fraction value to [0,1]. Values above 1.0
// are treated as percentages and divided by 100.
func level(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		if s.Num > 1.0 {
			return s.Num / 100.0
		}
		return s.Num
	case domain.ScalarRange:
		avg := (s.Lo + s.Hi) / 2.0
		if avg > 1.0 {
			return avg / 100.0
		}
		return avg
	case domain.ScalarEmpty:
		return 0.0
	default:
		*issues = append(*issues, fmt.Sprintf("invalid percentage value for %s: %s", param, s.Text))
		return 0.5
	}
}

// detuneRatio converts detune cents to a frequency ratio via 2^(cents/1200).
func detuneRatio(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		return math.Pow(2.0, s.Num/1200.0)
	case domain.ScalarRange:
		return math.Pow(2.0, (s.Lo+s.Hi)/2.0/1200.0)
	case domain.ScalarEmpty:
		return 1.0
	default:
		*issues = append(*issues, fmt.Sprintf("invalid detune value for %s: %s", param, s.Text))
		return 1.0
	}
}

// gainDB converts a linear gain to decibels, flooring non-positive input
// at -60 dB.
func gainDB(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		if s.Num > 0 {
			return 20.0 * math.Log10(s.Num)
		}
		return -60.0
	case domain.ScalarRange:
		avg := (s.Lo + s.Hi) / 2.0
		if avg > 0 {
			return 20.0 * math.Log10(avg)
		}
		return -60.0
	default:
		*issues = append(*issues, fmt.Sprintf("invalid gain value for %s: %s", param, s.Text))
		return 0.0
	}
}

// mixRatios renormalizes oscillator mix weights to sum to 1.0, falling
// back to uniform weighting when the sum is not positive.
func mixRatios(ratios []domain.Scalar, param string, issues *[]string) []float64 {
	if len(ratios) == 0 {
		return []float64{1.0}
	}
	out := make([]float64, len(ratios))
	for i, r := range ratios {
		switch r.Kind {
		case domain.ScalarNumber:
			out[i] = r.Num
		case domain.ScalarRange:
			out[i] = (r.Lo + r.Hi) / 2.0
		default:
			*issues = append(*issues, fmt.Sprintf("invalid mix ratio at index %d for %s", i, param))
			out[i] = 1.0
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
		return out
	}
	uniform := 1.0 / float64(len(out))
	for i := range out {
		out[i] = uniform
	}
	return out
}

// plainNumber resolves a scalar expected to be dimensionless.
func plainNumber(s domain.Scalar, param string, issues *[]string) float64 {
	switch s.Kind {
	case domain.ScalarNumber:
		return s.Num
	case domain.ScalarRange:
		return (s.Lo + s.Hi) / 2.0
	case domain.ScalarText:
		v, err := strconv.ParseFloat(strings.TrimSpace(s.Text), 64)
		if err == nil {
			return v
		}
		*issues = append(*issues, fmt.Sprintf("invalid numeric value for %s: %s", param, s.Text))
		return 0.0
	default:
		return 0.0
	}
}

func clamp(v, lo, hi float64, param string, issues *[]string) float64 {
	if v < lo {
		*issues = append(*issues, fmt.Sprintf("clamped %s from %g to %g", param, v, lo))
		return lo
	}
	if v > hi {
		*issues = append(*issues, fmt.Sprintf("clamped %s from %g to %g", param, v, hi))
		return hi
	}
	return v
}

func parseRangeText(text string) (float64, float64, error) {
	parts := strings.SplitN(text, "-", 2)
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}
