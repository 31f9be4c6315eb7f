package domain

import "strings"

// Role is the musical function a preset is intended to fill. It drives
// policy ranges, decision weighting, and modulation routing.
type Role string

const (
	RolePad     Role = "pad"
	RoleBass    Role = "bass"
	RoleLead    Role = "lead"
	RoleFX      Role = "fx"
	RoleTexture Role = "texture"
	RoleArp     Role = "arp"
	RoleDrone   Role = "drone"
	RoleRhythm  Role = "rhythm"
	RoleBell    Role = "bell"
	RoleChord   Role = "chord"
	RolePluck   Role = "pluck"
)

// Roles lists every known role in declaration order.
var Roles = []Role{
	RolePad, RoleBass, RoleLead, RoleFX, RoleTexture, RoleArp,
	RoleDrone, RoleRhythm, RoleBell, RoleChord, RolePluck,
}

// ParseRole maps a user-supplied string onto a known role.
// The zero Role ("") means "not specified".
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// SynthesisType names the overall synthesis method of a preset.
type SynthesisType string

const (
	SynthSubtractive      SynthesisType = "subtractive"
	SynthAdditive         SynthesisType = "additive"
	SynthFM               SynthesisType = "fm"
	SynthWavetable        SynthesisType = "wavetable"
	SynthGranular         SynthesisType = "granular"
	SynthPhysicalModeling SynthesisType = "physical_modeling"
	SynthModular          SynthesisType = "modular"
	SynthHybridAI         SynthesisType = "hybrid_ai"
	SynthEnsembleChorus   SynthesisType = "ensemble_chorus"
)

// OscillatorType names a single oscillator variant.
type OscillatorType string

const (
	OscSine          OscillatorType = "sine"
	OscSawtooth      OscillatorType = "sawtooth"
	OscTriangle      OscillatorType = "triangle"
	OscSquare        OscillatorType = "square"
	OscPulse         OscillatorType = "pulse"
	OscNoise         OscillatorType = "noise"
	OscFM            OscillatorType = "fm"
	OscWavetable     OscillatorType = "wavetable"
	OscSupersaw      OscillatorType = "supersaw"
	OscGranular      OscillatorType = "granular"
	OscAdditive      OscillatorType = "additive"
	OscKarplusStrong OscillatorType = "karplus_strong"
)

// FilterType names the filter topology.
type FilterType string

const (
	FilterLowPass  FilterType = "low-pass"
	FilterHighPass FilterType = "high-pass"
	FilterBandPass FilterType = "band-pass"
	FilterNotch    FilterType = "notch"
)

// EnvelopeType names the envelope stage layout.
type EnvelopeType string

const (
	EnvAD    EnvelopeType = "AD"
	EnvADSR  EnvelopeType = "ADSR"
	EnvAHDSR EnvelopeType = "AHDSR"
	EnvDADSR EnvelopeType = "DADSR"
)

// EnvelopeCurve names the envelope segment shape.
type EnvelopeCurve string

const (
	CurveLinear      EnvelopeCurve = "linear"
	CurveExponential EnvelopeCurve = "exponential"
	CurveLogarithmic EnvelopeCurve = "logarithmic"
)

// SoundCharacteristics carries the free-text tags attached to a preset.
// These feed the semantic index, not the signal chain.
type SoundCharacteristics struct {
	Timbral   string
	Material  string
	Dynamic   string
	Emotional []string
}

// TopologicalMetadata carries descriptive tags about a preset's spectral
// layout. Indexed alongside the sound characteristics.
type TopologicalMetadata struct {
	Damping            string
	SpectralComplexity string
	ManifoldPosition   string
}
