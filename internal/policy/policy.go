// Package policy holds the per-role style policies: envelope and filter
// ranges, spatial and modulation targets, and synthesis preferences. The
// tables are immutable after process start.
package policy

import "synthgraph/internal/domain"

// EnvelopePolicy bounds the envelope times (seconds) and sustain level of
// a role, and fixes its curve and stage layout.
type EnvelopePolicy struct {
	AttackMin, AttackMax   float64
	DecayMin, DecayMax     float64
	SustainMin, SustainMax float64
	ReleaseMin, ReleaseMax float64
	Curve                  domain.EnvelopeCurve
	Type                   domain.EnvelopeType
}

// FilterPolicy bounds the filter settings of a role.
type FilterPolicy struct {
	CutoffMin, CutoffMax       float64 // Hz
	ResonanceMin, ResonanceMax float64
	EnvAmountMin, EnvAmountMax float64
	PreferredType              domain.FilterType
}

// SpatialPolicy fixes the stereo and space targets of a role.
type SpatialPolicy struct {
	StereoWidth    float64 // 0 = mono, 1 = full stereo
	MotionAmount   float64
	MonoCompatible bool
	ReverbAmount   float64
	DelayAmount    float64
}

// ModulationPolicy bounds the modulation rates and depths of a role.
type ModulationPolicy struct {
	LFORateMin, LFORateMax           float64 // Hz
	VibratoFreqMin, VibratoFreqMax   float64 // Hz
	VibratoDepthMin, VibratoDepthMax float64 // cents
	TremoloAmount                    float64
}

// RolePolicy is the complete style policy for one musical role.
type RolePolicy struct {
	Role                 domain.Role
	Envelope             EnvelopePolicy
	Filter               FilterPolicy
	Spatial              SpatialPolicy
	Modulation           ModulationPolicy
	SynthesisPreferences []domain.SynthesisType
	TempoScaling         bool // scale envelope times by 120/tempo
	KeyAwareness         bool
	Priority             int
}

var defaultPolicies = map[domain.Role]RolePolicy{
	domain.RolePad: {
		Role: domain.RolePad,
		Envelope: EnvelopePolicy{
			AttackMin: 0.2, AttackMax: 0.8,
			DecayMin: 0.4, DecayMax: 0.6,
			SustainMin: 0.6, SustainMax: 0.8,
			ReleaseMin: 0.6, ReleaseMax: 3.0,
			Curve: domain.CurveLinear, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 400, CutoffMax: 1200,
			ResonanceMin: 0.1, ResonanceMax: 0.3,
			EnvAmountMin: 0.2, EnvAmountMax: 0.5,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 1.0, MotionAmount: 0.5, MonoCompatible: false,
			ReverbAmount: 0.6, DelayAmount: 0.4,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.1, LFORateMax: 2.0,
			VibratoFreqMin: 4.0, VibratoFreqMax: 7.0,
			VibratoDepthMin: 5.0, VibratoDepthMax: 15.0,
			TremoloAmount: 0.3,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthAdditive},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             1,
	},
	domain.RoleBass: {
		Role: domain.RoleBass,
		Envelope: EnvelopePolicy{
			AttackMin: 0.005, AttackMax: 0.04,
			DecayMin: 0.08, DecayMax: 0.25,
			SustainMin: 0.7, SustainMax: 0.9,
			ReleaseMin: 0.08, ReleaseMax: 0.25,
			Curve: domain.CurveExponential, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 200, CutoffMax: 800,
			ResonanceMin: 0.4, ResonanceMax: 0.7,
			EnvAmountMin: 0.3, EnvAmountMax: 0.6,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.0, MotionAmount: 0.2, MonoCompatible: true,
			ReverbAmount: 0.2, DelayAmount: 0.1,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.5, LFORateMax: 4.0,
			VibratoFreqMin: 4.0, VibratoFreqMax: 6.0,
			VibratoDepthMin: 10.0, VibratoDepthMax: 20.0,
			TremoloAmount: 0.1,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthWavetable},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             2,
	},
	domain.RoleLead: {
		Role: domain.RoleLead,
		Envelope: EnvelopePolicy{
			AttackMin: 0.005, AttackMax: 0.12,
			DecayMin: 0.12, DecayMax: 0.6,
			SustainMin: 0.8, SustainMax: 0.95,
			ReleaseMin: 0.12, ReleaseMax: 0.6,
			Curve: domain.CurveExponential, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 800, CutoffMax: 2000,
			ResonanceMin: 0.3, ResonanceMax: 0.6,
			EnvAmountMin: 0.4, EnvAmountMax: 0.7,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.5, MotionAmount: 0.6, MonoCompatible: true,
			ReverbAmount: 0.4, DelayAmount: 0.3,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.2, LFORateMax: 8.0,
			VibratoFreqMin: 5.0, VibratoFreqMax: 7.0,
			VibratoDepthMin: 8.0, VibratoDepthMax: 15.0,
			TremoloAmount: 0.4,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthWavetable, domain.SynthFM},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             3,
	},
	domain.RoleFX: {
		Role: domain.RoleFX,
		Envelope: EnvelopePolicy{
			AttackMin: 0.1, AttackMax: 0.5,
			DecayMin: 0.2, DecayMax: 1.0,
			SustainMin: 0.3, SustainMax: 0.7,
			ReleaseMin: 0.5, ReleaseMax: 2.0,
			Curve: domain.CurveExponential, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 200, CutoffMax: 8000,
			ResonanceMin: 0.2, ResonanceMax: 0.8,
			EnvAmountMin: 0.5, EnvAmountMax: 0.9,
			PreferredType: domain.FilterBandPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 1.0, MotionAmount: 0.8, MonoCompatible: false,
			ReverbAmount: 0.8, DelayAmount: 0.7,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.1, LFORateMax: 10.0,
			VibratoFreqMin: 0.5, VibratoFreqMax: 5.0,
			VibratoDepthMin: 5.0, VibratoDepthMax: 50.0,
			TremoloAmount: 0.6,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthWavetable, domain.SynthModular, domain.SynthGranular},
		TempoScaling:         false,
		KeyAwareness:         false,
		Priority:             4,
	},
	domain.RoleTexture: {
		Role: domain.RoleTexture,
		Envelope: EnvelopePolicy{
			AttackMin: 0.2, AttackMax: 1.0,
			DecayMin: 0.3, DecayMax: 1.5,
			SustainMin: 0.4, SustainMax: 0.8,
			ReleaseMin: 1.0, ReleaseMax: 5.0,
			Curve: domain.CurveExponential, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 300, CutoffMax: 2000,
			ResonanceMin: 0.3, ResonanceMax: 0.7,
			EnvAmountMin: 0.4, EnvAmountMax: 0.8,
			PreferredType: domain.FilterBandPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 1.0, MotionAmount: 0.7, MonoCompatible: false,
			ReverbAmount: 0.7, DelayAmount: 0.5,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.1, LFORateMax: 3.0,
			VibratoFreqMin: 2.0, VibratoFreqMax: 6.0,
			VibratoDepthMin: 10.0, VibratoDepthMax: 30.0,
			TremoloAmount: 0.5,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthFM, domain.SynthGranular, domain.SynthModular},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             2,
	},
	domain.RoleArp: {
		Role: domain.RoleArp,
		Envelope: EnvelopePolicy{
			AttackMin: 0.005, AttackMax: 0.02,
			DecayMin: 0.05, DecayMax: 0.3,
			SustainMin: 0.3, SustainMax: 0.6,
			ReleaseMin: 0.1, ReleaseMax: 0.5,
			Curve: domain.CurveExponential, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 600, CutoffMax: 2000,
			ResonanceMin: 0.2, ResonanceMax: 0.5,
			EnvAmountMin: 0.2, EnvAmountMax: 0.5,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.3, MotionAmount: 0.8, MonoCompatible: true,
			ReverbAmount: 0.3, DelayAmount: 0.6,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 1.0, LFORateMax: 16.0,
			VibratoFreqMin: 6.0, VibratoFreqMax: 12.0,
			VibratoDepthMin: 5.0, VibratoDepthMax: 20.0,
			TremoloAmount: 0.7,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthWavetable},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             3,
	},
	domain.RoleDrone: {
		Role: domain.RoleDrone,
		Envelope: EnvelopePolicy{
			AttackMin: 1.0, AttackMax: 3.0,
			DecayMin: 0.5, DecayMax: 2.0,
			SustainMin: 0.8, SustainMax: 1.0,
			ReleaseMin: 2.0, ReleaseMax: 10.0,
			Curve: domain.CurveLogarithmic, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 100, CutoffMax: 800,
			ResonanceMin: 0.1, ResonanceMax: 0.3,
			EnvAmountMin: 0.1, EnvAmountMax: 0.3,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 1.0, MotionAmount: 0.3, MonoCompatible: false,
			ReverbAmount: 0.9, DelayAmount: 0.2,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.05, LFORateMax: 1.0,
			VibratoFreqMin: 1.0, VibratoFreqMax: 4.0,
			VibratoDepthMin: 2.0, VibratoDepthMax: 10.0,
			TremoloAmount: 0.2,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthAdditive, domain.SynthGranular},
		TempoScaling:         false,
		KeyAwareness:         true,
		Priority:             1,
	},
	domain.RoleRhythm: {
		Role: domain.RoleRhythm,
		Envelope: EnvelopePolicy{
			AttackMin: 0.001, AttackMax: 0.01,
			DecayMin: 0.05, DecayMax: 0.2,
			SustainMin: 0.1, SustainMax: 0.4,
			ReleaseMin: 0.05, ReleaseMax: 0.3,
			Curve: domain.CurveExponential, Type: domain.EnvAD,
		},
		Filter: FilterPolicy{
			CutoffMin: 800, CutoffMax: 4000,
			ResonanceMin: 0.4, ResonanceMax: 0.8,
			EnvAmountMin: 0.3, EnvAmountMax: 0.7,
			PreferredType: domain.FilterBandPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.2, MotionAmount: 0.9, MonoCompatible: true,
			ReverbAmount: 0.1, DelayAmount: 0.8,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 2.0, LFORateMax: 32.0,
			VibratoFreqMin: 8.0, VibratoFreqMax: 20.0,
			VibratoDepthMin: 10.0, VibratoDepthMax: 40.0,
			TremoloAmount: 0.8,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthWavetable},
		TempoScaling:         true,
		KeyAwareness:         false,
		Priority:             4,
	},
	domain.RoleBell: {
		Role: domain.RoleBell,
		Envelope: EnvelopePolicy{
			AttackMin: 0.01, AttackMax: 0.05,
			DecayMin: 0.2, DecayMax: 1.5,
			SustainMin: 0.1, SustainMax: 0.3,
			ReleaseMin: 0.5, ReleaseMax: 3.0,
			Curve: domain.CurveLogarithmic, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 1500, CutoffMax: 8000,
			ResonanceMin: 0.2, ResonanceMax: 0.5,
			EnvAmountMin: 0.1, EnvAmountMax: 0.4,
			PreferredType: domain.FilterHighPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.6, MotionAmount: 0.4, MonoCompatible: true,
			ReverbAmount: 0.5, DelayAmount: 0.3,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.5, LFORateMax: 4.0,
			VibratoFreqMin: 3.0, VibratoFreqMax: 8.0,
			VibratoDepthMin: 5.0, VibratoDepthMax: 15.0,
			TremoloAmount: 0.3,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthAdditive, domain.SynthFM},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             3,
	},
	domain.RoleChord: {
		Role: domain.RoleChord,
		Envelope: EnvelopePolicy{
			AttackMin: 0.1, AttackMax: 0.5,
			DecayMin: 0.2, DecayMax: 0.8,
			SustainMin: 0.6, SustainMax: 0.9,
			ReleaseMin: 0.5, ReleaseMax: 2.0,
			Curve: domain.CurveLinear, Type: domain.EnvADSR,
		},
		Filter: FilterPolicy{
			CutoffMin: 400, CutoffMax: 1200,
			ResonanceMin: 0.1, ResonanceMax: 0.4,
			EnvAmountMin: 0.2, EnvAmountMax: 0.5,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.8, MotionAmount: 0.5, MonoCompatible: true,
			ReverbAmount: 0.6, DelayAmount: 0.4,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.2, LFORateMax: 2.0,
			VibratoFreqMin: 4.0, VibratoFreqMax: 7.0,
			VibratoDepthMin: 8.0, VibratoDepthMax: 20.0,
			TremoloAmount: 0.4,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthSubtractive, domain.SynthAdditive},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             2,
	},
	domain.RolePluck: {
		Role: domain.RolePluck,
		Envelope: EnvelopePolicy{
			AttackMin: 0.001, AttackMax: 0.01,
			DecayMin: 0.1, DecayMax: 0.5,
			SustainMin: 0.2, SustainMax: 0.5,
			ReleaseMin: 0.2, ReleaseMax: 1.0,
			Curve: domain.CurveExponential, Type: domain.EnvAD,
		},
		Filter: FilterPolicy{
			CutoffMin: 600, CutoffMax: 2000,
			ResonanceMin: 0.2, ResonanceMax: 0.5,
			EnvAmountMin: 0.3, EnvAmountMax: 0.6,
			PreferredType: domain.FilterLowPass,
		},
		Spatial: SpatialPolicy{
			StereoWidth: 0.4, MotionAmount: 0.6, MonoCompatible: true,
			ReverbAmount: 0.3, DelayAmount: 0.5,
		},
		Modulation: ModulationPolicy{
			LFORateMin: 0.5, LFORateMax: 8.0,
			VibratoFreqMin: 5.0, VibratoFreqMax: 10.0,
			VibratoDepthMin: 8.0, VibratoDepthMax: 25.0,
			TremoloAmount: 0.5,
		},
		SynthesisPreferences: []domain.SynthesisType{domain.SynthPhysicalModeling, domain.SynthSubtractive},
		TempoScaling:         true,
		KeyAwareness:         true,
		Priority:             3,
	},
}
