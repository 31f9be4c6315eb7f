package domain

// RawPreset is one dialect-specific preset as extracted from a source
// document. Numeric fields keep their source shape (Scalar) until the
// normalizer resolves them. Immutable after parsing.
type RawPreset struct {
	Name            string
	Category        string
	SynthesisType   SynthesisType
	Oscillator      RawOscillator
	Envelope        RawEnvelope
	Filter          RawFilter
	Effects         []RawEffect
	Characteristics SoundCharacteristics
	Topology        TopologicalMetadata
	Role            Role // "" when the source does not declare one
	Metadata        map[string]string
}

// RawOscillator mirrors the oscillator block of a source document.
type RawOscillator struct {
	Types           []OscillatorType
	MixRatios       []Scalar
	Detune          Scalar
	ModulationIndex Scalar
	CarrierRatio    Scalar
	Harmonics       []float64
	MorphRate       Scalar
	TableIndex      Scalar
	GrainDensity    Scalar
	GrainSize       Scalar
	PluckPosition   Scalar
}

// RawEnvelope mirrors the envelope/adsr block of a source document.
type RawEnvelope struct {
	Type    EnvelopeType
	Attack  Scalar
	Decay   Scalar
	Sustain Scalar
	Release Scalar
	Hold    Scalar
	Delay   Scalar
	Curve   EnvelopeCurve
}

// RawFilter mirrors the filter block of a source document.
type RawFilter struct {
	Type           FilterType
	Cutoff         Scalar
	Resonance      Scalar
	EnvelopeAmount Scalar
	Slope          string
}

// RawEffect mirrors one entry of a source document's effect list. Extra
// keeps numeric fields no known effect variant claims.
type RawEffect struct {
	Type      string
	Mix       Scalar
	Feedback  Scalar
	Time      Scalar
	Gain      Scalar
	Amount    Scalar
	Decay     Scalar
	Wet       Scalar
	Rate      Scalar
	Depth     Scalar
	Frequency Scalar
	Density   Scalar
	Threshold Scalar
	Ratio     Scalar
	Extra     map[string]float64
}

// NormalizedPreset is the canonical, unit-consistent preset. Every numeric
// field is resolved: times in seconds, frequencies in Hz, levels in [0,1],
// gains in dB. A compilation mutates its own copy, never a shared instance.
type NormalizedPreset struct {
	Name            string
	Category        string
	SynthesisType   SynthesisType
	Oscillator      Oscillator
	Envelope        Envelope
	Filter          Filter
	Effects         []Effect
	Characteristics SoundCharacteristics
	Topology        TopologicalMetadata
	Role            Role
	Metadata        map[string]string
	Issues          []string
}

// Oscillator is the normalized oscillator section. Detune is a frequency
// ratio (1.0 = no detune). Optional per-variant fields are pointers so a
// missing value is distinguishable from zero.
type Oscillator struct {
	Types           []OscillatorType
	MixRatios       []float64
	Detune          float64
	ModulationIndex *float64
	CarrierRatio    *float64
	Harmonics       []float64
	MorphRateHz     *float64
	TableIndex      *float64
	GrainDensity    *float64
	GrainSize       *float64
}

// Envelope is the normalized envelope section, all times in seconds.
type Envelope struct {
	Type    EnvelopeType
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
	Hold    float64
	Delay   float64
	Curve   EnvelopeCurve
}

// Filter is the normalized filter section.
type Filter struct {
	Type           FilterType
	Cutoff         float64 // Hz
	Resonance      float64 // [0,1]
	EnvelopeAmount float64 // [0,1]
	Slope          string
}

// Effect is one normalized effect. Optional fields are pointers; Extra is a
// passthrough side table for fields no known effect variant claims.
type Effect struct {
	Type      string
	Mix       float64
	Feedback  *float64
	Time      *float64
	Gain      *float64 // dB
	Amount    *float64
	Decay     *float64
	Wet       *float64
	Rate      *float64 // Hz
	Depth     *float64
	Frequency *float64 // Hz
	Density   *float64
	Threshold *float64 // dB
	Ratio     *float64
	Extra     map[string]float64
}

// Clone returns a deep copy safe to mutate during one compilation.
func (p *NormalizedPreset) Clone() *NormalizedPreset {
	c := *p
	c.Oscillator = p.Oscillator.clone()
	if p.Effects != nil {
		c.Effects = make([]Effect, len(p.Effects))
		for i := range p.Effects {
			c.Effects[i] = p.Effects[i].clone()
		}
	}
	c.Characteristics.Emotional = append([]string(nil), p.Characteristics.Emotional...)
	c.Issues = append([]string(nil), p.Issues...)
	if p.Metadata != nil {
		c.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func (o Oscillator) clone() Oscillator {
	c := o
	c.Types = append([]OscillatorType(nil), o.Types...)
	c.MixRatios = append([]float64(nil), o.MixRatios...)
	c.Harmonics = append([]float64(nil), o.Harmonics...)
	c.ModulationIndex = clonePtr(o.ModulationIndex)
	c.CarrierRatio = clonePtr(o.CarrierRatio)
	c.MorphRateHz = clonePtr(o.MorphRateHz)
	c.TableIndex = clonePtr(o.TableIndex)
	c.GrainDensity = clonePtr(o.GrainDensity)
	c.GrainSize = clonePtr(o.GrainSize)
	return c
}

func (e Effect) clone() Effect {
	c := e
	c.Feedback = clonePtr(e.Feedback)
	c.Time = clonePtr(e.Time)
	c.Gain = clonePtr(e.Gain)
	c.Amount = clonePtr(e.Amount)
	c.Decay = clonePtr(e.Decay)
	c.Wet = clonePtr(e.Wet)
	c.Rate = clonePtr(e.Rate)
	c.Depth = clonePtr(e.Depth)
	c.Frequency = clonePtr(e.Frequency)
	c.Density = clonePtr(e.Density)
	c.Threshold = clonePtr(e.Threshold)
	c.Ratio = clonePtr(e.Ratio)
	if e.Extra != nil {
		c.Extra = make(map[string]float64, len(e.Extra))
		for k, v := range e.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
