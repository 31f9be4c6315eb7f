// Package preset ingests source documents in the supported JSON dialects
// and produces raw presets for normalization.
package preset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"synthgraph/internal/domain"
	"synthgraph/internal/errs"
)

// soundIndicators mark an untyped top-level object as a sound preset
// during the heuristic scan.
var soundIndicators = []string{"oscillator", "envelope", "adsr", "frequency", "amplitude", "filter"}

// Parser converts JSON documents into raw presets. A document is dispatched
// by its top-level keys: "instruments", "groups", "guitar_types", or a
// heuristic scan over untyped objects.
type Parser struct {
	log *slog.Logger
}

// NewParser returns a parser that reports per-file failures on log.
func NewParser(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

// ParseFiles loads every path, isolating failures: a malformed document is
// logged and skipped, never aborting the remaining files. The returned
// errors mirror what was logged, one per failed file.
func (p *Parser) ParseFiles(paths []string) ([]domain.RawPreset, []error) {
	var all []domain.RawPreset
	var failures []error
	for _, path := range paths {
		presets, err := p.ParseFile(path)
		if err != nil {
			p.log.Warn("skipping preset source", "path", path, "error", err)
			failures = append(failures, err)
			continue
		}
		p.log.Debug("loaded preset source", "path", path, "presets", len(presets))
		all = append(all, presets...)
	}
	return all, failures
}

// ParseFile reads one source file. The file name (without extension)
// becomes the category label of every preset it yields.
func (p *Parser) ParseFile(path string) ([]domain.RawPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewSourceError(path, err)
	}
	base := filepath.Base(path)
	category := strings.TrimSuffix(base, filepath.Ext(base))
	presets, err := p.Parse(data, category)
	if err != nil {
		return nil, errs.NewSourceError(path, err)
	}
	return presets, nil
}

// Parse extracts presets from a single JSON document. The category labels
// every preset produced from this document.
func (p *Parser) Parse(data []byte, category string) ([]domain.RawPreset, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	switch {
	case doc["instruments"] != nil:
		return parseInstruments(doc["instruments"], category)
	case doc["groups"] != nil:
		return parseGroups(doc["groups"], category)
	case doc["guitar_types"] != nil:
		return parseGuitarTypes(doc["guitar_types"], category)
	default:
		return parseHeuristic(doc, category)
	}
}

// instrumentDoc is the electronic-track dialect: camelCase keys, envelope
// under "adsr", effects under "effects".
type instrumentDoc struct {
	SynthesisType   string             `json:"synthesisType"`
	Oscillator      oscillatorDoc      `json:"oscillator"`
	ADSR            envelopeDoc        `json:"adsr"`
	Filter          filterDoc          `json:"filter"`
	Effects         []effectDoc        `json:"effects"`
	Characteristics characteristicsDoc `json:"soundCharacteristics"`
	Topology        topologyDoc        `json:"topologicalMetadata"`
	Role            string             `json:"role"`
	Metadata        map[string]any     `json:"metadata"`
}

// groupDoc is the group dialect: snake_case keys, effects under "fx".
type groupDoc struct {
	SynthesisType   string             `json:"synthesis_type"`
	Oscillator      oscillatorDoc      `json:"oscillator"`
	Envelope        envelopeDoc        `json:"envelope"`
	Filter          filterDoc          `json:"filter"`
	FX              []effectDoc        `json:"fx"`
	Characteristics characteristicsDoc `json:"sound_characteristics"`
	Topology        topologyDoc        `json:"topological_metadata"`
	Role            string             `json:"role"`
}

// guitarTypeDoc is one entry of the guitar dialect; its groups hold the
// actual presets.
type guitarTypeDoc struct {
	Groups map[string]guitarGroupDoc `json:"groups"`
}

type guitarGroupDoc struct {
	Harmonics       harmonicsDoc       `json:"harmonics"`
	Envelope        envelopeDoc        `json:"envelope"`
	Filter          filterDoc          `json:"filter"`
	FX              []effectDoc        `json:"fx"`
	Characteristics characteristicsDoc `json:"sound_characteristics"`
	Topology        topologyDoc        `json:"topological_metadata"`
}

type harmonicsDoc struct {
	VibeSet []float64 `json:"vibe_set"`
}

// scanDoc is the heuristic dialect: untyped objects that merely look like
// sound presets. It accepts both key spellings of the typed dialects.
type scanDoc struct {
	SynthesisType      string             `json:"synthesis_type"`
	SynthesisTypeCamel string             `json:"synthesisType"`
	Oscillator         oscillatorDoc      `json:"oscillator"`
	ADSR               *envelopeDoc       `json:"adsr"`
	Envelope           *envelopeDoc       `json:"envelope"`
	Filter             filterDoc          `json:"filter"`
	Effects            []effectDoc        `json:"effects"`
	FX                 []effectDoc        `json:"fx"`
	Characteristics    characteristicsDoc `json:"sound_characteristics"`
	Topology           topologyDoc        `json:"topological_metadata"`
	Role               string             `json:"role"`
}

type oscillatorDoc struct {
	Types           []string        `json:"types"`
	MixRatios       []domain.Scalar `json:"mix_ratios"`
	Detune          domain.Scalar   `json:"detune"`
	ModulationIndex domain.Scalar   `json:"modulation_index"`
	CarrierRatio    domain.Scalar   `json:"carrier_ratio"`
	Harmonics       []float64       `json:"harmonics"`
	MorphRate       domain.Scalar   `json:"morph_rate"`
	TableIndex      domain.Scalar   `json:"table_index"`
	GrainDensity    domain.Scalar   `json:"grain_density"`
	GrainSize       domain.Scalar   `json:"grain_size"`
	PluckPosition   domain.Scalar   `json:"pluck_position"`
}

type envelopeDoc struct {
	Type    string        `json:"type"`
	Attack  domain.Scalar `json:"attack"`
	Decay   domain.Scalar `json:"decay"`
	Sustain domain.Scalar `json:"sustain"`
	Release domain.Scalar `json:"release"`
	Hold    domain.Scalar `json:"hold"`
	Delay   domain.Scalar `json:"delay"`
	Curve   string        `json:"curve"`
}

type filterDoc struct {
	Type           string        `json:"type"`
	Cutoff         domain.Scalar `json:"cutoff"`
	Resonance      domain.Scalar `json:"resonance"`
	EnvelopeAmount domain.Scalar `json:"envelope_amount"`
	Slope          string        `json:"slope"`
}

// effectDoc decodes one effect entry. Known fields get typed slots; any
// remaining numeric field lands in Extra so nothing a source document
// carries is silently lost.
type effectDoc struct {
	Type      string
	Mix       domain.Scalar
	Feedback  domain.Scalar
	Time      domain.Scalar
	Gain      domain.Scalar
	Amount    domain.Scalar
	Decay     domain.Scalar
	Wet       domain.Scalar
	Rate      domain.Scalar
	Depth     domain.Scalar
	Frequency domain.Scalar
	Density   domain.Scalar
	Threshold domain.Scalar
	Ratio     domain.Scalar
	Extra     map[string]float64
}

func (d *effectDoc) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	known := map[string]*domain.Scalar{
		"mix": &d.Mix, "feedback": &d.Feedback, "time": &d.Time,
		"gain": &d.Gain, "amount": &d.Amount, "decay": &d.Decay,
		"wet": &d.Wet, "rate": &d.Rate, "depth": &d.Depth,
		"frequency": &d.Frequency, "density": &d.Density,
		"threshold": &d.Threshold, "ratio": &d.Ratio,
	}
	for key, raw := range fields {
		if key == "type" {
			_ = json.Unmarshal(raw, &d.Type)
			continue
		}
		if slot, ok := known[key]; ok {
			_ = slot.UnmarshalJSON(raw)
			continue
		}
		var num float64
		if err := json.Unmarshal(raw, &num); err == nil {
			if d.Extra == nil {
				d.Extra = make(map[string]float64)
			}
			d.Extra[key] = num
		}
	}
	return nil
}

type characteristicsDoc struct {
	Timbral   string         `json:"timbral"`
	Material  string         `json:"material"`
	Dynamic   string         `json:"dynamic"`
	Emotional []emotionalTag `json:"emotional"`
}

// emotionalTag decodes either a bare string or a weighted object of the
// form {"tag": "dreamy", "weight": 0.8}. Only the tag text survives.
type emotionalTag struct {
	Tag    string
	Weight float64
}

func (t *emotionalTag) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &t.Tag); err == nil {
		return nil
	}
	var obj struct {
		Tag    string  `json:"tag"`
		Weight float64 `json:"weight"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("emotional tag: %w", err)
	}
	t.Tag = obj.Tag
	t.Weight = obj.Weight
	return nil
}

type topologyDoc struct {
	Damping            string `json:"damping"`
	SpectralComplexity string `json:"spectral_complexity"`
	ManifoldPosition   string `json:"manifold_position"`
}

func parseInstruments(raw json.RawMessage, category string) ([]domain.RawPreset, error) {
	var entries map[string]instrumentDoc
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode instruments: %w", err)
	}
	presets := make([]domain.RawPreset, 0, len(entries))
	for name, doc := range entries {
		presets = append(presets, domain.RawPreset{
			Name:            name,
			Category:        category,
			SynthesisType:   synthesisType(doc.SynthesisType),
			Oscillator:      convertOscillator(doc.Oscillator),
			Envelope:        convertEnvelope(doc.ADSR),
			Filter:          convertFilter(doc.Filter),
			Effects:         convertEffects(doc.Effects),
			Characteristics: convertCharacteristics(doc.Characteristics),
			Topology:        convertTopology(doc.Topology),
			Role:            declaredRole(doc.Role),
			Metadata:        stringifyMetadata(doc.Metadata),
		})
	}
	return presets, nil
}

func parseGroups(raw json.RawMessage, category string) ([]domain.RawPreset, error) {
	var entries map[string]groupDoc
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	presets := make([]domain.RawPreset, 0, len(entries))
	for name, doc := range entries {
		presets = append(presets, domain.RawPreset{
			Name:            name,
			Category:        category,
			SynthesisType:   synthesisType(doc.SynthesisType),
			Oscillator:      convertOscillator(doc.Oscillator),
			Envelope:        convertEnvelope(doc.Envelope),
			Filter:          convertFilter(doc.Filter),
			Effects:         convertEffects(doc.FX),
			Characteristics: convertCharacteristics(doc.Characteristics),
			Topology:        convertTopology(doc.Topology),
			Role:            declaredRole(doc.Role),
		})
	}
	return presets, nil
}

// parseGuitarTypes flattens the two-level guitar dialect. Every preset is a
// plucked-string physical model; harmonic content comes from the nested
// vibe set.
func parseGuitarTypes(raw json.RawMessage, category string) ([]domain.RawPreset, error) {
	var types map[string]guitarTypeDoc
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decode guitar_types: %w", err)
	}
	var presets []domain.RawPreset
	for guitarType, typeDoc := range types {
		for name, doc := range typeDoc.Groups {
			harmonics := doc.Harmonics.VibeSet
			if len(harmonics) == 0 {
				harmonics = []float64{1.0}
			}
			presets = append(presets, domain.RawPreset{
				Name:          name,
				Category:      category,
				SynthesisType: domain.SynthPhysicalModeling,
				Oscillator: domain.RawOscillator{
					Types:     []domain.OscillatorType{domain.OscKarplusStrong},
					MixRatios: []domain.Scalar{domain.Number(1.0)},
					Harmonics: harmonics,
				},
				Envelope:        convertEnvelope(doc.Envelope),
				Filter:          convertFilter(doc.Filter),
				Effects:         convertEffects(doc.FX),
				Characteristics: convertCharacteristics(doc.Characteristics),
				Topology:        convertTopology(doc.Topology),
				Metadata:        map[string]string{"guitar_type": guitarType},
			})
		}
	}
	return presets, nil
}

// parseHeuristic scans an untyped document for objects that look like
// sound presets: any value whose raw text mentions a sound indicator.
func parseHeuristic(doc map[string]json.RawMessage, category string) ([]domain.RawPreset, error) {
	var presets []domain.RawPreset
	for name, raw := range doc {
		if !looksLikeSoundPreset(raw) {
			continue
		}
		var entry scanDoc
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		env := entry.Envelope
		if env == nil {
			env = entry.ADSR
		}
		if env == nil {
			env = &envelopeDoc{}
		}
		effects := entry.FX
		if len(effects) == 0 {
			effects = entry.Effects
		}
		synth := entry.SynthesisType
		if synth == "" {
			synth = entry.SynthesisTypeCamel
		}
		presets = append(presets, domain.RawPreset{
			Name:            name,
			Category:        category,
			SynthesisType:   synthesisType(synth),
			Oscillator:      convertOscillator(entry.Oscillator),
			Envelope:        convertEnvelope(*env),
			Filter:          convertFilter(entry.Filter),
			Effects:         convertEffects(effects),
			Characteristics: convertCharacteristics(entry.Characteristics),
			Topology:        convertTopology(entry.Topology),
			Role:            declaredRole(entry.Role),
		})
	}
	return presets, nil
}

func looksLikeSoundPreset(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, indicator := range soundIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func synthesisType(s string) domain.SynthesisType {
	if s == "" {
		return domain.SynthSubtractive
	}
	return domain.SynthesisType(s)
}

func declaredRole(s string) domain.Role {
	if r, ok := domain.ParseRole(s); ok {
		return r
	}
	return ""
}

func convertOscillator(doc oscillatorDoc) domain.RawOscillator {
	types := make([]domain.OscillatorType, 0, len(doc.Types))
	for _, t := range doc.Types {
		types = append(types, domain.OscillatorType(t))
	}
	if len(types) == 0 {
		types = []domain.OscillatorType{domain.OscSine}
	}
	mixRatios := doc.MixRatios
	if len(mixRatios) == 0 {
		mixRatios = []domain.Scalar{domain.Number(1.0)}
	}
	return domain.RawOscillator{
		Types:           types,
		MixRatios:       mixRatios,
		Detune:          doc.Detune,
		ModulationIndex: doc.ModulationIndex,
		CarrierRatio:    doc.CarrierRatio,
		Harmonics:       doc.Harmonics,
		MorphRate:       doc.MorphRate,
		TableIndex:      doc.TableIndex,
		GrainDensity:    doc.GrainDensity,
		GrainSize:       doc.GrainSize,
		PluckPosition:   doc.PluckPosition,
	}
}

func convertEnvelope(doc envelopeDoc) domain.RawEnvelope {
	envType := domain.EnvelopeType(doc.Type)
	if doc.Type == "" {
		envType = domain.EnvADSR
	}
	curve := domain.EnvelopeCurve(doc.Curve)
	if doc.Curve == "" {
		curve = domain.CurveLinear
	}
	sustain := doc.Sustain
	if sustain.IsZero() {
		sustain = domain.Number(1.0)
	}
	return domain.RawEnvelope{
		Type:    envType,
		Attack:  doc.Attack,
		Decay:   doc.Decay,
		Sustain: sustain,
		Release: doc.Release,
		Hold:    doc.Hold,
		Delay:   doc.Delay,
		Curve:   curve,
	}
}

func convertFilter(doc filterDoc) domain.RawFilter {
	filterType := domain.FilterType(doc.Type)
	if doc.Type == "" {
		filterType = domain.FilterLowPass
	}
	cutoff := doc.Cutoff
	if cutoff.IsZero() {
		cutoff = domain.Number(1000.0)
	}
	slope := doc.Slope
	if slope == "" {
		slope = "12dB/oct"
	}
	return domain.RawFilter{
		Type:           filterType,
		Cutoff:         cutoff,
		Resonance:      doc.Resonance,
		EnvelopeAmount: doc.EnvelopeAmount,
		Slope:          slope,
	}
}

func convertEffects(docs []effectDoc) []domain.RawEffect {
	effects := make([]domain.RawEffect, 0, len(docs))
	for _, doc := range docs {
		effectType := doc.Type
		if effectType == "" {
			effectType = "reverb"
		}
		mix := doc.Mix
		if mix.IsZero() {
			mix = domain.Number(1.0)
		}
		effects = append(effects, domain.RawEffect{
			Type:      effectType,
			Mix:       mix,
			Feedback:  doc.Feedback,
			Time:      doc.Time,
			Gain:      doc.Gain,
			Amount:    doc.Amount,
			Decay:     doc.Decay,
			Wet:       doc.Wet,
			Rate:      doc.Rate,
			Depth:     doc.Depth,
			Frequency: doc.Frequency,
			Density:   doc.Density,
			Threshold: doc.Threshold,
			Ratio:     doc.Ratio,
			Extra:     doc.Extra,
		})
	}
	return effects
}

func convertCharacteristics(doc characteristicsDoc) domain.SoundCharacteristics {
	tags := make([]string, 0, len(doc.Emotional))
	for _, e := range doc.Emotional {
		if e.Tag != "" {
			tags = append(tags, e.Tag)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}
	c := domain.SoundCharacteristics{
		Timbral:   doc.Timbral,
		Material:  doc.Material,
		Dynamic:   doc.Dynamic,
		Emotional: tags,
	}
	if c.Timbral == "" {
		c.Timbral = "neutral"
	}
	if c.Material == "" {
		c.Material = "synthetic"
	}
	if c.Dynamic == "" {
		c.Dynamic = "sustained"
	}
	return c
}

func convertTopology(doc topologyDoc) domain.TopologicalMetadata {
	t := domain.TopologicalMetadata{
		Damping:            doc.Damping,
		SpectralComplexity: doc.SpectralComplexity,
		ManifoldPosition:   doc.ManifoldPosition,
	}
	if t.Damping == "" {
		t.Damping = "medium"
	}
	if t.SpectralComplexity == "" {
		t.SpectralComplexity = "medium"
	}
	if t.ManifoldPosition == "" {
		t.ManifoldPosition = "center"
	}
	return t
}

func stringifyMetadata(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
