// Package graph assembles the DSP control graph for a normalized preset
// and validates its topology and parameter ranges.
package graph

import (
	"fmt"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
)

// Builder maps a normalized preset onto the fixed signal order:
// source, shaper, filter, effects, spatial, safety chain.
type Builder struct {
	safety config.SafetyConfig
}

func NewBuilder(cfg *config.AppConfig) *Builder {
	return &Builder{safety: cfg.Safety}
}

// Build always returns a complete graph; validation results ride on it.
func (b *Builder) Build(preset *domain.NormalizedPreset) *domain.Graph {
	g := &domain.Graph{
		Buses: map[string][]string{
			domain.BusModLFO:      nil,
			domain.BusModEnv:      nil,
			domain.BusMacroMotion: nil,
		},
	}

	b.addOscillators(g, preset)
	b.addEnvelope(g, preset)
	b.addFilter(g, preset)
	b.addEffects(g, preset)
	b.addStereo(g)
	b.addSafetyChain(g)
	b.connectSignalChain(g)
	b.addModulation(g)

	g.ValidationErrors = b.validate(g)
	g.ValidationPassed = len(g.ValidationErrors) == 0
	return g
}

func (b *Builder) addOscillators(g *domain.Graph, preset *domain.NormalizedPreset) {
	osc := preset.Oscillator
	for i, oscType := range osc.Types {
		mix := 1.0
		if i < len(osc.MixRatios) {
			mix = osc.MixRatios[i]
		}
		params := map[string]float64{
			"mix":    mix,
			"detune": osc.Detune,
		}
		switch oscType {
		case domain.OscFM:
			params["modulation_index"] = orDefault(osc.ModulationIndex, 1.0)
			params["carrier_ratio"] = orDefault(osc.CarrierRatio, 1.0)
		case domain.OscWavetable:
			params["table_index"] = orDefault(osc.TableIndex, 0)
			params["morph_rate"] = orDefault(osc.MorphRateHz, 0.1)
		case domain.OscGranular:
			params["grain_density"] = orDefault(osc.GrainDensity, 80)
			params["grain_size"] = orDefault(osc.GrainSize, 0.03)
		case domain.OscAdditive, domain.OscKarplusStrong:
			harmonics := osc.Harmonics
			if len(harmonics) == 0 {
				harmonics = []float64{1.0}
			}
			for h, level := range harmonics {
				params[fmt.Sprintf("harmonic_%d", h)] = level
			}
		}
		g.Nodes = append(g.Nodes, &domain.GraphNode{
			ID:         fmt.Sprintf("osc_%d_%s", i, oscType),
			Type:       domain.NodeOscillator,
			Parameters: params,
			Attributes: map[string]string{"type": string(oscType)},
			Outputs:    []string{"audio_out"},
		})
	}
}

func (b *Builder) addEnvelope(g *domain.Graph, preset *domain.NormalizedPreset) {
	env := preset.Envelope
	params := map[string]float64{
		"attack":  env.Attack,
		"decay":   env.Decay,
		"sustain": env.Sustain,
		"release": env.Release,
	}
	if env.Hold > 0 {
		params["hold"] = env.Hold
	}
	if env.Delay > 0 {
		params["delay"] = env.Delay
	}
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:         "env_main",
		Type:       domain.NodeEnvelope,
		Parameters: params,
		Attributes: map[string]string{
			"type":  string(env.Type),
			"curve": string(env.Curve),
		},
		Inputs:  []string{"gate_in"},
		Outputs: []string{"env_out"},
	})
	g.Buses[domain.BusModEnv] = append(g.Buses[domain.BusModEnv], "env_main")
}

func (b *Builder) addFilter(g *domain.Graph, preset *domain.NormalizedPreset) {
	f := preset.Filter
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:   "filter_main",
		Type: domain.NodeFilter,
		Parameters: map[string]float64{
			"cutoff":          f.Cutoff,
			"resonance":       f.Resonance,
			"envelope_amount": f.EnvelopeAmount,
		},
		Attributes: map[string]string{
			"type":  string(f.Type),
			"slope": f.Slope,
		},
		Inputs:  []string{"audio_in", "mod_in"},
		Outputs: []string{"audio_out"},
	})
}

func (b *Builder) addEffects(g *domain.Graph, preset *domain.NormalizedPreset) {
	for i, eff := range preset.Effects {
		params := map[string]float64{"mix": eff.Mix}
		setIf(params, "feedback", eff.Feedback)
		setIf(params, "time", eff.Time)
		setIf(params, "gain", eff.Gain)
		setIf(params, "amount", eff.Amount)
		setIf(params, "decay", eff.Decay)
		setIf(params, "wet", eff.Wet)
		setIf(params, "rate", eff.Rate)
		setIf(params, "depth", eff.Depth)
		setIf(params, "frequency", eff.Frequency)
		setIf(params, "density", eff.Density)
		setIf(params, "threshold", eff.Threshold)
		setIf(params, "ratio", eff.Ratio)
		for k, v := range eff.Extra {
			params[k] = v
		}
		g.Nodes = append(g.Nodes, &domain.GraphNode{
			ID:         fmt.Sprintf("fx_%d_%s", i, eff.Type),
			Type:       domain.NodeEffect,
			Parameters: params,
			Attributes: map[string]string{"type": eff.Type},
			Inputs:     []string{"audio_in"},
			Outputs:    []string{"audio_out"},
		})
	}
}

func (b *Builder) addStereo(g *domain.Graph) {
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:         "stereo_width",
		Type:       domain.NodeStereo,
		Parameters: map[string]float64{"width": 1.0, "pan": 0.0},
		Inputs:     []string{"audio_in"},
		Outputs:    []string{"left_out", "right_out"},
	})
}

func (b *Builder) addSafetyChain(g *domain.Graph) {
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:   "limiter_tp",
		Type: domain.NodeLimiter,
		Parameters: map[string]float64{
			"threshold": -1.0, // dBTP
			"release":   0.1,
			"lookahead": 0.005,
		},
		Inputs:  []string{"audio_in"},
		Outputs: []string{"audio_out"},
	})
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:         "clipper_soft",
		Type:       domain.NodeClipper,
		Parameters: map[string]float64{"threshold": -3.0, "ratio": 0.1},
		Inputs:     []string{"audio_in"},
		Outputs:    []string{"audio_out"},
	})
}

// connectSignalChain wires oscillators into the filter, chains the effects,
// then runs stereo into the clipper/limiter pair.
func (b *Builder) connectSignalChain(g *domain.Graph) {
	filter := g.Node(domain.NodeFilter)
	envelope := g.Node(domain.NodeEnvelope)
	stereo := g.Node(domain.NodeStereo)
	clipper := g.Node(domain.NodeClipper)
	limiter := g.Node(domain.NodeLimiter)

	for _, osc := range g.NodesOf(domain.NodeOscillator) {
		g.Connections = append(g.Connections, domain.Connection{
			From: osc.ID, FromPort: "audio_out", To: filter.ID, ToPort: "audio_in",
		})
	}
	g.Connections = append(g.Connections, domain.Connection{
		From: envelope.ID, FromPort: "env_out", To: filter.ID, ToPort: "mod_in",
	})

	current := filter
	for _, fx := range g.NodesOf(domain.NodeEffect) {
		g.Connections = append(g.Connections, domain.Connection{
			From: current.ID, FromPort: "audio_out", To: fx.ID, ToPort: "audio_in",
		})
		current = fx
	}
	g.Connections = append(g.Connections, domain.Connection{
		From: current.ID, FromPort: "audio_out", To: stereo.ID, ToPort: "audio_in",
	})
	g.Connections = append(g.Connections,
		domain.Connection{From: stereo.ID, FromPort: "left_out", To: clipper.ID, ToPort: "audio_in"},
		domain.Connection{From: stereo.ID, FromPort: "right_out", To: clipper.ID, ToPort: "audio_in"},
		domain.Connection{From: clipper.ID, FromPort: "audio_out", To: limiter.ID, ToPort: "audio_in"},
	)
}

func (b *Builder) addModulation(g *domain.Graph) {
	g.Nodes = append(g.Nodes, &domain.GraphNode{
		ID:         "lfo_main",
		Type:       domain.NodeLFO,
		Parameters: map[string]float64{"frequency": 0.5, "depth": 0.1},
		Attributes: map[string]string{"waveform": "sine"},
		Outputs:    []string{"lfo_out"},
	})
	g.Buses[domain.BusModLFO] = append(g.Buses[domain.BusModLFO], "lfo_main")

	filter := g.Node(domain.NodeFilter)
	g.Connections = append(g.Connections, domain.Connection{
		From: "lfo_main", FromPort: "lfo_out", To: filter.ID, ToPort: "mod_in",
	})
}

// validate checks topology and parameter ranges: no cycles, safe filter
// and delay settings, and no disconnected audio nodes. Modulation-only
// nodes (lfo, envelope) are exempt from the connectivity requirement.
func (b *Builder) validate(g *domain.Graph) []string {
	var errors []string

	if hasCycle(g) {
		errors = append(errors, "feedback loop detected in graph")
	}

	for _, node := range g.Nodes {
		switch node.Type {
		case domain.NodeFilter:
			cutoff := node.Parameters["cutoff"]
			if cutoff < b.safety.CutoffMinHz || cutoff > b.safety.CutoffMaxHz {
				errors = append(errors, fmt.Sprintf("filter cutoff %gHz out of range [%g, %g]",
					cutoff, b.safety.CutoffMinHz, b.safety.CutoffMaxHz))
			}
			if res := node.Parameters["resonance"]; res > b.safety.ResonanceMax {
				errors = append(errors, fmt.Sprintf("filter resonance %g exceeds maximum %g",
					res, b.safety.ResonanceMax))
			}
		case domain.NodeEffect:
			if node.Attributes["type"] == "delay" {
				if fb := node.Parameters["feedback"]; fb > b.safety.FeedbackMax {
					errors = append(errors, fmt.Sprintf("delay feedback %g exceeds maximum %g",
						fb, b.safety.FeedbackMax))
				}
			}
		}
	}

	connected := make(map[string]struct{})
	for _, c := range g.Connections {
		connected[c.From] = struct{}{}
		connected[c.To] = struct{}{}
	}
	for _, node := range g.Nodes {
		if node.Type == domain.NodeLFO || node.Type == domain.NodeEnvelope {
			continue
		}
		if _, ok := connected[node.ID]; !ok {
			errors = append(errors, fmt.Sprintf("node %s is not connected to signal chain", node.ID))
		}
	}
	return errors
}

// hasCycle runs DFS with a recursion stack over the connection edges.
func hasCycle(g *domain.Graph) bool {
	adjacency := make(map[string][]string)
	for _, c := range g.Connections {
		adjacency[c.From] = append(adjacency[c.From], c.To)
	}

	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		inStack[id] = true
		for _, next := range adjacency[id] {
			if inStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		inStack[id] = false
		return false
	}

	for _, node := range g.Nodes {
		if !visited[node.ID] && visit(node.ID) {
			return true
		}
	}
	return false
}

func orDefault(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func setIf(params map[string]float64, key string, p *float64) {
	if p != nil {
		params[key] = *p
	}
}
