// Package compiler ties the pipeline together: search the index, pick the
// best candidate, apply the role policy, infer and apply decisions, and
// build the validated node graph.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"synthgraph/internal/decision"
	"synthgraph/internal/domain"
	"synthgraph/internal/errs"
	"synthgraph/internal/policy"
)

// Options carries the musical context of one compilation.
type Options struct {
	Role  domain.Role // "" = take the candidate's own role
	Tempo float64     // BPM, 0 = default 120
	Key   string
}

// Result is everything one compilation produced. Preset is a private copy;
// the library's presets are never mutated.
type Result struct {
	Query       domain.Query             `json:"query"`
	PresetID    string                   `json:"preset_id"`
	Score       float64                  `json:"score"`
	Preset      *domain.NormalizedPreset `json:"preset"`
	Adjustments policy.Adjustments       `json:"adjustments"`
	Decisions   *domain.Decisions        `json:"decisions"`
	Changes     map[string]any           `json:"changes"`
	Graph       *domain.Graph            `json:"graph"`
	Parameters  map[string]float64       `json:"parameters"`
	Diagnostics []string                 `json:"diagnostics,omitempty"`
}

// Compiler is safe for concurrent use once constructed.
type Compiler struct {
	index    domain.SearchIndex
	presets  map[string]*domain.NormalizedPreset
	policies *policy.Manager
	engine   *decision.Engine
	builder  domain.GraphBuilder
	log      *slog.Logger
}

func New(index domain.SearchIndex, presets []*domain.NormalizedPreset, policies *policy.Manager, builder domain.GraphBuilder, log *slog.Logger) *Compiler {
	byID := make(map[string]*domain.NormalizedPreset, len(presets))
	for _, p := range presets {
		byID[p.Name] = p
	}
	return &Compiler{
		index:    index,
		presets:  byID,
		policies: policies,
		engine:   decision.NewEngine(),
		builder:  builder,
		log:      log,
	}
}

// Compile resolves queryText against the library and produces a complete
// graph for the best match. It returns errs.ErrNoPresets when the library
// is empty and errs.ErrNoMatch when nothing ranks.
func (c *Compiler) Compile(ctx context.Context, queryText string, opts Options) (*Result, error) {
	if len(c.presets) == 0 {
		return nil, errs.ErrNoPresets
	}
	q := domain.Query{Text: queryText, Role: opts.Role, Tempo: opts.Tempo, Key: opts.Key}

	ranked := c.index.Search(q, 1)
	if len(ranked) == 0 {
		return nil, errs.ErrNoMatch
	}
	return c.compile(ctx, ranked[0], q, opts)
}

// CompilePreset runs the pipeline against a caller-chosen library preset
// instead of the top search hit.
func (c *Compiler) CompilePreset(ctx context.Context, presetID, queryText string, opts Options) (*Result, error) {
	if len(c.presets) == 0 {
		return nil, errs.ErrNoPresets
	}
	if _, ok := c.presets[presetID]; !ok {
		return nil, fmt.Errorf("preset %q: %w", presetID, errs.ErrNoMatch)
	}
	q := domain.Query{Text: queryText, Role: opts.Role, Tempo: opts.Tempo, Key: opts.Key}
	return c.compile(ctx, domain.SearchResult{PresetID: presetID}, q, opts)
}

func (c *Compiler) compile(ctx context.Context, best domain.SearchResult, q domain.Query, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, ok := c.presets[best.PresetID]
	if !ok {
		return nil, errs.ErrNoMatch
	}

	tempo := opts.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	preset := source.Clone()
	role := opts.Role
	if role == "" {
		role = preset.Role
	}

	adj := c.policies.Apply(preset, role, tempo, opts.Key)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryVec := c.index.QueryVector(q)
	decisions := c.engine.Infer(decision.Context{
		QueryVector: queryVec,
		Role:        adj.Role,
		Tempo:       tempo,
		Key:         opts.Key,
	})
	changes := c.engine.Apply(preset, decisions)

	diagnostics := append([]string(nil), preset.Issues...)
	diagnostics = append(diagnostics, c.engine.Validate(decisions)...)

	graph := c.builder.Build(preset)
	diagnostics = append(diagnostics, graph.ValidationErrors...)

	res := &Result{
		Query:       q,
		PresetID:    best.PresetID,
		Score:       best.Score,
		Preset:      preset,
		Adjustments: adj,
		Decisions:   decisions,
		Changes:     changes,
		Graph:       graph,
		Parameters:  flattenParameters(preset, decisions),
		Diagnostics: diagnostics,
	}

	if c.log != nil {
		c.log.Info("compiled preset",
			slog.String("query", q.Text),
			slog.String("preset", best.PresetID),
			slog.String("role", string(adj.Role)),
			slog.Float64("score", best.Score),
			slog.Bool("graph_valid", graph.ValidationPassed),
			slog.Int("diagnostics", len(diagnostics)))
	}
	return res, nil
}

// flattenParameters exports the final preset as a flat map for the renderer
// boundary. Decision heads that are not written back onto the preset (sends,
// stereo width, LFO rate) come straight from the decision set.
func flattenParameters(p *domain.NormalizedPreset, d *domain.Decisions) map[string]float64 {
	params := map[string]float64{
		"filter_cutoff":     p.Filter.Cutoff,
		"filter_resonance":  p.Filter.Resonance,
		"oscillator_detune": p.Oscillator.Detune,
		"envelope_attack":   p.Envelope.Attack,
		"envelope_decay":    p.Envelope.Decay,
		"envelope_sustain":  p.Envelope.Sustain,
		"envelope_release":  p.Envelope.Release,
	}
	for _, v := range d.Values {
		if _, ok := params[v.Parameter]; !ok {
			params[v.Parameter] = v.Value
		}
	}
	return params
}
