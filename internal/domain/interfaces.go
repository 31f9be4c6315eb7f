package domain

import "context"

// SearchResult is a ranked index entry for a query.
type SearchResult struct {
	PresetID string
	Score    float64
}

// Query carries a search query plus its optional musical context.
type Query struct {
	Text  string
	Role  Role    // "" = unspecified
	Tempo float64 // BPM, 0 = unspecified
	Key   string  // "" = unspecified
}

// Normalizer converts a raw preset into the canonical representation.
// Unparsable or unsafe values are defaulted/clamped and recorded as issues,
// never returned as errors.
type Normalizer interface {
	Normalize(raw RawPreset) *NormalizedPreset
}

// SearchIndex ranks indexed presets against a query. Build runs once per
// session; after it returns the index is read-only and safe for concurrent
// searches.
type SearchIndex interface {
	Build(presets []*NormalizedPreset)
	Search(q Query, topK int) []SearchResult
	QueryVector(q Query) []float64
}

// GraphBuilder assembles and validates the DSP node graph for a preset.
// The returned graph is always complete; diagnostics ride on the graph.
type GraphBuilder interface {
	Build(preset *NormalizedPreset) *Graph
}

// Renderer is the external audio collaborator boundary: it turns a
// flattened parameter map into sample data. The core never renders.
type Renderer interface {
	Render(ctx context.Context, params map[string]float64, durationSec float64) ([]float32, error)
}
