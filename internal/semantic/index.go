package semantic

import (
	"sort"
	"sync"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
)

type entry struct {
	id     string
	vector []float64
	tags   map[string]struct{}
	role   domain.Role
}

// Index is the in-memory semantic search index. Build runs once; after it
// returns, all lookups take only the read lock and may run concurrently.
type Index struct {
	mu        sync.RWMutex
	cfg       config.SearchConfig
	tok       *Tokenizer
	vocab     map[string][]float64
	idf       map[string]float64
	entries   []entry
	totalDocs int
}

func NewIndex(cfg config.SearchConfig) *Index {
	return &Index{
		cfg:   cfg,
		tok:   NewTokenizer(),
		vocab: make(map[string][]float64),
		idf:   make(map[string]float64),
	}
}

// Build indexes the presets: vocabulary vectors, IDF weights, and one
// embedding per preset blending its tag vectors with a short description.
func (ix *Index) Build(presets []*domain.NormalizedPreset) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.vocab = make(map[string][]float64)
	ix.idf = make(map[string]float64)
	ix.entries = ix.entries[:0]
	ix.totalDocs = len(presets)

	docCounts := make(map[string]int)
	presetTokens := make([]map[string]struct{}, len(presets))
	for i, p := range presets {
		tokens := ix.presetTokens(p)
		presetTokens[i] = tokens
		for token := range tokens {
			docCounts[token]++
			if _, ok := ix.vocab[token]; !ok {
				ix.vocab[token] = tokenVector(token, ix.cfg.Dimension)
			}
		}
	}
	for token, count := range docCounts {
		if count > 0 {
			ix.idf[token] = logIDF(ix.totalDocs, count)
		}
	}

	for i, p := range presets {
		ix.entries = append(ix.entries, ix.buildEntry(p, presetTokens[i]))
	}
}

// Search ranks every indexed entry against the query and returns the topK
// best. Ties break on preset ID so results are stable across runs.
func (ix *Index) Search(q domain.Query, topK int) []domain.SearchResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if topK <= 0 {
		topK = ix.cfg.TopK
	}
	queryVec := ix.queryVector(q)
	queryTokens := ix.tok.Tokenize(q.Text)

	results := make([]domain.SearchResult, 0, len(ix.entries))
	for _, e := range ix.entries {
		results = append(results, domain.SearchResult{
			PresetID: e.id,
			Score:    ix.score(queryVec, queryTokens, e),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PresetID < results[j].PresetID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// QueryVector exposes the blended query embedding; the decision engine
// seeds its generator from these bytes.
func (ix *Index) QueryVector(q domain.Query) []float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.queryVector(q)
}

// score is cosine similarity plus an additive IDF boost over shared tags,
// clamped to [0,1].
func (ix *Index) score(queryVec []float64, queryTokens []string, e entry) float64 {
	sim := cosine(queryVec, e.vector)
	boost := 0.0
	for _, token := range queryTokens {
		if _, shared := e.tags[token]; shared {
			boost += ix.idf[token] * ix.cfg.IDFBoost
		}
	}
	score := sim + boost
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// queryVector encodes the query text and folds in the musical context:
// role and key as weighted text embeddings, tempo on dimension 0. The
// vector is renormalized after each blend.
func (ix *Index) queryVector(q domain.Query) []float64 {
	v := ix.encodeText(q.Text)
	if q.Role != "" {
		add(v, ix.encodeText(string(q.Role)), ix.cfg.RoleWeight)
		normalize(v)
	}
	if q.Tempo > 0 {
		tempoNorm := q.Tempo / ix.cfg.TempoCeiling
		if tempoNorm > 1 {
			tempoNorm = 1
		}
		v[0] += ix.cfg.TempoWeight * tempoNorm
		normalize(v)
	}
	if q.Key != "" {
		add(v, ix.encodeText(q.Key), ix.cfg.KeyWeight)
		normalize(v)
	}
	return v
}

// encodeText averages token vectors, generating embeddings on the fly for
// tokens outside the vocabulary. Empty input yields a zero vector.
func (ix *Index) encodeText(text string) []float64 {
	tokens := ix.tok.Tokenize(text)
	vectors := make([][]float64, 0, len(tokens))
	for _, token := range tokens {
		if v, ok := ix.vocab[token]; ok {
			vectors = append(vectors, v)
		} else {
			vectors = append(vectors, tokenVector(token, ix.cfg.Dimension))
		}
	}
	v := meanOf(vectors, ix.cfg.Dimension)
	normalize(v)
	return v
}

func (ix *Index) buildEntry(p *domain.NormalizedPreset, tokens map[string]struct{}) entry {
	description := p.Name + " " + p.Characteristics.Timbral + " " + p.Characteristics.Material
	v := ix.encodeText(description)

	tagVectors := make([][]float64, 0, len(tokens))
	for token := range tokens {
		if tv, ok := ix.vocab[token]; ok {
			tagVectors = append(tagVectors, tv)
		}
	}
	if len(tagVectors) > 0 {
		avg := meanOf(tagVectors, ix.cfg.Dimension)
		add(avg, v, 1.0)
		normalize(avg)
		v = avg
	}
	return entry{id: p.Name, vector: v, tags: tokens, role: p.Role}
}

// presetTokens collects the unique tokens of every text field the index
// covers: name, sound characteristics, and topological metadata.
func (ix *Index) presetTokens(p *domain.NormalizedPreset) map[string]struct{} {
	fields := []string{
		p.Name,
		p.Characteristics.Timbral,
		p.Characteristics.Material,
		p.Characteristics.Dynamic,
		p.Topology.Damping,
		p.Topology.SpectralComplexity,
		p.Topology.ManifoldPosition,
	}
	fields = append(fields, p.Characteristics.Emotional...)

	tokens := make(map[string]struct{})
	for _, field := range fields {
		if field == "" {
			continue
		}
		for _, token := range ix.tok.Tokenize(field) {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}
