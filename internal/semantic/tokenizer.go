// Package semantic implements the tokenizer, hash-based embeddings, and
// the in-memory search index that ranks presets against free-text queries.
package semantic

import (
	"regexp"
	"strings"
	"sync"
)

var wordPattern = regexp.MustCompile(`\w+`)

// aliases canonicalizes near-synonyms onto a shared vocabulary token.
var aliases = map[string]string{
	// sound characteristics
	"warm": "warm", "hot": "warm", "cozy": "warm",
	"bright": "bright", "shiny": "bright", "sparkly": "bright",
	"dark": "dark", "moody": "dark", "ominous": "dark",
	"fat": "fat", "thick": "fat",
	"tight": "punchy", "snappy": "punchy",
	"soft": "soft", "gentle": "soft", "smooth": "soft",
	"harsh": "harsh", "rough": "harsh",

	// materials
	"analog": "analog", "vintage": "analog", "retro": "analog",
	"digital": "digital", "modern": "digital", "clean": "digital",
	"wood": "wood", "organic": "wood", "natural": "wood",
	"metal": "metal", "metallic": "metal", "steel": "metal",
	"glass": "glass", "glassy": "glass", "crystalline": "glass",
	"plastic": "plastic", "synthetic": "plastic", "artificial": "plastic",

	// dynamics
	"sustained": "sustained", "long": "sustained", "held": "sustained",
	"percussive": "percussive", "short": "percussive", "punchy": "percussive",
	"evolving": "evolving", "changing": "evolving", "morphing": "evolving",
	"static": "static", "stable": "static", "fixed": "static",

	// emotional tags
	"dreamy": "dreamy", "ethereal": "dreamy", "floating": "dreamy",
	"energetic": "energetic", "exciting": "energetic", "upbeat": "energetic",
	"calm": "calm", "peaceful": "calm", "serene": "calm",
	"aggressive": "aggressive", "intense": "aggressive", "powerful": "aggressive",
	"lush": "lush", "rich": "lush", "full": "lush",
	"minimal": "minimal", "sparse": "minimal", "simple": "minimal",

	// roles
	"pad": "pad", "atmosphere": "pad", "background": "pad",
	"bass": "bass", "low": "bass", "foundation": "bass",
	"lead": "lead", "melody": "lead", "solo": "lead",
	"fx": "fx", "effect": "fx", "processing": "fx",
	"texture": "texture", "ambient": "texture", "soundscape": "texture",
}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an and are as at be by for from has he in is it its of on that the " +
			"to was will with or but not this these they them their there then " +
			"than so if very much more most some any all each every no other " +
			"another such only own same") {
		stopWords[w] = struct{}{}
	}
}

// Tokenizer lowercases, splits on word boundaries, drops stop words,
// canonicalizes through the alias table, and deduplicates while preserving
// first-seen order. Results are cached.
type Tokenizer struct {
	mu    sync.RWMutex
	cache map[string][]string
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{cache: make(map[string][]string)}
}

func (t *Tokenizer) Tokenize(text string) []string {
	t.mu.RLock()
	cached, ok := t.cache[text]
	t.mu.RUnlock()
	if ok {
		return cached
	}

	words := wordPattern.FindAllString(strings.ToLower(strings.TrimSpace(text)), -1)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		canonical := word
		if alias, ok := aliases[word]; ok {
			canonical = alias
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		tokens = append(tokens, canonical)
	}

	t.mu.Lock()
	t.cache[text] = tokens
	t.mu.Unlock()
	return tokens
}
