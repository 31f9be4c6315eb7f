// Package library loads preset files, normalizes them, and owns the built
// search index for the lifetime of a session.
package library

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"synthgraph/internal/config"
	"synthgraph/internal/domain"
	"synthgraph/internal/normalize"
	"synthgraph/internal/preset"
	"synthgraph/internal/semantic"
)

// Library is a loaded, indexed preset corpus. Read-only after Load.
type Library struct {
	Presets []*domain.NormalizedPreset
	Index   *semantic.Index
	Files   int
	Errors  []error

	log *slog.Logger
}

// Load parses every path concurrently, normalizes the results, and builds
// the search index. Per-file parse failures are collected and logged, never
// fatal; Load only errors when no path yields a preset.
func Load(paths []string, cfg *config.AppConfig, log *slog.Logger) (*Library, error) {
	parser := preset.NewParser(log)
	norm := normalize.New(cfg)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		raws     []domain.RawPreset
		loadErrs []error
	)
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			parsed, err := parser.ParseFile(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				loadErrs = append(loadErrs, err)
				return
			}
			raws = append(raws, parsed...)
		}(path)
	}
	wg.Wait()

	// Goroutine completion order varies; sort for a stable index and
	// stable downstream seeds.
	sort.Slice(raws, func(i, j int) bool {
		if raws[i].Category != raws[j].Category {
			return raws[i].Category < raws[j].Category
		}
		return raws[i].Name < raws[j].Name
	})

	presets := make([]*domain.NormalizedPreset, 0, len(raws))
	for _, raw := range raws {
		presets = append(presets, norm.Normalize(raw))
	}

	lib := &Library{
		Presets: presets,
		Index:   semantic.NewIndex(cfg.Search),
		Files:   len(paths) - len(loadErrs),
		Errors:  loadErrs,
		log:     log,
	}
	if len(presets) == 0 {
		return lib, fmt.Errorf("no presets loaded from %d file(s)", len(paths))
	}

	lib.Index.Build(presets)
	log.Info("preset library loaded",
		slog.Int("presets", len(presets)),
		slog.Int("files", lib.Files),
		slog.Int("failed_files", len(loadErrs)))
	return lib, nil
}

// Categories returns the sorted distinct categories of the corpus.
func (l *Library) Categories() []string {
	seen := make(map[string]struct{})
	for _, p := range l.Presets {
		seen[p.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Summary renders a one-line corpus overview: counts, role spread, and the
// most frequent descriptive tags.
func (l *Library) Summary() string {
	roles := make(map[domain.Role]int)
	tags := make(map[string]int)
	for _, p := range l.Presets {
		roles[p.Role]++
		for _, t := range []string{p.Characteristics.Timbral, p.Characteristics.Material, p.Characteristics.Dynamic} {
			if t != "" {
				tags[t]++
			}
		}
		for _, t := range p.Characteristics.Emotional {
			tags[t]++
		}
	}

	roleParts := make([]string, 0, len(roles))
	for _, r := range domain.Roles {
		if n := roles[r]; n > 0 {
			roleParts = append(roleParts, fmt.Sprintf("%s:%d", r, n))
		}
	}

	type tagCount struct {
		tag string
		n   int
	}
	counts := make([]tagCount, 0, len(tags))
	for t, n := range tags {
		counts = append(counts, tagCount{t, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].tag < counts[j].tag
	})
	if len(counts) > 5 {
		counts = counts[:5]
	}
	topTags := make([]string, 0, len(counts))
	for _, c := range counts {
		topTags = append(topTags, c.tag)
	}

	return fmt.Sprintf("%d presets from %d file(s) | roles %s | top tags: %s",
		len(l.Presets), l.Files, strings.Join(roleParts, " "), strings.Join(topTags, ", "))
}
