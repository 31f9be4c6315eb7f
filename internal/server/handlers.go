package server

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"synthgraph/internal/compiler"
	"synthgraph/internal/domain"
	"synthgraph/internal/errs"
	"synthgraph/internal/render"
)

type searchRequest struct {
	Query string  `json:"query"`
	Role  string  `json:"role,omitempty"`
	Tempo float64 `json:"tempo,omitempty"`
	Key   string  `json:"key,omitempty"`
	TopK  int     `json:"top_k,omitempty"`
}

type renderRequest struct {
	Query       string  `json:"query"`
	Role        string  `json:"role,omitempty"`
	Tempo       float64 `json:"tempo,omitempty"`
	Key         string  `json:"key,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	ReturnAudio bool    `json:"return_audio,omitempty"`
}

type presetSummary struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Role          string   `json:"role"`
	SynthesisType string   `json:"synthesis_type"`
	Issues        []string `json:"issues,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"presets": len(s.lib.Presets),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make([]presetSummary, 0, len(s.lib.Presets))
	for _, p := range s.lib.Presets {
		out = append(out, presetSummary{
			Name:          p.Name,
			Category:      p.Category,
			Role:          string(p.Role),
			SynthesisType: string(p.SynthesisType),
			Issues:        p.Issues,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"presets": out})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": s.lib.Categories()})
}

// parseRole validates a request's role string. Empty means unspecified.
func parseRole(s string) (domain.Role, error) {
	if s == "" {
		return "", nil
	}
	role, ok := domain.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrUnknownRole, s)
	}
	return role, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results := s.lib.Index.Search(domain.Query{
		Text:  req.Query,
		Role:  role,
		Tempo: req.Tempo,
		Key:   req.Key,
	}, req.TopK)
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.compiler.Compile(r.Context(), req.Query, compiler.Options{
		Role:  role,
		Tempo: req.Tempo,
		Key:   req.Key,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	duration := req.Duration
	if duration <= 0 {
		duration = 2.0
	}

	res, err := s.compiler.Compile(r.Context(), req.Query, compiler.Options{
		Role:  role,
		Tempo: req.Tempo,
		Key:   req.Key,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	samples, err := s.renderer.Render(r.Context(), res.Parameters, duration)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := map[string]any{
		"preset_id":   res.PresetID,
		"fallback":    true,
		"sample_rate": render.SampleRate,
		"samples":     len(samples),
		"duration":    duration,
		"parameters":  res.Parameters,
	}
	if req.ReturnAudio {
		resp["audio"] = encodeSamples(samples)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// encodeSamples packs float32 PCM little-endian and base64-encodes it.
func encodeSamples(samples []float32) string {
	buf := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNoPresets), errors.Is(err, errs.ErrNoMatch):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrUnknownRole):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", slog.Any("error", err))
	}
}
