package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgraph/internal/compiler"
	"synthgraph/internal/config"
	"synthgraph/internal/graph"
	"synthgraph/internal/library"
	"synthgraph/internal/policy"
	"synthgraph/internal/render"
)

const fixtureJSON = `{
  "instruments": {
    "warm_dream": {
      "synthesisType": "subtractive",
      "role": "pad",
      "oscillator": {"types": ["sine", "sawtooth"], "mix_ratios": [0.6, 0.4]},
      "adsr": {"attack": "400ms", "decay": 0.5, "sustain": 0.7, "release": "1.2s"},
      "filter": {"type": "low-pass", "cutoff": 900, "resonance": 0.2},
      "soundCharacteristics": {"timbral": "warm", "material": "analog", "emotional": ["dreamy"]}
    },
    "industrial_scrape": {
      "synthesisType": "granular",
      "role": "fx",
      "oscillator": {"types": ["noise"]},
      "adsr": {"attack": 0.2, "decay": 0.6, "sustain": 0.5, "release": 1.0},
      "filter": {"type": "band-pass", "cutoff": 3000, "resonance": 0.5},
      "soundCharacteristics": {"timbral": "harsh", "material": "metal"}
    }
  }
}`

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pads.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o644))

	cfg := config.Default()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib, err := library.Load([]string{path}, cfg, log)
	require.NoError(t, err)

	comp := compiler.New(lib.Index, lib.Presets, policy.NewManager(log), graph.NewBuilder(cfg), log)
	return New(cfg.Server.Port, lib, comp, render.NewToneRenderer(), log)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	return rec, decoded
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["presets"])
}

func TestPresetsAndCategories(t *testing.T) {
	s := testServer(t)

	rec, body := doJSON(t, s.Handler(), http.MethodGet, "/api/presets", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["presets"], 2)

	rec, body = doJSON(t, s.Handler(), http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"pads"}, body["categories"])
}

func TestSearchEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/api/search",
		map[string]any{"query": "warm analog pad", "top_k": 5})
	assert.Equal(t, http.StatusOK, rec.Code)

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, results)
	first := results[0].(map[string]any)
	assert.Equal(t, "warm_dream", first["PresetID"])
}

func TestCompileEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/api/compile",
		map[string]any{"query": "warm analog pad", "role": "pad", "tempo": 100})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "warm_dream", body["preset_id"])
	assert.Contains(t, body, "graph")
	assert.Contains(t, body, "parameters")
}

func TestRenderEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := doJSON(t, s.Handler(), http.MethodPost, "/api/render",
		map[string]any{"query": "warm analog pad", "duration": 0.1, "return_audio": true})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["fallback"])
	assert.EqualValues(t, render.SampleRate, body["sample_rate"])
	audio, ok := body["audio"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, audio)
}

func TestUnknownRoleRejected(t *testing.T) {
	s := testServer(t)
	for _, path := range []string{"/api/search", "/api/compile", "/api/render"} {
		rec, body := doJSON(t, s.Handler(), http.MethodPost, path,
			map[string]any{"query": "warm analog pad", "role": "kazoo"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, body["error"], "unknown role", path)
	}
}

func TestBadRequestBody(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
