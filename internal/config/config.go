package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SearchConfig configures the semantic index: embedding geometry and the
// context blend weights applied to query vectors.
type SearchConfig struct {
	Dimension    int     `yaml:"dimension"`
	IDFBoost     float64 `yaml:"idf_boost"`
	RoleWeight   float64 `yaml:"role_weight"`
	TempoWeight  float64 `yaml:"tempo_weight"`
	KeyWeight    float64 `yaml:"key_weight"`
	TempoCeiling float64 `yaml:"tempo_ceiling"` // BPM treated as 1.0
	TopK         int     `yaml:"top_k"`
}

// SafetyConfig holds the numeric safety bounds enforced by the normalizer
// and re-checked by graph validation.
type SafetyConfig struct {
	CutoffMinHz  float64 `yaml:"cutoff_min_hz"`
	CutoffMaxHz  float64 `yaml:"cutoff_max_hz"`
	ResonanceMax float64 `yaml:"resonance_max"`
	FeedbackMax  float64 `yaml:"feedback_max"`
	GainMaxDB    float64 `yaml:"gain_max_db"`
}

// RoleDefaults supplies fallback envelope times for a role, in the same
// forms the normalizer accepts ("50ms", "80-250", "1.2s").
type RoleDefaults struct {
	Attack  string `yaml:"attack"`
	Release string `yaml:"release"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// AppConfig is the root configuration structure. It is loaded once before
// compilation begins and treated as read-only afterwards.
type AppConfig struct {
	Search SearchConfig            `yaml:"search"`
	Safety SafetyConfig            `yaml:"safety"`
	Roles  map[string]RoleDefaults `yaml:"roles"`
	Server ServerConfig            `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/synthgraph/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "synthgraph", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Search: SearchConfig{
			Dimension:    128,
			IDFBoost:     0.1,
			RoleWeight:   0.1,
			TempoWeight:  0.05,
			KeyWeight:    0.05,
			TempoCeiling: 200,
			TopK:         10,
		},
		Safety: SafetyConfig{
			CutoffMinHz:  20,
			CutoffMaxHz:  20000,
			ResonanceMax: 0.9,
			FeedbackMax:  0.85,
			GainMaxDB:    12,
		},
		Roles: map[string]RoleDefaults{
			"pad":     {Attack: "200-800", Release: "600-3000"},
			"bass":    {Attack: "5-40", Release: "80-250"},
			"lead":    {Attack: "5-120", Release: "120-600"},
			"fx":      {Attack: "100-500", Release: "500-2000"},
			"texture": {Attack: "200-1000", Release: "1000-5000"},
			"arp":     {Attack: "5-20", Release: "100-500"},
			"drone":   {Attack: "1000-3000", Release: "2000-10000"},
			"rhythm":  {Attack: "1-10", Release: "50-300"},
			"bell":    {Attack: "10-50", Release: "500-3000"},
			"chord":   {Attack: "100-500", Release: "500-2000"},
			"pluck":   {Attack: "1-10", Release: "200-1000"},
		},
		Server: ServerConfig{Port: 8080},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Search.Dimension == 0 {
		cfg.Search.Dimension = def.Search.Dimension
	}
	if cfg.Search.IDFBoost == 0 {
		cfg.Search.IDFBoost = def.Search.IDFBoost
	}
	if cfg.Search.RoleWeight == 0 {
		cfg.Search.RoleWeight = def.Search.RoleWeight
	}
	if cfg.Search.TempoWeight == 0 {
		cfg.Search.TempoWeight = def.Search.TempoWeight
	}
	if cfg.Search.KeyWeight == 0 {
		cfg.Search.KeyWeight = def.Search.KeyWeight
	}
	if cfg.Search.TempoCeiling == 0 {
		cfg.Search.TempoCeiling = def.Search.TempoCeiling
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = def.Search.TopK
	}
	if cfg.Safety.CutoffMinHz == 0 {
		cfg.Safety.CutoffMinHz = def.Safety.CutoffMinHz
	}
	if cfg.Safety.CutoffMaxHz == 0 {
		cfg.Safety.CutoffMaxHz = def.Safety.CutoffMaxHz
	}
	if cfg.Safety.ResonanceMax == 0 {
		cfg.Safety.ResonanceMax = def.Safety.ResonanceMax
	}
	if cfg.Safety.FeedbackMax == 0 {
		cfg.Safety.FeedbackMax = def.Safety.FeedbackMax
	}
	if cfg.Safety.GainMaxDB == 0 {
		cfg.Safety.GainMaxDB = def.Safety.GainMaxDB
	}
	if len(cfg.Roles) == 0 {
		cfg.Roles = def.Roles
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
}
