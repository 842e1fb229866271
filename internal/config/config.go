// Package config loads runtime configuration from airpath.yaml plus
// AIRPATH_* environment overrides. The bundled data stores and the model
// file live under DataDir; their absence is handled per-tool, not here.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the offline agent.
type Config struct {
	// ModelPath is the local GGUF model artifact.
	ModelPath string `yaml:"model_path"`
	// ServerBinary is the llama-server executable the backends spawn.
	ServerBinary string `yaml:"server_binary"`
	// DataDir holds the bundled stores (airports.db, rules.json).
	DataDir string `yaml:"data_dir"`

	// ContextWindow is the model context size in tokens.
	ContextWindow int `yaml:"context_window"`
	// MaxTokens caps tokens per generation.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature"`

	// MaxToolIterations bounds the tool-calling loop per turn.
	MaxToolIterations int `yaml:"max_tool_iterations"`
	// ToolResultBudget caps tool output characters fed back into the prompt.
	ToolResultBudget int `yaml:"tool_result_budget"`
	// HistoryWindow is how many prior turns the prompt includes.
	HistoryWindow int `yaml:"history_window"`

	// ConfigDir is where airpath.yaml lives; set at load time.
	ConfigDir string `yaml:"-"`
}

// Defaults chosen for a ~2k-token context local model.
const (
	defaultContextWindow     = 2048
	defaultMaxTokens         = 512
	defaultTemperature       = 0.7
	defaultMaxToolIterations = 5
	defaultToolResultBudget  = 2000
	defaultHistoryWindow     = 6
)

// DefaultConfigDir returns the project-local .airpath directory if present,
// else ~/.config/airpath.
func DefaultConfigDir() string {
	cwd, _ := os.Getwd()
	local := filepath.Join(cwd, ".airpath")
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "airpath")
}

// AirportsDBPath returns the bundled airports store path.
func (c *Config) AirportsDBPath() string {
	return filepath.Join(c.DataDir, "airports.db")
}

// RulesPath returns the bundled country-rules document path.
func (c *Config) RulesPath() string {
	return filepath.Join(c.DataDir, "rules.json")
}

// New builds config from defaults, the optional airpath.yaml in configDir,
// and AIRPATH_* env overrides (env wins over file).
func New(configDir string) (*Config, error) {
	if configDir == "" {
		if d := os.Getenv("AIRPATH_CONFIG_DIR"); d != "" {
			configDir = d
		} else {
			configDir = DefaultConfigDir()
		}
	}

	cfg := &Config{
		DataDir:           filepath.Join(configDir, "data"),
		ContextWindow:     defaultContextWindow,
		MaxTokens:         defaultMaxTokens,
		Temperature:       defaultTemperature,
		MaxToolIterations: defaultMaxToolIterations,
		ToolResultBudget:  defaultToolResultBudget,
		HistoryWindow:     defaultHistoryWindow,
		ConfigDir:         configDir,
	}

	path := filepath.Join(configDir, "airpath.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("AIRPATH_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("AIRPATH_SERVER_BINARY"); v != "" {
		cfg.ServerBinary = v
	}
	if v := os.Getenv("AIRPATH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("AIRPATH_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("AIRPATH_TOOL_RESULT_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ToolResultBudget = n
		}
	}

	// The iteration cap is a hard safety bound; config can lower but not
	// remove it.
	if cfg.MaxToolIterations <= 0 || cfg.MaxToolIterations > defaultMaxToolIterations {
		cfg.MaxToolIterations = defaultMaxToolIterations
	}
	return cfg, nil
}
