package model

import "time"

// Config is the complete runtime configuration.
//
// Hierarchy (highest to lowest priority): CLI flags, VERACITY_* environment
// variables, ~/.veracity/config.yaml, built-in defaults.
type Config struct {
	FastPath FastPathConfig `yaml:"fastpath" mapstructure:"fastpath"`
	Budget   BudgetConfig   `yaml:"budget" mapstructure:"budget"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Probes   ProbesConfig   `yaml:"probes" mapstructure:"probes"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Facts    FactsConfig    `yaml:"facts" mapstructure:"facts"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// FastPathConfig controls the deterministic answer route
type FastPathConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	MaxAgeSeconds  int  `yaml:"max_age_seconds" mapstructure:"max_age_seconds"`
	MinReliability int  `yaml:"min_reliability" mapstructure:"min_reliability"`
}

// MaxAge returns the snapshot freshness window.
func (c FastPathConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}

// BudgetConfig bounds the reasoning loop
type BudgetConfig struct {
	TotalSeconds  int `yaml:"total_seconds" mapstructure:"total_seconds"`
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// Total returns the wall-clock budget for one request.
func (c BudgetConfig) Total() time.Duration {
	return time.Duration(c.TotalSeconds) * time.Second
}

// LLMConfig selects and tunes the model backend
type LLMConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	JuniorModel    string  `yaml:"junior_model" mapstructure:"junior_model"`
	SeniorModel    string  `yaml:"senior_model" mapstructure:"senior_model"`
	APIKey         string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	CallsPerSecond float64 `yaml:"calls_per_second" mapstructure:"calls_per_second"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// ProbesConfig controls diagnostic probe execution
type ProbesConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxConcurrent  int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// SnapshotConfig controls snapshot persistence
type SnapshotConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
}

// FactsConfig points at the optional facts/recipe index
type FactsConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults for a local agent.
func DefaultConfig() *Config {
	return &Config{
		FastPath: FastPathConfig{
			Enabled:        true,
			MaxAgeSeconds:  300,
			MinReliability: 70,
		},
		Budget: BudgetConfig{
			TotalSeconds:  10,
			MaxIterations: 3,
		},
		LLM: LLMConfig{
			Provider:       "ollama",
			JuniorModel:    "llama3.2:3b",
			SeniorModel:    "llama3.1:8b",
			TimeoutSeconds: 30,
			MaxTokens:      1000,
			CallsPerSecond: 2,
			Burst:          4,
		},
		Probes: ProbesConfig{
			TimeoutSeconds: 5,
			MaxConcurrent:  4,
		},
		Snapshot: SnapshotConfig{
			CacheTTLSeconds: 60,
		},
		Output: OutputConfig{},
	}
}
