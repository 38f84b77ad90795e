package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the engine and CLI.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// StoreConfig holds storage configuration.
type StoreConfig struct {
	DBPath string `yaml:"db_path"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "local", "openai", "mock"
	Model     string `yaml:"model"`       // e.g., "bge-small-en-v1.5"
	BaseURL   string `yaml:"base_url"`    // Embedding server endpoint
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	CacheDir  string `yaml:"cache_dir"`   // Model manifest cache ("" = user cache dir)
	BatchSize int    `yaml:"batch_size"`
}

// SearchConfig holds default search parameters.
type SearchConfig struct {
	TopK           int     `yaml:"top_k"`
	Threshold      float64 `yaml:"threshold"`
	Mode           string  `yaml:"mode"` // "semantic", "keyword", "hybrid"
	SemanticWeight float64 `yaml:"semantic_weight"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DBPath: "ragstore.db",
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "bge-small-en-v1.5",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 64,
		},
		Search: SearchConfig{
			TopK:           5,
			Threshold:      0,
			Mode:           "semantic",
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragstore.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragstore.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .ragstore/config.yaml
	path = filepath.Join(dir, ".ragstore", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
