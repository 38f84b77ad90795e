package embedding

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ragstore/internal/domain"
	"ragstore/internal/port"
)

// Config describes one embedding provider instance.
type Config struct {
	// Provider selects the backend: "local" (OpenAI-compatible server on
	// localhost, e.g. Ollama), "openai", or "mock" (deterministic, for
	// tests and offline use).
	Provider string
	// Model is the embedding model identifier, e.g. "bge-small-en-v1.5".
	Model string
	// BaseURL overrides the provider's default endpoint.
	BaseURL string
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string
	// CacheDir stores per-model manifests; empty means the user cache dir.
	CacheDir string
	// BatchSize caps texts per inference request.
	BatchSize int
}

// Registry hands out one shared embedder per model configuration. Instances
// are constructed once, reused by every component that embeds text, and live
// as long as the registry's owner (the engine). The model's cold start
// happens lazily inside the embedder on first use.
type Registry struct {
	mu     sync.Mutex
	shared map[string]port.Embedder
}

func NewRegistry() *Registry {
	return &Registry{
		shared: make(map[string]port.Embedder),
	}
}

// Embedder returns the shared instance for cfg, constructing it on first
// request.
func (r *Registry) Embedder(cfg Config) (port.Embedder, error) {
	key := cfg.Provider + "/" + cfg.Model + "@" + cfg.BaseURL

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.shared[key]; ok {
		return e, nil
	}
	e, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	r.shared[key] = e
	return e, nil
}

func newEmbedder(cfg Config) (port.Embedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model not set: %w", domain.ErrInvalidArgument)
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "ragstore")
		}
	}

	switch cfg.Provider {
	case "mock":
		dim := KnownDimension(cfg.Model)
		if dim == 0 {
			dim = 384
		}
		return NewMock(cfg.Model, dim), nil

	case "openai":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("api key not found in environment variable %s: %w", cfg.APIKeyEnv, domain.ErrModelUnavailable)
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return newHTTPEmbedder(cfg.Model, baseURL, key, cacheDir, cfg.BatchSize), nil

	case "local", "":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		return newHTTPEmbedder(cfg.Model, baseURL, "", cacheDir, cfg.BatchSize), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.Provider, domain.ErrInvalidArgument)
	}
}
