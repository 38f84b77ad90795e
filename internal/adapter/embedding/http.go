package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ragstore/internal/domain"
)

// HTTPEmbedder talks to an OpenAI-compatible /embeddings endpoint. Local
// inference servers (Ollama, llama.cpp server, LocalAI) expose the same
// shape, so one client covers hosted and local models.
//
// The embedder is safe for concurrent use. The first request carries the
// model's cold start: if it fails it is retried once, and the resolved
// vector dimension is remembered for the process and persisted to the cache
// directory for later runs.
type HTTPEmbedder struct {
	model     string
	baseURL   string
	apiKey    string
	batchSize int
	cacheDir  string
	client    *http.Client

	mu     sync.Mutex
	dim    int
	warmed bool
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func newHTTPEmbedder(model, baseURL, apiKey, cacheDir string, batchSize int) *HTTPEmbedder {
	if batchSize <= 0 {
		batchSize = 64
	}
	e := &HTTPEmbedder{
		model:     model,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		batchSize: batchSize,
		cacheDir:  cacheDir,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		dim: KnownDimension(model),
	}
	if e.dim == 0 {
		e.dim = loadManifest(cacheDir, model)
	}
	return e
}

func (e *HTTPEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	e.mu.Lock()
	if e.dim == 0 && len(all) > 0 {
		e.dim = len(all[0])
		saveManifest(e.cacheDir, e.model, e.dim)
	}
	e.mu.Unlock()

	return all, nil
}

func (e *HTTPEmbedder) embedBatch(texts []string) ([][]float32, error) {
	vectors, err := e.post(texts)
	if err == nil {
		e.mu.Lock()
		e.warmed = true
		e.mu.Unlock()
		return vectors, nil
	}

	e.mu.Lock()
	warmed := e.warmed
	e.mu.Unlock()

	if !warmed {
		// One retry: the server may have been loading weights.
		if vectors, retryErr := e.post(texts); retryErr == nil {
			e.mu.Lock()
			e.warmed = true
			e.mu.Unlock()
			return vectors, nil
		}
		return nil, fmt.Errorf("model %q at %s: %w (%v)", e.model, e.baseURL, domain.ErrModelUnavailable, err)
	}
	return nil, fmt.Errorf("model %q: %w (%v)", e.model, domain.ErrEmbedding, err)
}

func (e *HTTPEmbedder) post(texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, preview)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %v", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}
	return vectors, nil
}

func (e *HTTPEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dim
}

func (e *HTTPEmbedder) ModelName() string {
	return e.model
}

// manifest cache: remembers probed dimensions for models outside the
// built-in table, so a restart does not need a live server to know them.

type manifest struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

func manifestPath(cacheDir, model string) string {
	name := strings.ReplaceAll(model, string(filepath.Separator), "-") + ".json"
	return filepath.Join(cacheDir, name)
}

func loadManifest(cacheDir, model string) int {
	if cacheDir == "" {
		return 0
	}
	data, err := os.ReadFile(manifestPath(cacheDir, model))
	if err != nil {
		return 0
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil || m.Model != model {
		return 0
	}
	return m.Dimension
}

func saveManifest(cacheDir, model string, dim int) {
	if cacheDir == "" || dim == 0 {
		return
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return
	}
	data, err := json.Marshal(manifest{Model: model, Dimension: dim})
	if err != nil {
		return
	}
	os.WriteFile(manifestPath(cacheDir, model), data, 0644)
}
