package embedding

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ragstore/internal/domain"
)

func embeddingServer(t *testing.T, dim int, fail *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if fail != nil && fail.Load() > 0 {
			fail.Add(-1)
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var resp embeddingResponse
		for i := range req.Input {
			vec := make([]float32, dim)
			vec[0] = 1
			resp.Data = append(resp.Data, embeddingData{Embedding: vec, Index: i})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPEmbedderEmbed(t *testing.T) {
	srv := embeddingServer(t, 4, nil)
	defer srv.Close()

	e := newHTTPEmbedder("custom-model", srv.URL, "", "", 2)

	vecs, err := e.Embed([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	for i, vec := range vecs {
		if len(vec) != 4 {
			t.Errorf("vector %d has dimension %d", i, len(vec))
		}
	}

	// Dimension is probed from the first response for unknown models.
	if e.Dimension() != 4 {
		t.Errorf("expected probed dimension 4, got %d", e.Dimension())
	}
}

func TestHTTPEmbedderKnownDimensionWithoutServer(t *testing.T) {
	e := newHTTPEmbedder("bge-small-en-v1.5", "http://localhost:1", "", "", 0)
	if e.Dimension() != 384 {
		t.Errorf("expected 384 from the built-in table, got %d", e.Dimension())
	}
}

func TestHTTPEmbedderRetriesColdStart(t *testing.T) {
	var fail atomic.Int32
	fail.Store(1) // first request fails, the retry succeeds

	srv := embeddingServer(t, 4, &fail)
	defer srv.Close()

	e := newHTTPEmbedder("custom-model", srv.URL, "", "", 0)
	vecs, err := e.Embed([]string{"a"})
	if err != nil {
		t.Fatalf("expected the cold-start retry to recover, got %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vecs))
	}
}

func TestHTTPEmbedderUnavailable(t *testing.T) {
	var fail atomic.Int32
	fail.Store(10) // never recovers

	srv := embeddingServer(t, 4, &fail)
	defer srv.Close()

	e := newHTTPEmbedder("custom-model", srv.URL, "", "", 0)
	_, err := e.Embed([]string{"a"})
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	saveManifest(dir, "custom-model", 512)
	if dim := loadManifest(dir, "custom-model"); dim != 512 {
		t.Errorf("expected 512, got %d", dim)
	}
	if dim := loadManifest(dir, "other-model"); dim != 0 {
		t.Errorf("expected 0 for unknown model, got %d", dim)
	}
	if dim := loadManifest("", "custom-model"); dim != 0 {
		t.Errorf("expected 0 without a cache dir, got %d", dim)
	}
}
