package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.DBPath != "ragstore.db" {
		t.Errorf("unexpected db path: %s", cfg.Store.DBPath)
	}
	if cfg.Embedding.Provider != "local" || cfg.Embedding.Model != "bge-small-en-v1.5" {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Embedding.BatchSize != 64 {
		t.Errorf("unexpected batch size: %d", cfg.Embedding.BatchSize)
	}
	if cfg.Search.TopK != 5 || cfg.Search.Mode != "semantic" {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.SemanticWeight != 0.7 || cfg.Search.KeywordWeight != 0.3 {
		t.Errorf("unexpected hybrid weights: %+v", cfg.Search)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/ragstore.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DBPath != "ragstore.db" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragstore.yaml")

	data := []byte(`
store:
  db_path: /data/custom.db
embedding:
  provider: mock
search:
  top_k: 10
  mode: hybrid
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DBPath != "/data/custom.db" {
		t.Errorf("db_path not overridden: %s", cfg.Store.DBPath)
	}
	if cfg.Embedding.Provider != "mock" {
		t.Errorf("provider not overridden: %s", cfg.Embedding.Provider)
	}
	if cfg.Search.TopK != 10 || cfg.Search.Mode != "hybrid" {
		t.Errorf("search settings not overridden: %+v", cfg.Search)
	}
	// Untouched keys keep their defaults.
	if cfg.Embedding.Model != "bge-small-en-v1.5" {
		t.Errorf("expected default model, got %s", cfg.Embedding.Model)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DBPath != "ragstore.db" {
		t.Error("expected defaults for a directory without config")
	}

	data := []byte("store:\n  db_path: from-file.db\n")
	if err := os.WriteFile(filepath.Join(dir, "ragstore.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DBPath != "from-file.db" {
		t.Errorf("ragstore.yaml not picked up: %s", cfg.Store.DBPath)
	}

	// The hidden directory variant works too.
	sub := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sub, ".ragstore"), 0755); err != nil {
		t.Fatal(err)
	}
	data = []byte("store:\n  db_path: hidden.db\n")
	if err := os.WriteFile(filepath.Join(sub, ".ragstore", "config.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromDir(sub)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.DBPath != "hidden.db" {
		t.Errorf(".ragstore/config.yaml not picked up: %s", cfg.Store.DBPath)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := DefaultConfig()
	cfg.Store.DBPath = "saved.db"
	cfg.Search.TopK = 7
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Store.DBPath != "saved.db" || loaded.Search.TopK != 7 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
