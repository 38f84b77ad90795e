package ragstore

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragstore/config"
	"ragstore/internal/domain"
)

func testConfig(dbPath string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Store.DBPath = dbPath
	cfg.Embedding.Provider = "mock"
	return cfg
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "engine_test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	eng, err := Open(testConfig(filepath.Join(tmpDir, "test.db")))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestEngineEndToEnd(t *testing.T) {
	eng := openTestEngine(t)

	if _, err := eng.CreateCollection("faq", "customer questions"); err != nil {
		t.Fatal(err)
	}

	answers := []string{
		"Refunds are processed within five business days.",
		"Shipping is free for orders above fifty euros.",
		"You can change your delivery address in account settings.",
		"Support is available on weekdays from nine to five.",
		"Gift cards never expire and keep their full value.",
	}
	ids, err := eng.AddDocuments(answers, "faq", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 5 {
		t.Fatalf("expected 5 ids, got %d", len(ids))
	}

	coll, err := eng.GetCollection("faq")
	if err != nil {
		t.Fatal(err)
	}
	if coll.DocCount != 5 {
		t.Errorf("expected doc count 5, got %d", coll.DocCount)
	}

	results, err := eng.Search("how are refunds processed", "faq", 3, 0, domain.ModeSemantic)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || len(results) > 3 {
		t.Fatalf("expected between 1 and 3 results, got %d", len(results))
	}
	if results[0].Content != answers[0] {
		t.Errorf("expected the refund answer first, got %q", results[0].Content)
	}

	enriched, err := eng.Enrich("how are refunds processed", "faq", 3, 0, domain.ModeHybrid)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(enriched.Context, "[Source 1]") {
		t.Errorf("context missing source header:\n%s", enriched.Context)
	}
	if !strings.Contains(enriched.Context, answers[0]) {
		t.Errorf("context missing the refund answer:\n%s", enriched.Context)
	}
}

func TestEngineCreateCollectionConflict(t *testing.T) {
	eng := openTestEngine(t)

	if _, err := eng.CreateCollection("faq", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateCollection("faq", "other description"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// The original collection is untouched.
	coll, err := eng.GetCollection("faq")
	if err != nil {
		t.Fatal(err)
	}
	if coll.Description != "" {
		t.Errorf("conflicting create modified the collection: %+v", coll)
	}
}

func TestEngineDeleteCollectionCascades(t *testing.T) {
	eng := openTestEngine(t)

	if _, err := eng.CreateCollection("faq", ""); err != nil {
		t.Fatal(err)
	}
	id, err := eng.AddDocument("doomed document", "faq", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteCollection("faq"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.GetDocument(id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after cascade, got %v", err)
	}
	if _, err := eng.Search("anything", "faq", 5, 0, domain.ModeSemantic); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound searching a deleted collection, got %v", err)
	}
}

func TestEngineImportExport(t *testing.T) {
	eng := openTestEngine(t)

	if _, err := eng.CreateCollection("faq", ""); err != nil {
		t.Fatal(err)
	}

	tmpDir, err := os.MkdirTemp("", "engine_csv_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "faq.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	w.WriteAll([][]string{
		{"answer", "topic"},
		{"Refunds take five days.", "billing"},
		{"Shipping is free over fifty euros.", "shipping"},
		{"Addresses change in settings.", "account"},
		{"Support works weekdays.", "support"},
		{"Gift cards never expire.", "billing"},
	})
	if err := w.Error(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	count, err := eng.ImportCSV(csvPath, "faq", "answer", []string{"topic"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("expected 5 imported documents, got %d", count)
	}

	coll, err := eng.GetCollection("faq")
	if err != nil {
		t.Fatal(err)
	}
	if coll.DocCount != 5 {
		t.Errorf("expected doc count 5, got %d", coll.DocCount)
	}

	outPath := filepath.Join(tmpDir, "export.csv")
	exported, err := eng.ExportCSV(outPath, "faq")
	if err != nil {
		t.Fatal(err)
	}
	if exported != 5 {
		t.Errorf("expected 5 exported documents, got %d", exported)
	}
}

func TestEngineModelBinding(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "engine_model_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	dbPath := filepath.Join(tmpDir, "test.db")

	eng, err := Open(testConfig(dbPath))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateCollection("faq", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddDocument("persistent document", "faq", nil); err != nil {
		t.Fatal(err)
	}
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}

	// Same model reopens fine and sees the data.
	eng, err = Open(testConfig(dbPath))
	if err != nil {
		t.Fatal(err)
	}
	coll, err := eng.GetCollection("faq")
	if err != nil {
		t.Fatal(err)
	}
	if coll.DocCount != 1 {
		t.Errorf("expected doc count 1 after reopen, got %d", coll.DocCount)
	}
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}

	// A different model is refused: its vectors would not be comparable.
	cfg := testConfig(dbPath)
	cfg.Embedding.Model = "bge-large-en-v1.5"
	if _, err := Open(cfg); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for a different model, got %v", err)
	}
}

func TestEngineNilConfigUsesDefaults(t *testing.T) {
	// Defaults point at the local provider; the constructor itself must not
	// need a live server, only a writable default db path.
	tmpDir, err := os.MkdirTemp("", "engine_default_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	eng, err := Open(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	if _, err := os.Stat("ragstore.db"); err != nil {
		t.Errorf("expected default database file: %v", err)
	}
}
