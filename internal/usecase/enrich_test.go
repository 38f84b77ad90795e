package usecase

import (
	"fmt"
	"strings"
	"testing"

	"ragstore/internal/domain"
)

func TestEnrichContextFormat(t *testing.T) {
	st, docs, search := newTestSearch(t)
	if _, err := st.CreateCollection("faq", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := docs.Add("refunds are processed within five days", "faq", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := docs.Add("refunds require the original receipt", "faq", nil); err != nil {
		t.Fatal(err)
	}

	enrich := NewEnrich(search)
	result, err := enrich.Run("how do refunds work", "faq", 5, 0, domain.ModeSemantic)
	if err != nil {
		t.Fatal(err)
	}

	if result.Question != "how do refunds work" {
		t.Errorf("unexpected question: %q", result.Question)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}

	blocks := strings.Split(result.Context, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks separated by a blank line, got %d", len(blocks))
	}
	for i, block := range blocks {
		src := result.Sources[i]
		header := fmt.Sprintf("[Source %d] (Score: %.3f, Collection: faq)", i+1, src.Score)
		if !strings.HasPrefix(block, header+"\n") {
			t.Errorf("block %d header mismatch:\n%s\nexpected prefix %q", i+1, block, header)
		}
		if !strings.HasSuffix(block, src.Content) {
			t.Errorf("block %d does not end with the source content", i+1)
		}
	}
}

func TestEnrichNoHits(t *testing.T) {
	st, _, search := newTestSearch(t)
	if _, err := st.CreateCollection("empty", ""); err != nil {
		t.Fatal(err)
	}

	enrich := NewEnrich(search)
	result, err := enrich.Run("anything", "empty", 5, 0, domain.ModeSemantic)
	if err != nil {
		t.Fatal(err)
	}
	if result.Context != "" {
		t.Errorf("expected empty context, got %q", result.Context)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(result.Sources))
	}
}

func TestEnrichPropagatesSearchErrors(t *testing.T) {
	_, _, search := newTestSearch(t)

	enrich := NewEnrich(search)
	if _, err := enrich.Run("q", "missing", 5, 0, domain.ModeSemantic); err == nil {
		t.Error("expected error for missing collection")
	}
}
