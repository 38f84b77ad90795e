package searcher

import (
	"math"
	"testing"

	"ragstore/internal/adapter/analyzer"
	"ragstore/internal/adapter/store"
)

func TestHybridMergesBothBranches(t *testing.T) {
	st := newSearchStore(t)
	coll, err := st.CreateCollection("docs", "")
	if err != nil {
		t.Fatal(err)
	}

	tok := analyzer.NewTokenizer()
	// Both documents contain the query term, but only the first is aligned
	// with the query vector.
	added, err := st.AddDocuments("docs", []store.DocumentInput{
		{Content: "refund policy details", Embedding: []float32{1, 0}, Tokens: tok.Tokenize("refund policy details")},
		{Content: "refund exceptions list", Embedding: []float32{0, 1}, Tokens: tok.Tokenize("refund exceptions list")},
	})
	if err != nil {
		t.Fatal(err)
	}

	sem := NewSemantic(&stubEmbedder{vec: []float32{1, 0}}, st, st)
	kw := NewKeyword(st, tok)
	hybrid := NewHybrid(sem, kw, 0.7, 0.3)

	results, err := hybrid.Search("refund", coll, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Identical keyword scores, so the semantic branch decides the order.
	if results[0].DocumentID != added[0].ID {
		t.Errorf("expected the aligned document first, got %d", results[0].DocumentID)
	}
	if results[0].Score <= results[1].Score {
		t.Error("expected strictly higher combined score for the aligned document")
	}
}

func TestHybridWeightedSum(t *testing.T) {
	st := newSearchStore(t)
	coll, err := st.CreateCollection("docs", "")
	if err != nil {
		t.Fatal(err)
	}

	tok := analyzer.NewTokenizer()
	if _, err := st.AddDocuments("docs", []store.DocumentInput{
		{Content: "refund policy", Embedding: []float32{1, 0}, Tokens: tok.Tokenize("refund policy")},
	}); err != nil {
		t.Fatal(err)
	}

	sem := NewSemantic(&stubEmbedder{vec: []float32{1, 0}}, st, st)
	kw := NewKeyword(st, tok)

	semOnly, err := sem.Search("refund", coll, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	kwOnly, err := kw.Search("refund", coll, 10, 0)
	if err != nil {
		t.Fatal(err)
	}

	hybrid := NewHybrid(sem, kw, 0.7, 0.3)
	results, err := hybrid.Search("refund", coll, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	expected := 0.7*semOnly[0].Score + 0.3*kwOnly[0].Score
	if math.Abs(results[0].Score-expected) > 1e-9 {
		t.Errorf("expected combined score %g, got %g", expected, results[0].Score)
	}
}

func TestHybridDefaultWeights(t *testing.T) {
	h := NewHybrid(nil, nil, 0, 0)
	if h.semanticWeight != 0.7 || h.keywordWeight != 0.3 {
		t.Errorf("expected default weights 0.7/0.3, got %g/%g", h.semanticWeight, h.keywordWeight)
	}
}

func TestHybridSingleBranchHit(t *testing.T) {
	st := newSearchStore(t)
	coll, err := st.CreateCollection("docs", "")
	if err != nil {
		t.Fatal(err)
	}

	tok := analyzer.NewTokenizer()
	// Keyword cannot match the query, so only the semantic branch scores.
	added, err := st.AddDocuments("docs", []store.DocumentInput{
		{Content: "completely unrelated words", Embedding: []float32{1, 0}, Tokens: tok.Tokenize("completely unrelated words")},
	})
	if err != nil {
		t.Fatal(err)
	}

	sem := NewSemantic(&stubEmbedder{vec: []float32{1, 0}}, st, st)
	kw := NewKeyword(st, tok)
	hybrid := NewHybrid(sem, kw, 0.7, 0.3)

	results, err := hybrid.Search("zzzmissing", coll, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].DocumentID != added[0].ID {
		t.Fatalf("expected the semantic-only hit, got %+v", results)
	}
	if math.Abs(results[0].Score-0.7) > 1e-6 {
		t.Errorf("expected score 0.7 from the semantic branch alone, got %g", results[0].Score)
	}
}
