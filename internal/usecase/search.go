package usecase

import (
	"fmt"

	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
	"ragstore/internal/port"
)

// Search validates query parameters, resolves the collection and dispatches
// to the searcher for the requested mode.
type Search struct {
	store     *store.BoltStore
	searchers map[domain.SearchMode]port.Searcher
}

func NewSearch(st *store.BoltStore, semantic, keyword, hybrid port.Searcher) *Search {
	return &Search{
		store: st,
		searchers: map[domain.SearchMode]port.Searcher{
			domain.ModeSemantic: semantic,
			domain.ModeKeyword:  keyword,
			domain.ModeHybrid:   hybrid,
		},
	}
}

// Run executes a search. Scores are bounded by [-1, 1] (cosine similarity;
// keyword and hybrid scores fall inside it too), so thresholds outside that
// range are rejected. An empty result is not an error.
func (s *Search) Run(query, collectionName string, topK int, threshold float64, mode domain.SearchMode) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", topK, domain.ErrInvalidArgument)
	}
	if threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [-1, 1], got %g: %w", threshold, domain.ErrInvalidArgument)
	}
	if mode == "" {
		mode = domain.ModeSemantic
	}
	searcher, ok := s.searchers[mode]
	if !ok {
		return nil, fmt.Errorf("unknown search mode %q: %w", mode, domain.ErrInvalidArgument)
	}

	coll, err := s.store.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	return searcher.Search(query, coll, topK, threshold)
}
