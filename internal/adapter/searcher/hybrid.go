package searcher

import (
	"sort"

	"ragstore/internal/domain"
)

// Hybrid merges semantic and keyword rankings by weighted sum. Each branch
// contributes its normalized score; a document found by only one branch
// scores 0 on the other. Default weights favor the semantic branch.
type Hybrid struct {
	semantic       *Semantic
	keyword        *Keyword
	semanticWeight float64
	keywordWeight  float64
}

func NewHybrid(semantic *Semantic, keyword *Keyword, semanticWeight, keywordWeight float64) *Hybrid {
	if semanticWeight <= 0 && keywordWeight <= 0 {
		semanticWeight, keywordWeight = 0.7, 0.3
	}
	return &Hybrid{
		semantic:       semantic,
		keyword:        keyword,
		semanticWeight: semanticWeight,
		keywordWeight:  keywordWeight,
	}
}

func (h *Hybrid) Search(query string, coll domain.Collection, topK int, threshold float64) ([]domain.SearchResult, error) {
	// Fetch extra candidates from each branch; the merge reranks them.
	semResults, err := h.semantic.Search(query, coll, topK*2, -1)
	if err != nil {
		return nil, err
	}
	kwResults, err := h.keyword.Search(query, coll, topK*2, 0)
	if err != nil {
		return nil, err
	}

	type merged struct {
		result   domain.SearchResult
		semantic float64
		keyword  float64
	}
	byID := make(map[uint64]*merged, len(semResults)+len(kwResults))
	for _, r := range semResults {
		byID[r.DocumentID] = &merged{result: r, semantic: r.Score}
	}
	for _, r := range kwResults {
		if m, ok := byID[r.DocumentID]; ok {
			m.keyword = r.Score
			continue
		}
		byID[r.DocumentID] = &merged{result: r, keyword: r.Score}
	}

	results := make([]domain.SearchResult, 0, len(byID))
	for _, m := range byID {
		r := m.result
		r.Score = h.semanticWeight*m.semantic + h.keywordWeight*m.keyword
		if r.Score < threshold {
			continue
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
