package searcher

import (
	"math"
	"sort"
	"strings"

	"ragstore/internal/adapter/analyzer"
	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
	// fallbackScore is the raw score for substring matches when the query
	// tokenizes to nothing indexed.
	fallbackScore = 1.0
)

// Keyword ranks documents by BM25 over the collection's postings index. When
// no indexed term matches (short queries, scripts the tokenizer cannot split)
// it falls back to a case-insensitive substring scan. Raw scores are mapped
// through a sigmoid into (0, 1) so keyword scores share a range with cosine
// similarity.
type Keyword struct {
	store     *store.BoltStore
	tokenizer *analyzer.Tokenizer
}

func NewKeyword(st *store.BoltStore, tokenizer *analyzer.Tokenizer) *Keyword {
	return &Keyword{store: st, tokenizer: tokenizer}
}

func (k *Keyword) Search(query string, coll domain.Collection, topK int, threshold float64) ([]domain.SearchResult, error) {
	raw, err := k.bm25(query, coll)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		raw, err = k.scan(query, coll)
		if err != nil {
			return nil, err
		}
	}

	type scored struct {
		docID uint64
		score float64
	}
	candidates := make([]scored, 0, len(raw))
	for id, s := range raw {
		score := normalize(s)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{docID: id, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].docID < candidates[j].docID
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		doc, err := k.store.GetDocument(c.docID)
		if err != nil {
			continue
		}
		results = append(results, domain.SearchResult{
			DocumentID:     doc.ID,
			Content:        doc.Content,
			Score:          c.score,
			Metadata:       doc.Metadata,
			CollectionName: doc.CollectionName,
		})
	}
	return results, nil
}

// bm25 scores every document matching at least one query term.
func (k *Keyword) bm25(query string, coll domain.Collection) (map[uint64]float64, error) {
	terms := k.tokenizer.Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	docCount, avgDL, err := k.store.CollectionStats(coll.ID)
	if err != nil {
		return nil, err
	}
	if docCount == 0 {
		return nil, nil
	}

	scores := make(map[uint64]float64)
	for _, term := range terms {
		postings, err := k.store.Postings(coll.ID, term)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			continue
		}

		n := float64(len(postings))
		N := float64(docCount)
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, p := range postings {
			tf := float64(p.TF)
			dl := float64(p.DL)
			scores[p.DocID] += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*dl/avgDL))
		}
	}
	return scores, nil
}

// scan is the fallback: every document whose content contains the query
// verbatim (case-insensitive) matches with a flat raw score.
func (k *Keyword) scan(query string, coll domain.Collection) (map[uint64]float64, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	docs, err := k.store.ListDocuments(coll.Name, -1, 0)
	if err != nil {
		return nil, err
	}

	scores := make(map[uint64]float64)
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Content), needle) {
			scores[doc.ID] = fallbackScore
		}
	}
	return scores, nil
}

// normalize maps a non-negative raw score into (0.5, 1) via a sigmoid, so
// any keyword match clears a zero threshold and larger BM25 scores stay
// ordered.
func normalize(raw float64) float64 {
	return 1 / (1 + math.Exp(-raw/10))
}
