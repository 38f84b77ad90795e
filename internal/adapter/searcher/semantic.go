package searcher

import (
	"fmt"
	"sort"

	"ragstore/internal/domain"
	"ragstore/internal/port"
)

// Semantic ranks documents by cosine similarity between the query embedding
// and each stored vector. It is a brute-force scan over the collection's
// vectors; the VectorSource indirection lets an approximate index replace
// the scan without touching this contract.
type Semantic struct {
	embedder port.Embedder
	source   port.VectorSource
	docs     port.DocumentReader
}

func NewSemantic(embedder port.Embedder, source port.VectorSource, docs port.DocumentReader) *Semantic {
	return &Semantic{
		embedder: embedder,
		source:   source,
		docs:     docs,
	}
}

func (s *Semantic) Search(query string, coll domain.Collection, topK int, threshold float64) ([]domain.SearchResult, error) {
	vectors, err := s.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: empty result: %w", domain.ErrEmbedding)
	}
	queryVec := vectors[0]

	// Snapshot taken at scan start; documents added mid-scan may or may not
	// appear in this call's results.
	entries, err := s.source.Vectors(coll.ID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		docID uint64
		score float64
	}
	candidates := make([]scored, 0, len(entries))
	for _, e := range entries {
		score := cosineSimilarity(queryVec, e.Vector)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{docID: e.DocID, score: score})
	}

	// Score descending; equal scores keep insertion order (lower ID first).
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
		doc, err := s.docs.GetDocument(c.docID)
		if err != nil {
			// Deleted between snapshot and assembly.
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
