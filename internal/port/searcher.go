package port

import "ragstore/internal/domain"

// Searcher ranks the documents of a collection against a query. Arguments
// are assumed validated by the caller: topK > 0 and threshold within the
// score range. Results are sorted by score descending, ties broken by
// earlier insertion, and never exceed topK entries.
type Searcher interface {
	Search(query string, coll domain.Collection, topK int, threshold float64) ([]domain.SearchResult, error)
}
