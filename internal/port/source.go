package port

import "ragstore/internal/domain"

// VectorEntry is one stored embedding together with the document it belongs
// to. Document IDs increase with insertion order, which search uses as the
// tie-break for equal scores.
type VectorEntry struct {
	DocID  uint64
	Vector []float32
}

// VectorSource enumerates the document vectors of a collection as a
// consistent snapshot taken at call time. The brute-force scanner and any
// future approximate index both consume this interface; swapping the
// implementation does not change the search contract.
type VectorSource interface {
	Vectors(collectionID string) ([]VectorEntry, error)
}

// DocumentReader resolves documents by ID for search result assembly.
type DocumentReader interface {
	GetDocument(id uint64) (domain.Document, error)
}
