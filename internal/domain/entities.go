package domain

import "time"

// Collection is a named, isolated group of documents sharing one embedding
// model and search space.
type Collection struct {
	ID          string
	Name        string
	Description string
	DocCount    int
	CreatedAt   time.Time
}

// Document is a stored text with its metadata. Documents are immutable once
// added; re-adding content produces a new document with a new ID.
type Document struct {
	ID             uint64
	CollectionID   string
	CollectionName string
	Content        string
	Metadata       map[string]string
	CreatedAt      time.Time
}

// SearchMode selects the scoring strategy for a query.
type SearchMode string

const (
	// ModeSemantic ranks by cosine similarity of embeddings.
	ModeSemantic SearchMode = "semantic"
	// ModeKeyword ranks by BM25 over the postings index, falling back to a
	// substring scan when no indexed term matches.
	ModeKeyword SearchMode = "keyword"
	// ModeHybrid merges semantic and keyword scores by weighted sum.
	ModeHybrid SearchMode = "hybrid"
)

// Posting records one document's term frequency for a term. DL is the
// document's token count; documents are immutable so it never goes stale.
type Posting struct {
	DocID uint64 `json:"d"`
	TF    int    `json:"tf"`
	DL    int    `json:"dl"`
}

// SearchResult is one ranked match. Ephemeral, never persisted.
type SearchResult struct {
	DocumentID     uint64
	Content        string
	Score          float64
	Metadata       map[string]string
	CollectionName string
}

// EnrichResult is the assembled context block plus the sources that built it,
// in the same order they appear in Context.
type EnrichResult struct {
	Question string
	Context  string
	Sources  []SearchResult
}
