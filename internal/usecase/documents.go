package usecase

import (
	"fmt"
	"strings"

	"ragstore/internal/adapter/analyzer"
	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
	"ragstore/internal/port"
)

// Documents handles document storage. Adding a document embeds it, tokenizes
// it for the keyword index and persists everything atomically with the
// collection's counter update.
type Documents struct {
	store     *store.BoltStore
	embedder  port.Embedder
	tokenizer *analyzer.Tokenizer
}

func NewDocuments(st *store.BoltStore, embedder port.Embedder, tokenizer *analyzer.Tokenizer) *Documents {
	return &Documents{
		store:     st,
		embedder:  embedder,
		tokenizer: tokenizer,
	}
}

// Add stores one document in the named collection and returns its ID. The
// collection must already exist; there is no implicit creation.
func (d *Documents) Add(content, collectionName string, metadata map[string]string) (uint64, error) {
	ids, err := d.AddBatch([]string{content}, collectionName, []map[string]string{metadata}, nil)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddBatch stores many documents in one transaction. Contents are embedded
// in provider-sized batches first (progress, when set, is called with the
// running count after each batch); the store insert is all-or-nothing.
func (d *Documents) AddBatch(contents []string, collectionName string, metadata []map[string]string, progress func(done int)) ([]uint64, error) {
	if len(contents) == 0 {
		return nil, nil
	}
	for i, content := range contents {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("document %d: content must not be empty: %w", i, domain.ErrInvalidArgument)
		}
	}
	if len(metadata) != 0 && len(metadata) != len(contents) {
		return nil, fmt.Errorf("metadata count %d does not match content count %d: %w", len(metadata), len(contents), domain.ErrInvalidArgument)
	}

	// The collection is checked before paying for inference; the store
	// re-checks inside the insert transaction.
	if _, err := d.store.GetCollection(collectionName); err != nil {
		return nil, err
	}

	vectors, err := d.embedAll(contents, progress)
	if err != nil {
		return nil, err
	}

	inputs := make([]store.DocumentInput, len(contents))
	for i, content := range contents {
		in := store.DocumentInput{
			Content:   content,
			Embedding: vectors[i],
			Tokens:    d.tokenizer.Tokenize(content),
		}
		if len(metadata) != 0 {
			in.Metadata = metadata[i]
		}
		inputs[i] = in
	}

	added, err := d.store.AddDocuments(collectionName, inputs)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(added))
	for i, doc := range added {
		ids[i] = doc.ID
	}
	return ids, nil
}

// embedAll runs inference in embedder-friendly slices so progress is
// observable between batches rather than only at completion.
func (d *Documents) embedAll(contents []string, progress func(done int)) ([][]float32, error) {
	const sliceSize = 64

	vectors := make([][]float32, 0, len(contents))
	for i := 0; i < len(contents); i += sliceSize {
		end := i + sliceSize
		if end > len(contents) {
			end = len(contents)
		}
		batch, err := d.embedder.Embed(contents[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
		if progress != nil {
			progress(len(vectors))
		}
	}
	return vectors, nil
}

func (d *Documents) Get(id uint64) (domain.Document, error) {
	return d.store.GetDocument(id)
}

func (d *Documents) Delete(id uint64) error {
	return d.store.DeleteDocument(id)
}

// List returns the collection's documents in insertion order. Limit and
// offset must be non-negative; a zero limit returns an empty slice.
func (d *Documents) List(collectionName string, limit, offset int) ([]domain.Document, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative: %w", domain.ErrInvalidArgument)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative: %w", domain.ErrInvalidArgument)
	}
	return d.store.ListDocuments(collectionName, limit, offset)
}
