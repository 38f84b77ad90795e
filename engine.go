// Package ragstore is a local retrieval engine: collections of embedded
// documents in a single BoltDB file, semantic/keyword/hybrid search over
// them, and context assembly for prompt enrichment.
package ragstore

import (
	"ragstore/config"
	"ragstore/internal/adapter/analyzer"
	"ragstore/internal/adapter/embedding"
	"ragstore/internal/adapter/searcher"
	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
	"ragstore/internal/usecase"
)

// Engine is the top-level handle. It owns the store and the embedder
// registry; one Engine per database file, safe for concurrent use.
type Engine struct {
	store    *store.BoltStore
	registry *embedding.Registry

	collections *usecase.Collections
	documents   *usecase.Documents
	search      *usecase.Search
	enrich      *usecase.Enrich
	transfer    *usecase.Transfer
}

// Open opens (or creates) the store named by cfg and wires the engine. The
// store remembers the embedding model it was created with; opening an
// existing store with a different model fails rather than mixing vector
// spaces. A nil cfg means defaults.
func Open(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	st, err := store.NewBoltStore(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	registry := embedding.NewRegistry()
	embedder, err := registry.Embedder(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		CacheDir:  cfg.Embedding.CacheDir,
		BatchSize: cfg.Embedding.BatchSize,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	if err := st.BindModel(embedder.ModelName(), embedder.Dimension()); err != nil {
		st.Close()
		return nil, err
	}

	tokenizer := analyzer.NewTokenizer()
	semantic := searcher.NewSemantic(embedder, st, st)
	keyword := searcher.NewKeyword(st, tokenizer)
	hybrid := searcher.NewHybrid(semantic, keyword, cfg.Search.SemanticWeight, cfg.Search.KeywordWeight)

	documents := usecase.NewDocuments(st, embedder, tokenizer)
	search := usecase.NewSearch(st, semantic, keyword, hybrid)

	return &Engine{
		store:       st,
		registry:    registry,
		collections: usecase.NewCollections(st),
		documents:   documents,
		search:      search,
		enrich:      usecase.NewEnrich(search),
		transfer:    usecase.NewTransfer(documents, st),
	}, nil
}

// Close releases the store. The engine must not be used afterwards.
func (e *Engine) Close() error {
	return e.store.Close()
}

// collections

func (e *Engine) CreateCollection(name, description string) (domain.Collection, error) {
	return e.collections.Create(name, description)
}

func (e *Engine) GetCollection(name string) (domain.Collection, error) {
	return e.collections.Get(name)
}

func (e *Engine) ListCollections() ([]domain.Collection, error) {
	return e.collections.List()
}

// DeleteCollection removes the collection and every document in it.
func (e *Engine) DeleteCollection(name string) error {
	return e.collections.Delete(name)
}

// documents

// AddDocument embeds and stores one document, returning its ID.
func (e *Engine) AddDocument(content, collectionName string, metadata map[string]string) (uint64, error) {
	return e.documents.Add(content, collectionName, metadata)
}

// AddDocuments embeds and stores a batch atomically. metadata may be nil or
// must match contents in length; progress, when set, reports the number of
// documents embedded so far.
func (e *Engine) AddDocuments(contents []string, collectionName string, metadata []map[string]string, progress func(done int)) ([]uint64, error) {
	return e.documents.AddBatch(contents, collectionName, metadata, progress)
}

func (e *Engine) GetDocument(id uint64) (domain.Document, error) {
	return e.documents.Get(id)
}

func (e *Engine) DeleteDocument(id uint64) error {
	return e.documents.Delete(id)
}

// ListDocuments returns a page of the collection's documents in insertion
// order.
func (e *Engine) ListDocuments(collectionName string, limit, offset int) ([]domain.Document, error) {
	return e.documents.List(collectionName, limit, offset)
}

// search and enrichment

// Search runs a query against one collection. An empty mode defaults to
// semantic.
func (e *Engine) Search(query, collectionName string, topK int, threshold float64, mode domain.SearchMode) ([]domain.SearchResult, error) {
	return e.search.Run(query, collectionName, topK, threshold, mode)
}

// Enrich searches and assembles the hits into a context block ready to
// prepend to a prompt.
func (e *Engine) Enrich(query, collectionName string, topK int, threshold float64, mode domain.SearchMode) (domain.EnrichResult, error) {
	return e.enrich.Run(query, collectionName, topK, threshold, mode)
}

// transfer

// ImportCSV loads documents from one CSV file. The import is all-or-nothing.
func (e *Engine) ImportCSV(path, collectionName, contentColumn string, metadataColumns []string, progress func(done, total int)) (int, error) {
	return e.transfer.Import(path, collectionName, contentColumn, metadataColumns, progress)
}

// ImportGlob loads documents from every file matching a doublestar pattern.
func (e *Engine) ImportGlob(pattern, collectionName, contentColumn string, metadataColumns []string, progress func(path string, done, total int)) (int, error) {
	return e.transfer.ImportGlob(pattern, collectionName, contentColumn, metadataColumns, progress)
}

// ExportCSV writes the collection's documents to a CSV file.
func (e *Engine) ExportCSV(path, collectionName string) (int, error) {
	return e.transfer.Export(path, collectionName)
}
