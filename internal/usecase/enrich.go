package usecase

import (
	"fmt"
	"strings"

	"ragstore/internal/domain"
)

// Enrich assembles search results into a context block for a downstream
// prompt. Each source is rendered as
//
//	[Source N] (Score: 0.876, Collection: faq)
//	<content>
//
// and sources are separated by one blank line. Downstream prompt templates
// rely on this exact shape; change it only with a major version.
type Enrich struct {
	search *Search
}

func NewEnrich(search *Search) *Enrich {
	return &Enrich{search: search}
}

// Run searches with the given parameters and formats the hits. An empty hit
// list yields an empty context and no sources, not an error.
func (e *Enrich) Run(query, collectionName string, topK int, threshold float64, mode domain.SearchMode) (domain.EnrichResult, error) {
	sources, err := e.search.Run(query, collectionName, topK, threshold, mode)
	if err != nil {
		return domain.EnrichResult{}, err
	}

	blocks := make([]string, len(sources))
	for i, src := range sources {
		blocks[i] = fmt.Sprintf("[Source %d] (Score: %.3f, Collection: %s)\n%s",
			i+1, src.Score, src.CollectionName, src.Content)
	}

	return domain.EnrichResult{
		Question: query,
		Context:  strings.Join(blocks, "\n\n"),
		Sources:  sources,
	}, nil
}
