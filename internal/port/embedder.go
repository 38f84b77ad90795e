package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, each of length
	// Dimension(). A batch call must be at least as efficient as repeated
	// single-text calls.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension, or 0 if the model's
	// dimension has not been resolved yet.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
