package embedding

// modelDimensions lists the sentence-embedding models the engine knows out
// of the box, with their declared output dimensions. Models not listed here
// are still usable: the dimension is learned from the first inference
// response and remembered in the cache directory.
var modelDimensions = map[string]int{
	"bge-small-en-v1.5":     384,
	"bge-base-en-v1.5":      768,
	"bge-large-en-v1.5":     1024,
	"multilingual-e5-small": 384,
	"multilingual-e5-base":  768,
	"nomic-embed-text":      768,
	"mxbai-embed-large":     1024,
	"all-minilm":            384,
}

// KnownDimension returns the declared dimension for a model identifier, or
// 0 if the model is not in the built-in table.
func KnownDimension(model string) int {
	return modelDimensions[model]
}
