package embedding

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Mock is a deterministic embedder for tests and offline runs. Each word
// hashes into one vector component, and the vector is L2-normalized, so
// texts sharing words land close together under cosine similarity.
type Mock struct {
	model string
	dim   int
}

func NewMock(model string, dim int) *Mock {
	return &Mock{model: model, dim: dim}
}

func (m *Mock) Embed(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dim)
		for _, word := range splitWords(text) {
			h := fnv.New32a()
			h.Write([]byte(strings.ToLower(word)))
			vec[int(h.Sum32())%m.dim]++
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm > 0 {
			inv := float32(1 / math.Sqrt(norm))
			for j := range vec {
				vec[j] *= inv
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *Mock) Dimension() int {
	return m.dim
}

func (m *Mock) ModelName() string {
	return m.model
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
