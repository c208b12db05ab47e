package embed

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// OfflineEmbedder produces deterministic pseudo-embeddings without any
// network access. The vector for a text is seeded from its FNV-64a hash,
// so identical text always maps to the identical unit vector and similar
// runs stay reproducible across processes.
type OfflineEmbedder struct {
	dimensions int
}

// NewOffline returns an offline embedder with the given dimensionality.
func NewOffline(dimensions int) *OfflineEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &OfflineEmbedder{dimensions: dimensions}
}

func (e *OfflineEmbedder) Model() string {
	return "offline-deterministic"
}

func (e *OfflineEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *OfflineEmbedder) vector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dimensions)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}

	// Normalize to unit length so cosine scores stay in [-1, 1].
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
