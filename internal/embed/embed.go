// Package embed turns text into fixed-dimension vectors, either via the
// OpenAI embeddings API or a deterministic offline substitute.
package embed

import "context"

// Embedder produces one vector per input text. Implementations must be
// deterministic for identical input within a single model version.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
