package embedding

import (
	"context"
)

// Embedder maps text to a fixed-dimension float vector.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates the vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed generates vectors for multiple texts
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension
	Dimension() int

	// Model returns the model name
	Model() string
}
