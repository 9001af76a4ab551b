// Package llm wraps the model provider: text embeddings for FAQ matching
// and chat completions for replies.
package llm

import (
	"context"
	"fmt"
	"math"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer produces a reply for a user message under a system prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		aMag += x * x
		bMag += y * y
	}

	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}
