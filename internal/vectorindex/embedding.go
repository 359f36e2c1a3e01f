package vectorindex

import (
	"context"

	chromem "github.com/philippgille/chromem-go"

	"github.com/pankajkkc01/RAG-application/internal/ai"
)

// NewEmbeddingFunc bridges the OpenAI-compatible embedding client into a
// chromem-go EmbeddingFunc. A failed call is retried once; transient network
// failures are the common case and the index itself has no retry policy.
//
// chromem-go normalizes vectors internally, so no manual normalization is
// needed.
func NewEmbeddingFunc(client *ai.Client, cfg ai.EmbeddingConfig) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vec, err := client.Embed(ctx, cfg, text)
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		return client.Embed(ctx, cfg, text)
	}
}
