// Package vector provides embedding generation and the Redis-backed
// vector index the retrieval layer searches against.
package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/prajjwal-io/fin-rag-app/document"
)

// EmbeddingService wraps an embedding model for vector generation.
type EmbeddingService struct {
	embedder embedding.Embedder
	dim      int
}

// NewEmbeddingService creates an embedding service for the given
// backend and vector dimension.
func NewEmbeddingService(embedder embedding.Embedder, dim int) (*EmbeddingService, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding model is required")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	return &EmbeddingService{embedder: embedder, dim: dim}, nil
}

// Dimension returns the embedding dimension.
func (s *EmbeddingService) Dimension() int {
	return s.dim
}

// Embed generates an embedding vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return toFloat32(vectors[0]), nil
}

// EmbedBatch generates embedding vectors for multiple texts. The
// result is aligned with the input: blank texts get a nil vector at
// their position instead of being silently dropped. When every text is
// blank the result is nil with no error; a backend failure is returned
// as-is so the caller decides how to degrade.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var valid []string
	var indices []int
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			valid = append(valid, text)
			indices = append(indices, i)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedStrings(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(valid) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(vectors), len(valid))
	}

	result := make([][]float32, len(texts))
	for i, vec := range vectors {
		result[indices[i]] = toFloat32(vec)
	}
	return result, nil
}

// EmbedChunks embeds the content of each chunk, aligned with the
// input.
func (s *EmbeddingService) EmbedChunks(ctx context.Context, chunks []document.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	return s.EmbedBatch(ctx, texts)
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
