// Package rag implements the retrieval-augmented pipeline: semantic
// retrieval over the vector index, LLM query augmentation and grounded
// answer synthesis.
package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prajjwal-io/fin-rag-app/vector"
)

// Retriever turns a text query into scored index matches.
type Retriever struct {
	embedder *vector.EmbeddingService
	store    vector.VectorStore
	topK     int
	logger   *zap.Logger
}

// NewRetriever wires a retriever; topK is the default result count
// when the caller passes none.
func NewRetriever(embedder *vector.EmbeddingService, store vector.VectorStore, topK int, logger *zap.Logger) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding service is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, store: store, topK: topK, logger: logger}, nil
}

// Retrieve embeds the query and searches the index under the given
// filter. topK <= 0 falls back to the configured default. No matches
// is an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter vector.Filter, topK int) ([]vector.SearchResult, error) {
	if topK <= 0 {
		topK = r.topK
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.store.Search(ctx, queryVector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	r.logger.Info("retrieved documents",
		zap.Int("count", len(results)),
		zap.Int("top_k", topK))
	return results, nil
}

// RetrieveByTicker scopes retrieval to one ticker, optionally limited
// to certain content types.
func (r *Retriever) RetrieveByTicker(ctx context.Context, query, ticker string, contentTypes []string, topK int) ([]vector.SearchResult, error) {
	return r.Retrieve(ctx, query, vector.Filter{
		Ticker:       ticker,
		ContentTypes: contentTypes,
	}, topK)
}

// RetrieveFilings scopes retrieval to filings, optionally by ticker,
// filing type and filing date range.
func (r *Retriever) RetrieveFilings(ctx context.Context, query, ticker, filingType string, from, to time.Time, topK int) ([]vector.SearchResult, error) {
	return r.Retrieve(ctx, query, vector.Filter{
		Ticker:     ticker,
		FilingType: filingType,
		From:       from,
		To:         to,
	}, topK)
}
