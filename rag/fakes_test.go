package rag

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/prajjwal-io/fin-rag-app/vector"
)

type fakeChatModel struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(in) > 0 {
		m.prompts = append(m.prompts, in[len(in)-1].Content)
	}
	content := ""
	if len(m.responses) > 0 {
		content = m.responses[m.calls%len(m.responses)]
	}
	m.calls++
	return &schema.Message{Role: schema.Assistant, Content: content}, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *fakeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeStore struct {
	results   []vector.SearchResult
	searchErr error
	gotVector []float32
	gotTopK   int
	gotFilter vector.Filter
	upserts   [][]vector.Record
}

func (s *fakeStore) Upsert(ctx context.Context, records []vector.Record) error {
	s.upserts = append(s.upserts, records)
	return nil
}

func (s *fakeStore) Search(ctx context.Context, queryVector []float32, topK int, filter vector.Filter) ([]vector.SearchResult, error) {
	s.gotVector = queryVector
	s.gotTopK = topK
	s.gotFilter = filter
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *fakeStore) DeleteByIDs(ctx context.Context, ids []string) error { return nil }

func (s *fakeStore) DeleteByFilter(ctx context.Context, filter vector.Filter) (int, error) {
	return 0, nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *fakeStore) Close() error { return nil }

func newTestRetriever(store *fakeStore, topK int) *Retriever {
	embedder, err := vector.NewEmbeddingService(&fakeEmbedder{vec: []float64{0.5, 0.5}}, 2)
	if err != nil {
		panic(err)
	}
	r, err := NewRetriever(embedder, store, topK, nil)
	if err != nil {
		panic(err)
	}
	return r
}
