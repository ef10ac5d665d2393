package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/prajjwal-io/fin-rag-app/document"
	"github.com/prajjwal-io/fin-rag-app/rag"
	"github.com/prajjwal-io/fin-rag-app/research"
	"github.com/prajjwal-io/fin-rag-app/vector"
)

type fakeChatModel struct {
	responses []string
	calls     int
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
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
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeStore struct {
	results []vector.SearchResult
	upserts [][]vector.Record
}

func (s *fakeStore) Upsert(ctx context.Context, records []vector.Record) error {
	s.upserts = append(s.upserts, records)
	return nil
}

func (s *fakeStore) Search(ctx context.Context, queryVector []float32, topK int, filter vector.Filter) ([]vector.SearchResult, error) {
	return s.results, nil
}

func (s *fakeStore) DeleteByIDs(ctx context.Context, ids []string) error { return nil }

func (s *fakeStore) DeleteByFilter(ctx context.Context, filter vector.Filter) (int, error) {
	return 0, nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *fakeStore) Close() error { return nil }

// setupTestService wires a research service over fakes into the
// command tree. The returned cleanup detaches it again.
func setupTestService(t *testing.T, chat *fakeChatModel, store *fakeStore) func() {
	t.Helper()

	embedder, err := vector.NewEmbeddingService(&fakeEmbedder{vec: []float64{0.5, 0.5}}, 2)
	require.NoError(t, err)
	retriever, err := rag.NewRetriever(embedder, store, 5, nil)
	require.NoError(t, err)
	engine, err := rag.NewEngine(chat, retriever, nil)
	require.NoError(t, err)
	augmenter, err := rag.NewAugmenter(chat, nil)
	require.NoError(t, err)
	chunker, err := document.NewChunker(1000, 200, nil)
	require.NoError(t, err)
	sentiment := document.NewSentimentAnalyzer(0.05, nil)
	extractor := document.NewMetadataExtractor(sentiment, nil)

	svc, err := research.NewService(research.Config{
		Chunker:   chunker,
		Extractor: extractor,
		Sentiment: sentiment,
		Embedder:  embedder,
		Store:     store,
		Engine:    engine,
		Augmenter: augmenter,
	})
	require.NoError(t, err)

	service = svc
	return func() { service = nil }
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
