package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prajjwal-io/fin-rag-app/document"
)

type fakeEmbedder struct {
	vectors  [][]float64
	err      error
	gotTexts []string
	calls    int
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	f.calls++
	f.gotTexts = texts
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func TestNewEmbeddingServiceValidation(t *testing.T) {
	_, err := NewEmbeddingService(nil, 4)
	assert.Error(t, err)

	_, err = NewEmbeddingService(&fakeEmbedder{}, 0)
	assert.Error(t, err)
}

func TestEmbedSingleText(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{0.1, 0.2, 0.3, 0.4}}}
	svc, err := NewEmbeddingService(fake, 4)
	require.NoError(t, err)

	vec, err := svc.Embed(context.Background(), "quarterly revenue")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, vec)
	assert.Equal(t, []string{"quarterly revenue"}, fake.gotTexts)
	assert.Equal(t, 4, svc.Dimension())
}

func TestEmbedRejectsBlankText(t *testing.T) {
	svc, err := NewEmbeddingService(&fakeEmbedder{}, 4)
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestEmbedBatchAlignsBlanks(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{1, 0}, {0, 1}}}
	svc, err := NewEmbeddingService(fake, 2)
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"alpha", "  ", "beta"})
	require.NoError(t, err)

	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Nil(t, vecs[1])
	assert.Equal(t, []float32{0, 1}, vecs[2])
	assert.Equal(t, []string{"alpha", "beta"}, fake.gotTexts)
}

func TestEmbedBatchAllBlank(t *testing.T) {
	fake := &fakeEmbedder{}
	svc, err := NewEmbeddingService(fake, 2)
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Zero(t, fake.calls)
}

func TestEmbedBatchBackendError(t *testing.T) {
	fake := &fakeEmbedder{err: errors.New("backend down")}
	svc, err := NewEmbeddingService(fake, 2)
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"alpha"})
	assert.ErrorContains(t, err, "backend down")
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{1, 0}}}
	svc, err := NewEmbeddingService(fake, 2)
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	assert.Error(t, err)
}

func TestEmbedChunks(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{1, 0}, {0, 1}}}
	svc, err := NewEmbeddingService(fake, 2)
	require.NoError(t, err)

	chunks := []document.Chunk{
		{Document: document.Document{Content: "first chunk"}},
		{Document: document.Document{Content: "second chunk"}},
	}

	vecs, err := svc.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []string{"first chunk", "second chunk"}, fake.gotTexts)
}
