package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddings satisfies embeddings.Embedder with canned vectors.
type fakeEmbeddings struct {
	vector []float32
	err    error
}

func (f *fakeEmbeddings) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbeddings) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func TestEmbedValidatesDimension(t *testing.T) {
	e := &Embedder{
		model:     &fakeEmbeddings{vector: []float32{1, 2, 3}},
		dimension: 3,
		modelName: "test-model",
	}

	got, err := e.Embed(context.Background(), "some journal text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got)

	e.dimension = 768
	_, err = e.Embed(context.Background(), "some journal text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedSkipsDimensionCheckWhenUnset(t *testing.T) {
	e := &Embedder{
		model:     &fakeEmbeddings{vector: []float32{1, 2}},
		dimension: 0,
		modelName: "test-model",
	}

	got, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEmbedPropagatesProviderError(t *testing.T) {
	e := &Embedder{
		model:     &fakeEmbeddings{err: fmt.Errorf("rate limited")},
		dimension: 3,
		modelName: "test-model",
	}

	_, err := e.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
