package newsthreads

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) Model() string { return "fake-model" }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, &ModelError{Model: f.Model(), Err: f.err}
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestAttachEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Put(ctx, Document{ID: "cached"}, "fake-model", []float32{9, 9}))

	docs := []Document{
		{ID: "inline", Title: "x", Embedding: []float32{1, 2}},
		{ID: "cached", Title: "y"},
		{ID: "fresh", Title: "hello"},
	}
	embedder := &fakeEmbedder{}

	require.NoError(t, AttachEmbeddings(ctx, docs, store, embedder))
	assert.Equal(t, []float32{1, 2}, docs[0].Embedding)
	assert.Equal(t, []float32{9, 9}, docs[1].Embedding)
	assert.Equal(t, []float32{5, 1}, docs[2].Embedding)
	assert.Equal(t, []string{"hello"}, embedder.calls)

	// Fresh embeddings are cached.
	got, ok, err := store.Get(ctx, "fresh", "fake-model")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{5, 1}, got)
}

func TestAttachEmbeddingsModelError(t *testing.T) {
	docs := []Document{{ID: "a", Title: "t"}}
	cause := errors.New("model not loaded")

	err := AttachEmbeddings(context.Background(), docs, nil, &fakeEmbedder{err: cause})
	require.Error(t, err)

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "fake-model", modelErr.Model)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, docs[0].Embedding)
}

func TestAttachEmbeddingsWithoutEmbedder(t *testing.T) {
	docs := []Document{{ID: "a"}}
	err := AttachEmbeddings(context.Background(), docs, openTestStore(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document a")
}

func TestEmbedAllDocumentsWithoutAPIKey(t *testing.T) {
	dir := t.TempDir()
	savedConfig := Config
	t.Cleanup(func() { Config = savedConfig })
	Config.OpenAIAPIKey = ""
	Config.EmbeddingsDB = filepath.Join(dir, "embeddings.db")

	path := filepath.Join(dir, "docs.json")
	data, err := json.Marshal([]Document{
		{ID: "a", Language: "en", IsNews: true, Embedding: []float32{1, 0}},
		{ID: "b", Language: "ru", IsNews: true, Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.NoError(t, embedAllDocuments(context.Background(), path))
	assert.Nil(t, embedderFromConfig())
}
