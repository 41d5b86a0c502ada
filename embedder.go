package newsthreads

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Embedder maps document text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// OpenAIEmbedder computes embeddings with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder returns an embedder for model. A positive dimensions asks
// the API for shortened vectors.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions int) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(opts...),
		model:      model,
		dimensions: dimensions,
	}
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed implements Embedder. Failures are returned as *ModelError.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	embedding, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, &ModelError{Model: e.model, Err: fmt.Errorf("failed to call OpenAI API: %w", err)}
	}
	if len(embedding.Data) == 0 {
		return nil, &ModelError{Model: e.model, Err: fmt.Errorf("no embedding data in response")}
	}

	vec := make([]float32, len(embedding.Data[0].Embedding))
	for i, v := range embedding.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
