package newsthreads

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// maxEmbeddingRunes bounds the text sent to the embedding model.
const maxEmbeddingRunes = 8000

var embedOpts struct {
	ndocs     int
	languages []string
}

var EmbedDocumentsCmd = &cobra.Command{
	Use:   "embed-documents <documents.json>",
	Short: "Compute and cache embeddings for thread candidate documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := embedAllDocuments(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to embed documents: %w", err)
		}
		log.Info().Msg("Document embedding complete")
		return nil
	},
}

func init() {
	f := EmbedDocumentsCmd.Flags()
	f.IntVar(&embedOpts.ndocs, "ndocs", -1, "only process the first n documents (-1 for all)")
	f.StringSliceVar(&embedOpts.languages, "languages", []string{"ru", "en"}, "languages to embed")
}

// embedAllDocuments fills the embedding cache for every thread candidate in path.
func embedAllDocuments(ctx context.Context, path string) error {
	docs, err := LoadDocuments(path, embedOpts.ndocs)
	if err != nil {
		return err
	}
	docs = FilterThreadCandidates(docs, embedOpts.languages)
	log.Info().Int("documents", len(docs)).Msg("Loaded thread candidates")

	embedder := embedderFromConfig()
	if embedder == nil {
		log.Warn().Msg("OPENAI_API_KEY not set, using inline and cached embeddings only")
	}

	store, err := OpenEmbeddingStore(embeddingsDB())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := AttachEmbeddings(ctx, docs, store, embedder); err != nil {
		return err
	}

	model := embeddingModel()
	if embedder != nil {
		model = embedder.Model()
	}
	count, err := store.Count(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to count embeddings: %w", err)
	}
	log.Info().Int("cached", count).Str("model", model).Msg("Embedding cache updated")
	return nil
}

// embedderFromConfig builds the OpenAI embedder from Config, or returns nil
// when no API key is configured.
func embedderFromConfig() Embedder {
	if Config.OpenAIAPIKey == "" {
		return nil
	}
	return NewOpenAIEmbedder(Config.OpenAIAPIKey, Config.OpenAIBaseURL, embeddingModel(), Config.EmbeddingDimensions)
}

// AttachEmbeddings sets Embedding on every document that lacks one, reading
// the cache first and falling back to embedder. Fresh embeddings are written
// to the cache. A nil embedder makes an uncached document an error; a nil
// store disables caching. Embedder failures abort immediately.
func AttachEmbeddings(ctx context.Context, docs []Document, store *EmbeddingStore, embedder Embedder) error {
	model := embeddingModel()
	if embedder != nil {
		model = embedder.Model()
	}

	cached, computed := 0, 0
	start := time.Now()
	for i := range docs {
		doc := &docs[i]
		if len(doc.Embedding) > 0 {
			continue
		}

		if store != nil {
			embedding, ok, err := store.Get(ctx, doc.ID, model)
			if err != nil {
				return err
			}
			if ok {
				doc.Embedding = embedding
				cached++
				continue
			}
		}

		if embedder == nil {
			return fmt.Errorf("no embedding for document %s and no embedding model configured (run embed-documents first)", doc.ID)
		}

		embedding, err := embedder.Embed(ctx, doc.embeddingText(maxEmbeddingRunes))
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = embedding
		computed++

		if store != nil {
			if err := store.Put(ctx, *doc, model, embedding); err != nil {
				return err
			}
		}
		log.Debug().Str("doc", doc.ID).Int("dim", len(embedding)).Msg("Generated embedding")
	}

	log.Info().
		Int("cached", cached).
		Int("computed", computed).
		Dur("elapsed", time.Since(start)).
		Msg("Attached embeddings")
	return nil
}
