package newsthreads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sosodev/duration"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ThreadArticle is one ranked article of a thread.
type ThreadArticle struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	SiteName  string  `json:"site_name"`
	Authority float64 `json:"authority"`
}

// Thread is a cluster of at least two articles about the same event, ranked by
// source authority. Title is the title of the top-ranked article.
type Thread struct {
	ThreadID int             `json:"thread_id"`
	Language string          `json:"language"`
	Title    string          `json:"title"`
	Articles []ThreadArticle `json:"articles"`
}

// BucketSummary describes the clustering of one language.
type BucketSummary struct {
	Language   string  `json:"language"`
	Documents  int     `json:"documents"`
	Clusters   int     `json:"clusters"`
	Threads    int     `json:"threads"`
	Noise      int     `json:"noise"`
	Silhouette float64 `json:"silhouette_score"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	Error      string  `json:"error,omitempty"`
}

// ThreadsResult is the output of the cluster-threads command.
type ThreadsResult struct {
	ClusteringType string          `json:"clustering_type"`
	Threads        []Thread        `json:"threads"`
	Summary        []BucketSummary `json:"summary"`
}

const threadsFile = "threads/threads.json"

// ClusterThreadsOptions configures a cluster-threads run.
type ClusterThreadsOptions struct {
	Clustering ClusteringOptions
	Languages  []string
	Ratings    []string
	NDocs      int
	Window     string
	Output     string
}

var clusterOpts = ClusterThreadsOptions{Clustering: DefaultClusteringOptions()}

var ClusterThreadsCmd = &cobra.Command{
	Use:   "cluster-threads <documents.json>",
	Short: "Group documents into threads and rank articles within each thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clusterAllThreads(cmd.Context(), args[0], clusterOpts); err != nil {
			return fmt.Errorf("failed to cluster threads: %w", err)
		}
		log.Info().Msg("Thread clustering complete")
		return nil
	},
}

func init() {
	f := ClusterThreadsCmd.Flags()
	f.StringVar(&clusterOpts.Clustering.Type, "clustering-type", clusterOpts.Clustering.Type, "clustering algorithm: slink or dbscan")
	f.Float64Var(&clusterOpts.Clustering.DistanceThreshold, "distance-threshold", clusterOpts.Clustering.DistanceThreshold, "slink: cosine distance at which the dendrogram is cut")
	f.Float64Var(&clusterOpts.Clustering.Eps, "eps", clusterOpts.Clustering.Eps, "dbscan: neighborhood radius in cosine distance")
	f.IntVar(&clusterOpts.Clustering.MinPoints, "min-points", clusterOpts.Clustering.MinPoints, "dbscan: points within eps required for a core point")
	f.StringSliceVar(&clusterOpts.Languages, "languages", []string{"ru", "en"}, "languages to cluster, each separately")
	f.StringSliceVar(&clusterOpts.Ratings, "ratings", []string{"ratings/en_rating.txt", "ratings/ru_rating.txt"}, "authority rating files")
	f.IntVar(&clusterOpts.NDocs, "ndocs", -1, "only process the first n documents (-1 for all)")
	f.StringVar(&clusterOpts.Window, "window", "", "ISO-8601 duration; keep documents this close to the newest one (e.g. P2D)")
	f.StringVar(&clusterOpts.Output, "output", threadsFile, "output file")
}

// clusterAllThreads loads documents and ratings, clusters each language
// bucket and writes the resulting threads.
func clusterAllThreads(ctx context.Context, path string, opts ClusterThreadsOptions) error {
	clustering, err := NewClustering(opts.Clustering)
	if err != nil {
		return err
	}

	window, err := parseWindow(opts.Window)
	if err != nil {
		return err
	}

	ratings, err := LoadRatings(opts.Ratings...)
	if err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	log.Info().Int("sites", len(ratings)).Msg("Agency ratings loaded")

	docs, err := LoadDocuments(path, opts.NDocs)
	if err != nil {
		return err
	}
	log.Info().Int("documents", len(docs)).Msg("Documents loaded")

	docs = FilterWindow(FilterThreadCandidates(docs, opts.Languages), window)
	log.Info().Int("documents", len(docs)).Msg("Thread candidates selected")

	embedder := embedderFromConfig()

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

	result, clusterErr := ClusterBuckets(SplitByLanguage(docs, opts.Languages), clustering, ratings)
	result.ClusteringType = opts.Clustering.Type

	if err := saveThreads(opts.Output, result); err != nil {
		return errors.Join(clusterErr, err)
	}
	log.Info().Str("path", opts.Output).Int("threads", len(result.Threads)).Msg("Threads saved")

	printThreadsReport(result)
	return clusterErr
}

func parseWindow(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", s, err)
	}
	return d.ToTimeDuration(), nil
}

// ClusterBuckets clusters every language bucket concurrently and ranks the
// resulting clusters. Buckets are independent: a failing bucket is reported
// in the joined error and in its summary while the others still produce threads.
func ClusterBuckets(buckets []LanguageBucket, clustering Clustering, ratings Ratings) (ThreadsResult, error) {
	threads := make([][]Thread, len(buckets))
	summaries := make([]BucketSummary, len(buckets))
	errs := make([]error, len(buckets))

	var g errgroup.Group
	for i, bucket := range buckets {
		g.Go(func() error {
			threads[i], summaries[i], errs[i] = clusterBucket(bucket, clustering, ratings)
			return nil
		})
	}
	_ = g.Wait()

	var result ThreadsResult
	for i := range buckets {
		if errs[i] != nil {
			errs[i] = fmt.Errorf("language %s: %w", buckets[i].Language, errs[i])
			summaries[i].Error = errs[i].Error()
			log.Error().Err(errs[i]).Str("language", buckets[i].Language).Msg("Clustering failed")
		}
		for _, t := range threads[i] {
			t.ThreadID = len(result.Threads)
			result.Threads = append(result.Threads, t)
		}
		result.Summary = append(result.Summary, summaries[i])
	}
	return result, errors.Join(errs...)
}

func clusterBucket(bucket LanguageBucket, clustering Clustering, ratings Ratings) ([]Thread, BucketSummary, error) {
	summary := BucketSummary{Language: bucket.Language, Documents: len(bucket.Documents)}

	start := time.Now()
	distances, err := distanceMatrixFor(bucket.Documents)
	if err != nil {
		return nil, summary, err
	}
	res := clustering.ClusterDistances(distances)
	elapsed := time.Since(start)
	summary.ElapsedMS = elapsed.Milliseconds()
	summary.Clusters = len(res.Clusters)
	summary.Noise = len(res.Noise)
	summary.Silhouette = silhouetteScore(distances, res)

	ranked := InClusterRanking(bucket.Documents, res, ratings)
	// Larger threads first; clusters already come ordered by first member.
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(ranked[i]) > len(ranked[j])
	})

	var threads []Thread
	for _, cluster := range ranked {
		if len(cluster) < 2 {
			continue
		}
		t := Thread{Language: bucket.Language, Title: cluster[0].Title}
		for _, doc := range cluster {
			t.Articles = append(t.Articles, ThreadArticle{
				ID:        doc.ID,
				Title:     doc.Title,
				URL:       doc.URL,
				SiteName:  doc.SiteName,
				Authority: ratings.Lookup(doc.SiteName),
			})
		}
		threads = append(threads, t)
	}
	summary.Threads = len(threads)

	log.Info().
		Str("language", bucket.Language).
		Int("documents", summary.Documents).
		Int("clusters", summary.Clusters).
		Int("threads", summary.Threads).
		Int("noise", summary.Noise).
		Float64("silhouette", summary.Silhouette).
		Dur("elapsed", elapsed).
		Msg("Clustered language bucket")
	return threads, summary, nil
}

// saveThreads writes the clustering result as indented JSON.
func saveThreads(path string, result ThreadsResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal threads: %w", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write threads file: %w", err)
	}
	return nil
}

// loadThreads reads a result written by saveThreads.
func loadThreads(path string) (ThreadsResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ThreadsResult{}, fmt.Errorf("failed to read threads file: %w", err)
	}
	var result ThreadsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ThreadsResult{}, fmt.Errorf("failed to parse threads: %w", err)
	}
	return result, nil
}

// printThreadsReport logs each thread with its articles, top-ranked first.
func printThreadsReport(result ThreadsResult) {
	for _, t := range result.Threads {
		log.Info().Int("thread", t.ThreadID).Str("language", t.Language).Int("articles", len(t.Articles)).Msg(truncateString(t.Title, 80))
		for _, a := range t.Articles {
			log.Debug().Str("site", a.SiteName).Float64("authority", a.Authority).Str("url", a.URL).Msg("   " + truncateString(a.Title, 80))
		}
	}
}

// truncateString truncates a string to maxLength runes with an ellipsis.
func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:max(maxLength, 0)])
	}
	return string(r[:maxLength-3]) + "..."
}
