package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cenkalti/newsthreads"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("Error loading .env file")
	}

	// Set configuration for the newsthreads package
	newsthreads.Config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	newsthreads.Config.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	newsthreads.Config.EmbeddingModel = os.Getenv("EMBEDDING_MODEL")
	newsthreads.Config.EmbeddingsDB = os.Getenv("EMBEDDINGS_DB")
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		dims, err := strconv.Atoi(v)
		if err != nil {
			log.Fatal().Err(err).Str("value", v).Msg("Invalid EMBEDDING_DIMENSIONS")
		}
		newsthreads.Config.EmbeddingDimensions = dims
	}

	rootCmd := &cobra.Command{
		Use:          "newsthreads",
		Short:        "Group news articles into event threads",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose || os.Getenv("LOG_LEVEL") == "debug" {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add all commands from the newsthreads package
	rootCmd.AddCommand(newsthreads.EmbedDocumentsCmd)
	rootCmd.AddCommand(newsthreads.ClusterThreadsCmd)
	rootCmd.AddCommand(newsthreads.GenerateReportCmd)
	rootCmd.AddCommand(newsthreads.SchemaCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

var runCmd = &cobra.Command{
	Use:   "run <documents.json>",
	Short: "Run the full pipeline: embed-documents -> cluster-threads -> generate-report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("Running full pipeline...")
		if err := newsthreads.EmbedDocumentsCmd.RunE(cmd, args); err != nil {
			return err
		}
		if err := newsthreads.ClusterThreadsCmd.RunE(cmd, args); err != nil {
			return err
		}
		if err := newsthreads.GenerateReportCmd.RunE(cmd, nil); err != nil {
			return err
		}
		log.Info().Msg("Pipeline complete.")
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove threads output and reports",
	Run: func(cmd *cobra.Command, args []string) {
		dirs := []string{"threads"}
		for _, dir := range dirs {
			files, err := os.ReadDir(dir)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("Failed to read directory")
				continue
			}
			for _, file := range files {
				if file.IsDir() {
					continue
				}
				if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
					log.Warn().Err(err).Str("file", file.Name()).Msg("Failed to remove file")
				}
			}
		}

		for _, name := range []string{"report.md", "report.html"} {
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", name).Msg("Failed to remove file")
			}
		}

		log.Info().Msg("Cleaned threads directory and reports.")
	},
}
