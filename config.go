package newsthreads

// Config holds all environment variables
var Config struct {
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingsDB        string
}

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultEmbeddingsDB   = "embeddings.db"
)

func embeddingModel() string {
	if Config.EmbeddingModel == "" {
		return defaultEmbeddingModel
	}
	return Config.EmbeddingModel
}

func embeddingsDB() string {
	if Config.EmbeddingsDB == "" {
		return defaultEmbeddingsDB
	}
	return Config.EmbeddingsDB
}
