package config

import (
	"fmt"
	"os"
	"strconv"
)

// Settings holds all runtime configuration for the research pipeline.
// Values come from environment variables with defaults suitable for
// local development; load a .env file before calling Load if needed.
type Settings struct {
	// LLM provider configuration
	LLMProvider string // "openai" (any OpenAI-compatible endpoint) or "gemini"
	APIKey      string
	BaseURL     string
	Model       string

	GeminiAPIKey string
	GeminiModel  string

	// Embedding provider configuration
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDim     int

	// Redis vector index configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	IndexName     string

	// Chunking configuration
	ChunkSize    int
	ChunkOverlap int

	// Retrieval configuration
	MaxDocumentsRetrieved int

	// Financial NLP configuration
	SentimentThreshold float64

	// Logging
	LogFile string
	Prod    bool
}

// Load reads settings from the environment.
func Load() Settings {
	return Settings{
		LLMProvider: getEnvString("LLM_PROVIDER", "openai"),
		APIKey:      os.Getenv("API_KEY"),
		BaseURL:     os.Getenv("BASE_URL"),
		Model:       getEnvString("MODEL", "gpt-4o"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),

		EmbeddingAPIKey:  getEnvString("EMBEDDING_API_KEY", os.Getenv("API_KEY")),
		EmbeddingBaseURL: getEnvString("EMBEDDING_BASE_URL", os.Getenv("BASE_URL")),
		EmbeddingModel:   getEnvString("EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIMENSION", 3072),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		IndexName:     getEnvString("VECTOR_INDEX_NAME", "financial-research"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		MaxDocumentsRetrieved: getEnvInt("MAX_DOCUMENTS_RETRIEVED", 5),

		SentimentThreshold: getEnvFloat("SENTIMENT_THRESHOLD", 0.05),

		LogFile: getEnvString("LOG_FILE", "logs/fin-rag.log"),
		Prod:    getEnvBool("PROD", false),
	}
}

// Validate rejects configurations that are caller bugs rather than
// runtime conditions.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must be non-negative, got %d", s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	if s.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", s.EmbeddingDim)
	}
	if s.MaxDocumentsRetrieved <= 0 {
		return fmt.Errorf("max documents retrieved must be positive, got %d", s.MaxDocumentsRetrieved)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
