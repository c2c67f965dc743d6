package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Vector   VectorConfig
	PubMed   PubMedConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	PromptDir          string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret                string
	AccessTokenExpireMinutes int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiApiKey      string
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string
	LLMModel          string
	TopK              int
}

type VectorConfig struct {
	RecordCollection string
	MemoryCollection string
	EmbeddingDim     int
}

type PubMedConfig struct {
	BaseURL         string
	MaxResults      int
	CacheTTLSeconds int // 0 disables the redis cache
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			PromptDir:          getEnv("PROMPT_DIR", "prompts"),
			IngestTopic:        getEnv("INGEST_TOPIC_NAME", "INGEST_MEDICAL_RECORD"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:                getEnv("JWT_SECRET", ""),
			AccessTokenExpireMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "MedAssist"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			TopK:              getEnvAsInt("TOP_K", 5),
		},
		Vector: VectorConfig{
			RecordCollection: getEnv("VECTOR_RECORD_COLLECTION", "medical_records"),
			MemoryCollection: getEnv("VECTOR_MEMORY_COLLECTION", "memories"),
			EmbeddingDim:     getEnvAsInt("EMBEDDING_DIM", 768),
		},
		PubMed: PubMedConfig{
			BaseURL:         getEnv("PUBMED_BASE_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"),
			MaxResults:      getEnvAsInt("PUBMED_MAX_RESULTS", 2),
			CacheTTLSeconds: getEnvAsInt("PUBMED_CACHE_TTL_SECONDS", 900),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
