package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	OpenAIAPIKey      string
	OpenAIModel       string
	AnthropicAPIKey   string
	PineconeAPIKey    string
	PineconeIndexName string
	RealtimeBaseURL   string
	RealtimeModel     string
	PDFRenderCmd      string
	DataDir           string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		DatabaseURL:       os.Getenv("DB_URL"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnvOrDefault("PINECONE_INDEX_NAME", "studyhall-material-index"),
		RealtimeBaseURL:   getEnvOrDefault("REALTIME_BASE_URL", "https://api.openai.com/v1"),
		RealtimeModel:     getEnvOrDefault("REALTIME_MODEL", "gpt-4o-realtime-preview"),
		PDFRenderCmd:      os.Getenv("PDF_RENDER_CMD"),
		DataDir:           getEnvOrDefault("DATA_DIR", "./data"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
