package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	DBDialect   string
	Port        string
	Env         string

	OpenAIKey string
	LLMModel  string

	LLMTimeoutSeconds int
	SQLTimeoutSeconds int

	ChatRowLimit   int
	ExportRowLimit int

	AnomalyThreshold float64
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBDialect:         os.Getenv("DB_DIALECT"),
		Port:              os.Getenv("PORT"),
		Env:               os.Getenv("ENV"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		LLMTimeoutSeconds: envInt("LLM_TIMEOUT", 60),
		SQLTimeoutSeconds: envInt("SQL_TIMEOUT", 30),
		ChatRowLimit:      envInt("CHAT_ROW_LIMIT", 50),
		ExportRowLimit:    envInt("EXPORT_ROW_LIMIT", 10000),
		AnomalyThreshold:  envFloat("ANOMALY_THRESHOLD", 3.0),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.DBDialect == "" {
		cfg.DBDialect = "sqlite"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "munero.sqlite"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}

	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using default %g", key, raw, fallback)
		return fallback
	}
	return v
}
