package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	DatabasePath       string
	LogLevel           string
	DataRawDir         string
	DefaultSource      string
	MaxUploadSizeBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./bank.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DataRawDir:         getEnv("DATA_RAW_DIR", "data/raw"),
		DefaultSource:      getEnv("DEFAULT_SOURCE", "itau"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, RawDir=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.DataRawDir)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}
