package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Vertex VertexConfig
	Output OutputConfig
	Fetch  FetchConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type VertexConfig struct {
	ProjectID   string
	Location    string
	GeminiModel string
	ImagenModel string
}

type OutputConfig struct {
	Bucket string
}

type FetchConfig struct {
	Timeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			ReadTimeout: getDuration("READ_TIMEOUT", 10*time.Second),
			// The whole pipeline runs inside one response, so the write
			// timeout has to outlive the slowest model call chain.
			WriteTimeout: getDuration("WRITE_TIMEOUT", 5*time.Minute),
		},
		Vertex: VertexConfig{
			ProjectID:   getEnv("PROJECT_ID", ""),
			Location:    getEnv("LOCATION", "europe-west1"),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			ImagenModel: getEnv("IMAGEN_MODEL", "imagen-3.0-generate-002"),
		},
		Output: OutputConfig{
			Bucket: getEnv("GCS_OUTPUT_BUCKET", ""),
		},
		Fetch: FetchConfig{
			Timeout: getDuration("FETCH_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.Vertex.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID is required")
	}
	if cfg.Output.Bucket == "" {
		return nil, fmt.Errorf("GCS_OUTPUT_BUCKET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
