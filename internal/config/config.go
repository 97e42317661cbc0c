package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderGoogleAI  Provider = "googleai"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"

	// Embedding-only providers.
	ProviderHuggingFace Provider = "huggingface"
	ProviderBedrock     Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Host string
	Port int

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM generation
	LLMProvider     Provider
	LLMModel        string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	HFAPIKey       string
	AWSRegion      string

	// Encryption key for journal text fields (Fernet, base64).
	FernetKey string

	// Pipeline behavior
	CrisisDetectionEnabled bool
	StageTimeout           time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
// Defaults match the Python Lumina service.
func Load() Config {
	return Config{
		Host: getEnv("LUMINA_HOST", "0.0.0.0"),
		Port: getEnvInt("LUMINA_PORT", 8080),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "lumina"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "journal"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     Provider(getEnv("LUMINA_LLM_PROVIDER", string(ProviderGoogleAI))),
		LLMModel:        getEnv("LUMINA_LLM_MODEL", "gemini-2.0-flash-exp"),
		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		EmbedProvider:  Provider(getEnv("LUMINA_EMBED_PROVIDER", string(ProviderHuggingFace))),
		EmbedModel:     getEnv("LUMINA_EMBED_MODEL", "sentence-transformers/all-mpnet-base-v2"),
		EmbedDimension: getEnvInt("LUMINA_EMBED_DIMENSION", 768),
		HFAPIKey:       getEnv("HF_API_KEY", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		FernetKey: getEnv("FERNET_KEY", ""),

		CrisisDetectionEnabled: getEnv("CRISIS_DETECTION_ENABLED", "true") == "true",
		StageTimeout:           getEnvDuration("LUMINA_STAGE_TIMEOUT", 30*time.Second),

		LogFile:  getEnv("LUMINA_LOG_FILE", "/tmp/lumina.log"),
		LogLevel: parseLogLevel(getEnv("LUMINA_LOG_LEVEL", "INFO")),
	}
}

// Validate checks startup-fatal requirements: the encryption key and the
// credentials for the selected LLM provider must be present. Embedding
// credentials are not required; an unconfigured embedder means the pipeline
// runs without the embedding stage.
func (c Config) Validate() error {
	if c.FernetKey == "" {
		return fmt.Errorf("FERNET_KEY must be configured")
	}

	switch c.LLMProvider {
	case ProviderGoogleAI:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY required for provider %q", c.LLMProvider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY required for provider %q", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY required for provider %q", c.LLMProvider)
		}
	case ProviderOllama:
		// Local server, no credentials.
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	return nil
}

// EmbeddingConfigured reports whether the selected embedding provider has
// everything it needs. When false, entries are stored without vectors.
func (c Config) EmbeddingConfigured() bool {
	switch c.EmbedProvider {
	case ProviderHuggingFace:
		return c.HFAPIKey != ""
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderOllama, ProviderBedrock:
		return true
	default:
		return false
	}
}

func getEnv(key, defaultVal string) string {
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

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
