package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ExtractConfig selects the extraction engine and transport encoding.
type ExtractConfig struct {
	Engine         string // "openai"|"anthropic"
	OpenAIModel    string
	AnthropicModel string
	Transport      string // "pdf"|"images"|"auto"
	RenderDPI      int
	RenderQuality  int
	RenderMaxPages int
	RequestTimeout time.Duration
}

// StorageConfig selects the storage backend and its target location.
type StorageConfig struct {
	Backend      string // "drive"|"s3"
	RootFolderID string
	DriveBaseURL string
	DriveToken   string
	S3Bucket     string
	S3Prefix     string
}

// WorkerConfig bounds cross-arrangement concurrency for process-all runs.
// Concurrency 1 drains arrangements strictly sequentially.
type WorkerConfig struct {
	Concurrency int
}

// StatusConfig controls the optional Redis status mirror.
type StatusConfig struct {
	Mirror   bool
	RedisURL string
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Extract ExtractConfig
	Storage StorageConfig
	Worker  WorkerConfig
	Status  StatusConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/scorefiler.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_scorefiler",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Extract = ExtractConfig{
		Engine:         strings.ToLower(getEnv("EXTRACT_ENGINE", "openai")),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1"),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet"),
		Transport:      strings.ToLower(getEnv("EXTRACT_TRANSPORT", "auto")),
		RenderDPI:      parseInt(getEnv("RENDER_DPI", "150"), 150),
		RenderQuality:  parseInt(getEnv("RENDER_QUALITY", "80"), 80),
		RenderMaxPages: parseInt(getEnv("RENDER_MAX_PAGES", "40"), 40),
		RequestTimeout: parseDuration(getEnv("EXTRACT_TIMEOUT", "120s"), 120*time.Second),
	}

	cfg.Storage = StorageConfig{
		Backend:      strings.ToLower(getEnv("STORAGE_BACKEND", "drive")),
		RootFolderID: getEnv("STORAGE_ROOT_FOLDER_ID", ""),
		DriveBaseURL: getEnv("DRIVE_BASE_URL", "https://www.googleapis.com"),
		DriveToken:   getEnv("DRIVE_ACCESS_TOKEN", ""),
		S3Bucket:     getEnv("AWS_S3_BUCKET", ""),
		S3Prefix:     getEnv("S3_ROOT_PREFIX", "arrangements"),
	}

	cfg.Worker = WorkerConfig{
		Concurrency: parseInt(getEnv("WORKER_CONCURRENCY", "1"), 1),
	}

	cfg.Status = StatusConfig{
		Mirror:   parseBool(getEnv("STATUS_MIRROR", "0")),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" { return def }
	if n, err := strconv.Atoi(s); err == nil { return n }
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" { return def }
	if d, err := time.ParseDuration(s); err == nil { return d }
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" { return "true" }
	return "false"
}
