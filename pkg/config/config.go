package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreDriverRedis  = "redis"
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
	StoreDriverNone   = "none"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Canvas    CanvasConfig
	Assistant AssistantConfig
	Store     StoreConfig
	Redis     RedisConfig
	Sync      SyncConfig
	Agenda    AgendaConfig
	Calendar  CalendarConfig
	Refresh   RefreshConfig
	Uploads   UploadsConfig
	Ledger    LedgerConfig
	CORS      CORSConfig
	Log       LogConfig
}

// CanvasConfig points the gateway at a Canvas LMS instance.
type CanvasConfig struct {
	BaseURL        string
	PerPage        int
	RequestTimeout time.Duration
}

// AssistantConfig configures the chat assistant backend. The endpoint is
// OpenAI-compatible; the default targets Google's Gemini compatibility layer.
type AssistantConfig struct {
	Enabled         bool
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
	RequestTimeout  time.Duration
	MaxContextChars int
	MaxHistory      int
}

// StoreConfig selects and tunes the persisted key/value store driver.
type StoreConfig struct {
	Driver           string
	Dir              string
	MemoryQuotaBytes int64
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SyncConfig tunes the course file reconciler.
type SyncConfig struct {
	DownloadBatchSize int
	ProbeConcurrency  int
	MaxFileSizeBytes  int64
	QueueWorkers      int
	QueueSize         int
}

// AgendaConfig tunes the assignment aggregation layer.
type AgendaConfig struct {
	AssignmentCacheTTL time.Duration
	ExamKeywords       []string
}

// CalendarConfig tunes the calendar aggregation layer.
type CalendarConfig struct {
	FeedTimeout time.Duration
}

// RefreshConfig seeds the auto-refresh interval before a user picks one.
type RefreshConfig struct {
	DefaultInterval time.Duration
}

// UploadsConfig bounds user-supplied files.
type UploadsConfig struct {
	MaxFileSizeBytes int64
}

// LedgerConfig gates the bookkeeping sandbox endpoints.
type LedgerConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Canvas = CanvasConfig{
		BaseURL:        strings.TrimRight(v.GetString("CANVAS_BASE_URL"), "/"),
		PerPage:        v.GetInt("CANVAS_PER_PAGE"),
		RequestTimeout: parseDuration(v.GetString("CANVAS_REQUEST_TIMEOUT"), 30*time.Second),
	}

	cfg.Assistant = AssistantConfig{
		Enabled:         v.GetBool("ENABLE_ASSISTANT"),
		APIKey:          v.GetString("ASSISTANT_API_KEY"),
		BaseURL:         v.GetString("ASSISTANT_BASE_URL"),
		Model:           v.GetString("ASSISTANT_MODEL"),
		MaxTokens:       v.GetInt("ASSISTANT_MAX_TOKENS"),
		Temperature:     v.GetFloat64("ASSISTANT_TEMPERATURE"),
		RequestTimeout:  parseDuration(v.GetString("ASSISTANT_REQUEST_TIMEOUT"), 60*time.Second),
		MaxContextChars: v.GetInt("ASSISTANT_MAX_CONTEXT_CHARS"),
		MaxHistory:      v.GetInt("ASSISTANT_MAX_HISTORY"),
	}

	cfg.Store = StoreConfig{
		Driver:           v.GetString("STORE_DRIVER"),
		Dir:              v.GetString("STORE_DIR"),
		MemoryQuotaBytes: v.GetInt64("STORE_MEMORY_QUOTA"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	maxCachedSize := v.GetInt64("SYNC_MAX_FILE_SIZE")
	if maxCachedSize <= 0 {
		maxCachedSize = 20 * 1024 * 1024
	}
	cfg.Sync = SyncConfig{
		DownloadBatchSize: v.GetInt("SYNC_DOWNLOAD_BATCH_SIZE"),
		ProbeConcurrency:  v.GetInt("SYNC_PROBE_CONCURRENCY"),
		MaxFileSizeBytes:  maxCachedSize,
		QueueWorkers:      v.GetInt("SYNC_QUEUE_WORKERS"),
		QueueSize:         v.GetInt("SYNC_QUEUE_SIZE"),
	}

	cfg.Agenda = AgendaConfig{
		AssignmentCacheTTL: parseDuration(v.GetString("AGENDA_ASSIGNMENT_CACHE_TTL"), 5*time.Minute),
		ExamKeywords:       splitAndTrim(v.GetString("AGENDA_EXAM_KEYWORDS")),
	}

	cfg.Calendar = CalendarConfig{
		FeedTimeout: parseDuration(v.GetString("CALENDAR_FEED_TIMEOUT"), 15*time.Second),
	}

	cfg.Refresh = RefreshConfig{
		DefaultInterval: parseDuration(v.GetString("REFRESH_DEFAULT_INTERVAL"), 5*time.Minute),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 15 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{MaxFileSizeBytes: maxUploadSize}

	cfg.Ledger = LedgerConfig{Enabled: v.GetBool("ENABLE_LEDGER")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("CANVAS_BASE_URL", "https://canvas.instructure.com")
	v.SetDefault("CANVAS_PER_PAGE", 100)
	v.SetDefault("CANVAS_REQUEST_TIMEOUT", "30s")

	v.SetDefault("ENABLE_ASSISTANT", false)
	v.SetDefault("ASSISTANT_API_KEY", "")
	v.SetDefault("ASSISTANT_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("ASSISTANT_MODEL", "gemini-2.0-flash")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 1024)
	v.SetDefault("ASSISTANT_TEMPERATURE", 0.4)
	v.SetDefault("ASSISTANT_REQUEST_TIMEOUT", "60s")
	v.SetDefault("ASSISTANT_MAX_CONTEXT_CHARS", 12000)
	v.SetDefault("ASSISTANT_MAX_HISTORY", 20)

	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("STORE_DIR", "./data")
	v.SetDefault("STORE_MEMORY_QUOTA", 0)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SYNC_DOWNLOAD_BATCH_SIZE", 10)
	v.SetDefault("SYNC_PROBE_CONCURRENCY", 5)
	v.SetDefault("SYNC_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("SYNC_QUEUE_WORKERS", 2)
	v.SetDefault("SYNC_QUEUE_SIZE", 64)

	v.SetDefault("AGENDA_ASSIGNMENT_CACHE_TTL", "5m")
	v.SetDefault("AGENDA_EXAM_KEYWORDS", "exam,final,midterm,test")

	v.SetDefault("CALENDAR_FEED_TIMEOUT", "15s")

	v.SetDefault("REFRESH_DEFAULT_INTERVAL", "5m")

	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 15*1024*1024)

	v.SetDefault("ENABLE_LEDGER", true)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
