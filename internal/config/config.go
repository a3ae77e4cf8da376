package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/planora/internal/app/retry"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Gemini GeminiConfig `yaml:"gemini"`

	StorageBackend   string `yaml:"storage_backend"` // "memory", "sqlite" or "firestore"
	SQLitePath       string `yaml:"sqlite_path"`
	FirestoreProject string `yaml:"firestore_project"`
	IndexBackend     string `yaml:"index_backend"` // "memory", "sqlite" or "firestore"

	Queue QueueConfig `yaml:"queue"`

	Assistant AssistantConfig `yaml:"assistant"`

	// AuthTokens maps static bearer tokens to user ids.
	AuthTokens map[string]string `yaml:"auth_tokens"`

	Speech SpeechConfig `yaml:"speech"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Project        string `yaml:"project"`
	Location       string `yaml:"location"`
	Backend        string `yaml:"backend"` // "gemini" (API key) or "vertex"
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	UseMock        bool   `yaml:"use_mock"`
}

type QueueConfig struct {
	Backend       string `yaml:"backend"` // "local" or "redis"
	Workers       int    `yaml:"workers"`
	Buffer        int    `yaml:"buffer"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
}

type AssistantConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TopK                int     `yaml:"top_k"`
	HistoryTurns        int     `yaml:"history_turns"`
	MaxActions          int     `yaml:"max_actions"`

	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`

	TranscribeTimeout time.Duration `yaml:"transcribe_timeout"`
	RetrieveTimeout   time.Duration `yaml:"retrieve_timeout"`
	InferTimeout      time.Duration `yaml:"infer_timeout"`

	Timezone string `yaml:"timezone"`

	FallbackReply string `yaml:"fallback_reply"`
	AckReply      string `yaml:"ack_reply"`
	NoMemoryReply string `yaml:"no_memory_reply"`
}

type SpeechConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Voice   string `yaml:"voice"`
	Engine  string `yaml:"engine"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Gemini: GeminiConfig{
			Location:       "us-central1",
			Backend:        "gemini",
			Model:          "gemini-2.5-flash-lite",
			EmbeddingModel: "text-embedding-004",
		},
		StorageBackend: "memory",
		SQLitePath:     "planora.db",
		IndexBackend:   "memory",
		Queue: QueueConfig{
			Backend:  "local",
			Workers:  2,
			Buffer:   256,
			RedisKey: "planora:index:jobs",
		},
		Assistant: AssistantConfig{
			SimilarityThreshold: 0.5,
			TopK:                5,
			HistoryTurns:        3,
			MaxActions:          10,
			RetryMaxAttempts:    3,
			RetryBaseDelay:      500 * time.Millisecond,
			RetryMaxDelay:       4 * time.Second,
			TranscribeTimeout:   30 * time.Second,
			RetrieveTimeout:     10 * time.Second,
			InferTimeout:        45 * time.Second,
			Timezone:            "UTC",
			FallbackReply:       "Sorry, I couldn't process that request. Please try rephrasing it.",
			AckReply:            "Done.",
			NoMemoryReply:       "I couldn't find anything relevant in your notes or tasks.",
		},
		AuthTokens: map[string]string{},
		Speech: SpeechConfig{
			Region: "us-east-1",
			Voice:  "Joanna",
			Engine: "neural",
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load builds the config from defaults, then the YAML file named by
// PLANORA_CONFIG (if any), then env vars. Env wins.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("PLANORA_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PLANORA_PORT", getEnv("PORT", c.Port))
	c.LogLevel = getEnv("PLANORA_LOG_LEVEL", c.LogLevel)

	c.Gemini.APIKey = getEnv("PLANORA_GEMINI_API_KEY", getEnv("GEMINI_API_KEY", c.Gemini.APIKey))
	c.Gemini.Project = getEnv("PLANORA_GCP_PROJECT", c.Gemini.Project)
	c.Gemini.Location = getEnv("PLANORA_GCP_LOCATION", c.Gemini.Location)
	c.Gemini.Backend = getEnv("PLANORA_GEMINI_BACKEND", c.Gemini.Backend)
	c.Gemini.Model = getEnv("PLANORA_MODEL_NAME", c.Gemini.Model)
	c.Gemini.EmbeddingModel = getEnv("PLANORA_EMBEDDING_MODEL", c.Gemini.EmbeddingModel)
	c.Gemini.UseMock = getBoolEnv("PLANORA_USE_MOCK_LLM", c.Gemini.UseMock)

	c.StorageBackend = getEnv("PLANORA_STORAGE_BACKEND", c.StorageBackend)
	c.SQLitePath = getEnv("PLANORA_SQLITE_PATH", c.SQLitePath)
	c.FirestoreProject = getEnv("PLANORA_FIRESTORE_PROJECT", getEnv("PLANORA_GCP_PROJECT", c.FirestoreProject))
	c.IndexBackend = getEnv("PLANORA_INDEX_BACKEND", c.IndexBackend)

	c.Queue.Backend = getEnv("PLANORA_QUEUE_BACKEND", c.Queue.Backend)
	c.Queue.Workers = getIntEnv("PLANORA_QUEUE_WORKERS", c.Queue.Workers)
	c.Queue.Buffer = getIntEnv("PLANORA_QUEUE_BUFFER", c.Queue.Buffer)
	c.Queue.RedisAddr = getEnv("PLANORA_REDIS_ADDR", c.Queue.RedisAddr)
	c.Queue.RedisPassword = getEnv("PLANORA_REDIS_PASSWORD", c.Queue.RedisPassword)
	c.Queue.RedisDB = getIntEnv("PLANORA_REDIS_DB", c.Queue.RedisDB)
	c.Queue.RedisKey = getEnv("PLANORA_REDIS_KEY", c.Queue.RedisKey)

	a := &c.Assistant
	a.SimilarityThreshold = getFloatEnv("PLANORA_SIMILARITY_THRESHOLD", a.SimilarityThreshold)
	a.TopK = getIntEnv("PLANORA_TOP_K", a.TopK)
	a.HistoryTurns = getIntEnv("PLANORA_HISTORY_TURNS", a.HistoryTurns)
	a.MaxActions = getIntEnv("PLANORA_MAX_ACTIONS", a.MaxActions)
	a.RetryMaxAttempts = getIntEnv("PLANORA_RETRY_MAX_ATTEMPTS", a.RetryMaxAttempts)
	a.RetryBaseDelay = getDurationEnv("PLANORA_RETRY_BASE_DELAY", a.RetryBaseDelay)
	a.RetryMaxDelay = getDurationEnv("PLANORA_RETRY_MAX_DELAY", a.RetryMaxDelay)
	a.TranscribeTimeout = getDurationEnv("PLANORA_TRANSCRIBE_TIMEOUT", a.TranscribeTimeout)
	a.RetrieveTimeout = getDurationEnv("PLANORA_RETRIEVE_TIMEOUT", a.RetrieveTimeout)
	a.InferTimeout = getDurationEnv("PLANORA_INFER_TIMEOUT", a.InferTimeout)
	a.Timezone = getEnv("PLANORA_TIMEZONE", a.Timezone)
	a.FallbackReply = getEnv("PLANORA_FALLBACK_REPLY", a.FallbackReply)
	a.AckReply = getEnv("PLANORA_ACK_REPLY", a.AckReply)
	a.NoMemoryReply = getEnv("PLANORA_NO_MEMORY_REPLY", a.NoMemoryReply)

	if v := os.Getenv("PLANORA_AUTH_TOKENS"); v != "" {
		c.AuthTokens = parseTokens(v)
	}

	c.Speech.Enabled = getBoolEnv("PLANORA_SPEECH_ENABLED", c.Speech.Enabled)
	c.Speech.Region = getEnv("PLANORA_SPEECH_REGION", getEnv("AWS_REGION", c.Speech.Region))
	c.Speech.Voice = getEnv("PLANORA_SPEECH_VOICE", c.Speech.Voice)
	c.Speech.Engine = getEnv("PLANORA_SPEECH_ENGINE", c.Speech.Engine)
}

// parseTokens reads "token:user,token2:user2". Malformed pairs are skipped.
func parseTokens(v string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || user == "" {
			continue
		}
		out[token] = user
	}
	return out
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Assistant.Timezone)
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory", "sqlite":
	case "firestore":
		if c.FirestoreProject == "" {
			return fmt.Errorf("firestore storage backend requires a project (PLANORA_FIRESTORE_PROJECT)")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.IndexBackend {
	case "memory", "sqlite":
	case "firestore":
		if c.FirestoreProject == "" {
			return fmt.Errorf("firestore index backend requires a project (PLANORA_FIRESTORE_PROJECT)")
		}
	default:
		return fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}

	switch c.Queue.Backend {
	case "local":
	case "redis":
		if c.Queue.RedisAddr == "" {
			return fmt.Errorf("redis queue backend requires PLANORA_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}

	if !c.Gemini.UseMock {
		switch c.Gemini.Backend {
		case "gemini":
			if c.Gemini.APIKey == "" {
				return fmt.Errorf("gemini backend requires PLANORA_GEMINI_API_KEY")
			}
		case "vertex":
			if c.Gemini.Project == "" || c.Gemini.Location == "" {
				return fmt.Errorf("vertex backend requires PLANORA_GCP_PROJECT and PLANORA_GCP_LOCATION")
			}
		default:
			return fmt.Errorf("unknown gemini backend %q", c.Gemini.Backend)
		}
	}

	a := c.Assistant
	if a.SimilarityThreshold < 0 || a.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be within [0,1], got %v", a.SimilarityThreshold)
	}
	if a.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	if a.MaxActions < 1 {
		return fmt.Errorf("max_actions must be positive")
	}
	if a.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1")
	}
	if err := retry.CheckExponential(a.RetryBaseDelay, a.RetryMaxDelay, a.RetryMaxAttempts); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
	}
	return nil
}
