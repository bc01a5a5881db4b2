package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything both services need at start-up.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Storage     StorageConfig     `yaml:"storage"`
	Events      EventsConfig      `yaml:"events"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
}

// ServerConfig configures the two HTTP listeners
type ServerConfig struct {
	AnalysisPort int      `yaml:"analysis_port"`
	NewsPort     int      `yaml:"news_port"`
	NewsOrigins  []string `yaml:"news_origins"`
}

// LLMConfig selects the OpenAI-compatible chat endpoint
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig selects the web search backend
type SearchConfig struct {
	Provider       string `yaml:"provider"`
	TavilyAPIKey   string `yaml:"tavily_api_key"`
	SearXNGURL     string `yaml:"searxng_url"`
	SearXNGTimeout int    `yaml:"searxng_timeout"`
	MaxResults     int    `yaml:"max_results"`
}

// StorageConfig selects where intermediate artifacts live.
// Backend is one of "file", "redis" or "s3".
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`

	S3Bucket       string `yaml:"s3_bucket"`
	S3Prefix       string `yaml:"s3_prefix"`
	S3Region       string `yaml:"s3_region"`
	S3Profile      string `yaml:"s3_profile"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
}

// EventsConfig enables artifact.written events when Brokers is set
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig throttles outbound LLM calls
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// PipelineConfig tunes agent runs
type PipelineConfig struct {
	StageTimeout  time.Duration `yaml:"stage_timeout"`
	AgentMaxSteps int           `yaml:"agent_max_steps"`
}

// Load reads .env (if present), then the optional YAML file named by CONFIG_FILE,
// then applies environment overrides and defaults.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a YAML config file without applying env overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects combinations that cannot start.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "redis":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage backend s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Concurrency.QPS <= 0 || c.Concurrency.RPM <= 0 {
		return fmt.Errorf("concurrency qps and rpm must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.AnalysisPort = getEnvIntOrDefault("ANALYSIS_PORT", cfg.Server.AnalysisPort)
	cfg.Server.NewsPort = getEnvIntOrDefault("NEWS_PORT", cfg.Server.NewsPort)
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		// the local dev frontend stays allowed alongside FRONTEND_URL
		if len(cfg.Server.NewsOrigins) == 0 {
			cfg.Server.NewsOrigins = []string{DefaultNewsOrigin}
		}
		cfg.Server.NewsOrigins = append(cfg.Server.NewsOrigins, splitList(v)...)
	}

	cfg.LLM.BaseURL = getEnvOrDefault("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnvOrDefault("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnvOrDefault("LLM_MODEL", cfg.LLM.Model)

	cfg.Search.Provider = getEnvOrDefault("SEARCH_PROVIDER", cfg.Search.Provider)
	cfg.Search.TavilyAPIKey = getEnvOrDefault("TAVILY_API_KEY", cfg.Search.TavilyAPIKey)
	cfg.Search.SearXNGURL = getEnvOrDefault("SEARXNG_URL", cfg.Search.SearXNGURL)
	cfg.Search.SearXNGTimeout = getEnvIntOrDefault("SEARXNG_TIMEOUT", cfg.Search.SearXNGTimeout)
	cfg.Search.MaxResults = getEnvIntOrDefault("SEARCH_MAX_RESULTS", cfg.Search.MaxResults)

	cfg.Storage.Backend = getEnvOrDefault("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Dir = getEnvOrDefault("ARTIFACT_DIR", cfg.Storage.Dir)
	cfg.Storage.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = getEnvIntOrDefault("REDIS_DB", cfg.Storage.RedisDB)
	cfg.Storage.RedisPrefix = getEnvOrDefault("REDIS_PREFIX", cfg.Storage.RedisPrefix)
	cfg.Storage.RedisTTL = getEnvDurationOrDefault("REDIS_TTL", cfg.Storage.RedisTTL)
	cfg.Storage.S3Bucket = getEnvOrDefault("S3_BUCKET", cfg.Storage.S3Bucket)
	cfg.Storage.S3Prefix = getEnvOrDefault("S3_PREFIX", cfg.Storage.S3Prefix)
	cfg.Storage.S3Region = getEnvOrDefault("S3_REGION", cfg.Storage.S3Region)
	cfg.Storage.S3Profile = getEnvOrDefault("S3_PROFILE", cfg.Storage.S3Profile)
	if v := os.Getenv("S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3UsePathStyle = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	cfg.Events.Topic = getEnvOrDefault("KAFKA_TOPIC", cfg.Events.Topic)

	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnvOrDefault("LOG_FILE", cfg.Log.File)

	cfg.Concurrency.QPS = getEnvIntOrDefault("LLM_QPS", cfg.Concurrency.QPS)
	cfg.Concurrency.RPM = getEnvIntOrDefault("LLM_RPM", cfg.Concurrency.RPM)

	cfg.Pipeline.StageTimeout = getEnvDurationOrDefault("STAGE_TIMEOUT", cfg.Pipeline.StageTimeout)
	cfg.Pipeline.AgentMaxSteps = getEnvIntOrDefault("AGENT_MAX_STEPS", cfg.Pipeline.AgentMaxSteps)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.AnalysisPort == 0 {
		cfg.Server.AnalysisPort = DefaultAnalysisPort
	}
	if cfg.Server.NewsPort == 0 {
		cfg.Server.NewsPort = DefaultNewsPort
	}
	if len(cfg.Server.NewsOrigins) == 0 {
		cfg.Server.NewsOrigins = []string{DefaultNewsOrigin}
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = DefaultArtifactDir
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = "localhost:6379"
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "us-east-1"
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Concurrency.QPS == 0 {
		cfg.Concurrency.QPS = 2
	}
	if cfg.Concurrency.RPM == 0 {
		cfg.Concurrency.RPM = 60
	}
	if cfg.Pipeline.StageTimeout == 0 {
		cfg.Pipeline.StageTimeout = DefaultStageTimeout
	}
	if cfg.Pipeline.AgentMaxSteps == 0 {
		cfg.Pipeline.AgentMaxSteps = DefaultAgentMaxSteps
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
