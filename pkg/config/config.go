package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"StockPulse/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Redis       RedisConfig      `yaml:"redis"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
	Store       StoreConfig      `yaml:"store"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	News        NewsConfig       `yaml:"news"`
	Market      MarketConfig     `yaml:"market"`
	LLM         LLMConfig        `yaml:"llm"`
	Cache       CacheConfig      `yaml:"cache"`
	Search      SearchConfig     `yaml:"search"`
	Janitor     JanitorConfig    `yaml:"janitor"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"180s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
	Output string `yaml:"output" default:"stdout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type RedisConfig struct {
	URL      string `yaml:"url" default:"redis://localhost:6379/0"`
	Prefix   string `yaml:"prefix" default:"stockpulse"`
	PoolSize int    `yaml:"pool_size" default:"10"`
}

type RateLimitConfig struct {
	Points        int    `yaml:"points" default:"5"`
	WindowSeconds int    `yaml:"window_seconds" default:"60"`
	BlockSeconds  int    `yaml:"block_seconds" default:"60"`
	KeyPrefix     string `yaml:"key_prefix" default:"rl"`
	FailOpen      bool   `yaml:"fail_open"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver" default:"postgres"` // postgres, clickhouse, sqlite, memory
	DatabaseURL string `yaml:"database_url"`
	MaxConns    int    `yaml:"max_conns" default:"10"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"stockpulse"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

type KafkaConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic" default:"stockpulse.run.completed"`
	WarmupTopic string   `yaml:"warmup_topic" default:"stockpulse.run.warmup"`
	Compression string   `yaml:"compression" default:"snappy"`
	Producer    struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"stockpulse-warmup"`
		Workers    int           `yaml:"workers" default:"2"`
		BufferSize int           `yaml:"buffer_size" default:"16"`
		RetryMax   int           `yaml:"retry_max" default:"2"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"500ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"10s"`
		DLQTopic   string        `yaml:"dlq_topic"`
	} `yaml:"consumer"`
}

type NewsConfig struct {
	Provider string        `yaml:"provider" default:"newsapi"` // newsapi or rss
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url" default:"https://newsapi.org"`
	RSSURL   string        `yaml:"rss_url" default:"https://news.google.com/rss/search"`
	Limit    int           `yaml:"limit" default:"15"`
	Lookback time.Duration `yaml:"lookback" default:"720h"`
	Timeout  time.Duration `yaml:"timeout" default:"15s"`
}

type IntervalConfig struct {
	Interval string        `yaml:"interval"`
	Lookback time.Duration `yaml:"lookback"`
}

type MarketConfig struct {
	BaseURL   string           `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	Pacing    time.Duration    `yaml:"pacing" default:"300ms"`
	Timeout   time.Duration    `yaml:"timeout" default:"20s"`
	Intervals []IntervalConfig `yaml:"intervals"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider" default:"openai"` // openai, anthropic, gemini
	Endpoint  string        `yaml:"endpoint" default:"https://api.openai.com/v1/chat/completions"`
	Model     string        `yaml:"model" default:"gpt-4o-mini"`
	APIKey    string        `yaml:"api_key"`
	MaxTokens int           `yaml:"max_tokens" default:"2048"`
	Timeout   time.Duration `yaml:"timeout" default:"120s"`
}

type CacheConfig struct {
	Staleness       time.Duration `yaml:"staleness" default:"168h"`
	PersistDegraded bool          `yaml:"persist_degraded" default:"true"`
	CandleRows      int           `yaml:"candle_rows" default:"300"`
	ArtifactDir     string        `yaml:"artifact_dir" default:"data/exports"`
	RunTimeout      time.Duration `yaml:"run_timeout" default:"170s"`
}

type SearchConfig struct {
	Backend  string        `yaml:"backend" default:"redis"` // redis or memory
	CacheTTL time.Duration `yaml:"cache_ttl" default:"1h"`
	Limit    int           `yaml:"limit" default:"10"`
}

type JanitorConfig struct {
	Enabled  bool   `yaml:"enabled" default:"true"`
	Schedule string `yaml:"schedule" default:"@every 1h"`
}

// Load reads and parses a YAML configuration file on top of struct defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables
// and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("NEWSAPI_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := getenv("LLM_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Store.DatabaseURL = v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	c.RateLimit.Points = util.ParseIntDefault(getenv("RATE_LIMIT_POINTS"), c.RateLimit.Points)
	c.RateLimit.WindowSeconds = util.ParseIntDefault(getenv("RATE_LIMIT_WINDOW_SECONDS"), c.RateLimit.WindowSeconds)
	c.RateLimit.BlockSeconds = util.ParseIntDefault(getenv("RATE_LIMIT_BLOCK_SECONDS"), c.RateLimit.BlockSeconds)
	c.RateLimit.FailOpen = util.ParseBoolDefault(getenv("RATE_LIMIT_FAIL_OPEN"), c.RateLimit.FailOpen)
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
		c.Kafka.Enabled = true
	}
	c.Server.Port = util.ParseIntDefault(getenv("PORT"), c.Server.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.RateLimit.Points < 1 {
		return fmt.Errorf("rate_limit.points must be >= 1")
	}
	if c.RateLimit.WindowSeconds < 1 {
		return fmt.Errorf("rate_limit.window_seconds must be >= 1")
	}
	if c.RateLimit.BlockSeconds < 0 {
		return fmt.Errorf("rate_limit.block_seconds must be >= 0")
	}
	switch c.Store.Driver {
	case "postgres", "sqlite":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for driver '%s'", c.Store.Driver)
		}
	case "clickhouse", "memory":
	default:
		return fmt.Errorf("store.driver must be 'postgres', 'clickhouse', 'sqlite' or 'memory', got '%s'", c.Store.Driver)
	}
	switch c.News.Provider {
	case "newsapi":
		if c.News.APIKey == "" {
			return fmt.Errorf("news.api_key is required (NEWSAPI_KEY)")
		}
	case "rss":
	default:
		return fmt.Errorf("news.provider must be 'newsapi' or 'rss', got '%s'", c.News.Provider)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required (LLM_ENDPOINT)")
		}
	case "anthropic", "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider '%s'", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'anthropic' or 'gemini', got '%s'", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required (LLM_MODEL)")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Search.Backend != "redis" && c.Search.Backend != "memory" {
		return fmt.Errorf("search.backend must be 'redis' or 'memory', got '%s'", c.Search.Backend)
	}
	for _, iv := range c.Market.Intervals {
		if iv.Interval == "" || iv.Lookback < 0 {
			return fmt.Errorf("market.intervals entries need an interval and a non-negative lookback")
		}
	}
	return nil
}
