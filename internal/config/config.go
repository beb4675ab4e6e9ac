// Package config loads configuration for the content engine service.
package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName       = "content-engine"
	defaultServiceVersion    = "1.0.0"
	defaultServicePort       = 8090
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBUser            = "postgres"
	defaultDBName            = "social"
	defaultDBSSLMode         = "disable"
	defaultDBMaxConns        = 25
	defaultDBMaxIdleConns    = 5
	defaultRedisAddress      = "localhost:6379"
	defaultCacheTTLHours     = 24
	defaultLogLevel          = "info"
	defaultProviderModel     = "gpt-3.5-turbo"
	defaultProviderTimeout   = 5 * time.Second
	defaultProviderRPS       = 10
	defaultAnalysisTimeout   = 5 * time.Second
	defaultQualityMinChars   = 100
	defaultSentimentMinChars = 50
	defaultMaxTags           = 5
	defaultPollInterval      = 30 * time.Second
	defaultBatchSize         = 50
	defaultDatabaseRPS       = 100
	defaultTrendingWindow    = 24 * time.Hour
	defaultTrendingLimit     = 10
	defaultTrendingSchedule  = "@every 10m"
	defaultFeedPageSize      = 20
	defaultRecommendLimit    = 10
	defaultRecentPostWindow  = 20
)

// Config holds all configuration for the content engine service.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Provider  ProviderConfig  `yaml:"provider"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Processor ProcessorConfig `yaml:"processor"`
	Trending  TrendingConfig  `yaml:"trending"`
	Feed      FeedConfig      `yaml:"feed"`
	Recommend RecommendConfig `yaml:"recommendations"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"ENGINE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"   yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds Redis configuration for the analysis cache.
type RedisConfig struct {
	Address  string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database int           `yaml:"database"`
	CacheTTL time.Duration `yaml:"analysis_cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// ProviderConfig holds the optional external text-intelligence provider.
// When APIKey is empty every component runs on its local heuristic alone.
type ProviderConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY" yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     int           `yaml:"rps"`
}

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	// Timeout bounds the external-call portion of a single Analyze so a
	// provider outage never blocks content creation.
	Timeout time.Duration `yaml:"timeout"`
	// QualityMinChars is the minimum text length before the external
	// quality score is blended in.
	QualityMinChars int `yaml:"quality_min_chars"`
	// SentimentMinChars is the minimum text length before the external
	// sentiment label is blended in.
	SentimentMinChars int `yaml:"sentiment_min_chars"`
	MaxTags           int `yaml:"max_tags"`
}

// ProcessorConfig holds backlog processor settings.
type ProcessorConfig struct {
	Enabled      bool          `env:"PROCESSOR_ENABLED" yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	DatabaseRPS  int           `yaml:"database_rps"`
}

// TrendingConfig holds trending-topics settings.
type TrendingConfig struct {
	Window   time.Duration `yaml:"window"`
	Limit    int           `yaml:"limit"`
	Schedule string        `yaml:"refresh_schedule"`
}

// FeedConfig holds feed pagination settings.
type FeedConfig struct {
	PageSize int `yaml:"page_size"`
}

// RecommendConfig holds user recommendation settings.
type RecommendConfig struct {
	Limit            int `yaml:"limit"`
	RecentPostWindow int `yaml:"recent_post_window"`
}

// Load reads configuration from path, applies defaults, then environment
// overrides (env always wins).
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	setProviderDefaults(&cfg.Provider)
	setAnalysisDefaults(&cfg.Analysis)
	setProcessorDefaults(&cfg.Processor)
	setTrendingDefaults(&cfg.Trending)
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = defaultFeedPageSize
	}
	setRecommendDefaults(&cfg.Recommend)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTLHours * time.Hour
	}
}

func setProviderDefaults(p *ProviderConfig) {
	if p.Model == "" {
		p.Model = defaultProviderModel
	}
	if p.Timeout == 0 {
		p.Timeout = defaultProviderTimeout
	}
	if p.RPS == 0 {
		p.RPS = defaultProviderRPS
	}
}

func setAnalysisDefaults(a *AnalysisConfig) {
	if a.Timeout == 0 {
		a.Timeout = defaultAnalysisTimeout
	}
	if a.QualityMinChars == 0 {
		a.QualityMinChars = defaultQualityMinChars
	}
	if a.SentimentMinChars == 0 {
		a.SentimentMinChars = defaultSentimentMinChars
	}
	if a.MaxTags == 0 {
		a.MaxTags = defaultMaxTags
	}
}

func setProcessorDefaults(p *ProcessorConfig) {
	if p.PollInterval == 0 {
		p.PollInterval = defaultPollInterval
	}
	if p.BatchSize == 0 {
		p.BatchSize = defaultBatchSize
	}
	if p.DatabaseRPS == 0 {
		p.DatabaseRPS = defaultDatabaseRPS
	}
}

func setTrendingDefaults(t *TrendingConfig) {
	if t.Window == 0 {
		t.Window = defaultTrendingWindow
	}
	if t.Limit == 0 {
		t.Limit = defaultTrendingLimit
	}
	if t.Schedule == "" {
		t.Schedule = defaultTrendingSchedule
	}
}

func setRecommendDefaults(r *RecommendConfig) {
	if r.Limit == 0 {
		r.Limit = defaultRecommendLimit
	}
	if r.RecentPostWindow == 0 {
		r.RecentPostWindow = defaultRecentPostWindow
	}
}
