package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AI        AIConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port string
	Mode string
	// 优雅关闭等待时间
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	// mysql | postgres | sqlite
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// sqlite 文件路径，":memory:" 表示内存库
	Path string

	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	SlowThresholdMs int `mapstructure:"slow_threshold_ms"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AIConfig struct {
	// openai | static
	Provider       string  `mapstructure:"provider"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
	StaticScore    float64 `mapstructure:"static_score"`
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	ServiceName       string  `mapstructure:"service_name"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// AnalyticsConfig 分析引擎的可调参数，支持热更新
type AnalyticsConfig struct {
	TrendThreshold        float64 `mapstructure:"trend_threshold"`
	InsightListCap        int     `mapstructure:"insight_list_cap"`
	ReportCacheTTLSeconds int     `mapstructure:"report_cache_ttl_seconds"`
	LockTimeoutSeconds    int     `mapstructure:"lock_timeout_seconds"`
}

func (a AnalyticsConfig) ReportCacheTTL() time.Duration {
	return time.Duration(a.ReportCacheTTLSeconds) * time.Second
}

func (a AnalyticsConfig) LockTimeout() time.Duration {
	return time.Duration(a.LockTimeoutSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout_seconds", 5)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "interview_prep.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.slow_threshold_ms", 200)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("jwt.issuer", "interview-prep")

	v.SetDefault("ai.provider", "static")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.static_score", 70)

	v.SetDefault("tracing.service_name", "interview-prep-backend")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.max_requests", 300)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("analytics.trend_threshold", 10)
	v.SetDefault("analytics.insight_list_cap", 5)
	v.SetDefault("analytics.report_cache_ttl_seconds", 60)
	v.SetDefault("analytics.lock_timeout_seconds", 10)
}

// LoadConfig 读取配置，path 可以是目录（查找 config.yaml）或具体文件。
// 配置文件不存在时只使用默认值与环境变量。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("INTERVIEW_PREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.AI.Provider {
	case "openai", "static":
	default:
		return fmt.Errorf("unsupported ai provider %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.APIKey == "" {
		return errors.New("ai.api_key is required for the openai provider")
	}
	if c.Analytics.TrendThreshold < 0 {
		return fmt.Errorf("analytics.trend_threshold must not be negative, got %v", c.Analytics.TrendThreshold)
	}
	if c.Analytics.InsightListCap <= 0 {
		return fmt.Errorf("analytics.insight_list_cap must be positive, got %d", c.Analytics.InsightListCap)
	}
	return nil
}
