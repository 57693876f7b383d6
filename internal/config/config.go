package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      logger.Config
	Cache    CacheConfig
	Ads      AdsConfig
	Recorder RecorderConfig
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	GinMode         string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	URL      string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
	PoolSize int
	Prefix   string
}

type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type AdsConfig struct {
	DefaultMaxAds             int
	MaxAdsLimit               int
	Timezone                  string
	Location                  *time.Location
	RecordImpressionsOnRender bool
}

type RecorderConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_BASE_URL", "")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("GIN_MODE", "release")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "adengine")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_PREFIX", "ads")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_PATH", "")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)

	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("CACHE_SWEEP_INTERVAL", "30s")

	v.SetDefault("ADS_DEFAULT_MAX", 1)
	v.SetDefault("ADS_MAX_LIMIT", 10)
	v.SetDefault("ADS_TIMEZONE", "UTC")
	v.SetDefault("ADS_RECORD_IMPRESSIONS_ON_RENDER", true)

	v.SetDefault("RECORDER_QUEUE_SIZE", 1024)
	v.SetDefault("RECORDER_WORKERS", 4)
	v.SetDefault("RECORDER_WRITE_TIMEOUT", "5s")
}

// Load reads configuration from the optional env file at path and the
// process environment, which wins over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		logger.Get().Warn("Config file not found, using environment and defaults",
			"path", path,
		)
	}

	dbConfig := DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
		SSLMode:  v.GetString("DB_SSLMODE"),
		URL:      v.GetString("DATABASE_URL"),
		MaxConns: v.GetInt32("DB_MAX_CONNS"),
		MinConns: v.GetInt32("DB_MIN_CONNS"),
	}

	if dbConfig.URL == "" {
		dbConfig.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User,
			dbConfig.Password,
			dbConfig.Host,
			dbConfig.Port,
			dbConfig.Name,
			dbConfig.SSLMode,
		)
	}

	redisConfig := RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetString("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
		Prefix:   v.GetString("REDIS_PREFIX"),
	}

	redisConfig.Addr = fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			BaseURL:         strings.TrimRight(v.GetString("SERVER_BASE_URL"), "/"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
			GinMode:         v.GetString("GIN_MODE"),
		},
		Database: dbConfig,
		Redis:    redisConfig,
		Log: logger.Config{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT_PATH"),
			MaxSize:    v.GetInt("LOG_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     v.GetInt("LOG_MAX_AGE"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Cache: CacheConfig{
			TTL:           v.GetDuration("CACHE_TTL"),
			SweepInterval: v.GetDuration("CACHE_SWEEP_INTERVAL"),
		},
		Ads: AdsConfig{
			DefaultMaxAds:             v.GetInt("ADS_DEFAULT_MAX"),
			MaxAdsLimit:               v.GetInt("ADS_MAX_LIMIT"),
			Timezone:                  v.GetString("ADS_TIMEZONE"),
			RecordImpressionsOnRender: v.GetBool("ADS_RECORD_IMPRESSIONS_ON_RENDER"),
		},
		Recorder: RecorderConfig{
			QueueSize:    v.GetInt("RECORDER_QUEUE_SIZE"),
			Workers:      v.GetInt("RECORDER_WORKERS"),
			WriteTimeout: v.GetDuration("RECORDER_WRITE_TIMEOUT"),
		},
	}

	loc, err := time.LoadLocation(cfg.Ads.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ADS_TIMEZONE %q: %w", cfg.Ads.Timezone, err)
	}
	cfg.Ads.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Ads.DefaultMaxAds < 1 {
		errs = append(errs, errors.New("ADS_DEFAULT_MAX must be at least 1"))
	}
	if c.Ads.MaxAdsLimit < c.Ads.DefaultMaxAds {
		errs = append(errs, errors.New("ADS_MAX_LIMIT must not be below ADS_DEFAULT_MAX"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	if c.Recorder.QueueSize < 1 || c.Recorder.Workers < 1 {
		errs = append(errs, errors.New("RECORDER_QUEUE_SIZE and RECORDER_WORKERS must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
