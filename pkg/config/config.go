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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Reddit      RedditConfig
	RMP         RMPConfig
	Directory   DirectoryConfig
	Discussions DiscussionsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RedditConfig holds discussion-source credentials and scope.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddit    string
}

// RMPConfig holds ratings-source identifiers.
type RMPConfig struct {
	SchoolID string
}

// DirectoryConfig points at the directory scraping sidecar.
type DirectoryConfig struct {
	BaseURL string
}

// DiscussionsConfig tunes the discussion scrape and read paths.
type DiscussionsConfig struct {
	CommentLimit int
	CacheTTL     time.Duration
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

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reddit = RedditConfig{
		ClientID:     v.GetString("REDDIT_CLIENT_ID"),
		ClientSecret: v.GetString("REDDIT_CLIENT_SECRET"),
		UserAgent:    v.GetString("REDDIT_USER_AGENT"),
		Subreddit:    v.GetString("REDDIT_SUBREDDIT"),
	}

	cfg.RMP = RMPConfig{
		SchoolID: v.GetString("RMP_SCHOOL_ID"),
	}

	cfg.Directory = DirectoryConfig{
		BaseURL: v.GetString("DIRECTORY_BASE_URL"),
	}

	cfg.Discussions = DiscussionsConfig{
		CommentLimit: v.GetInt("DISCUSSIONS_COMMENT_LIMIT"),
		CacheTTL:     parseDuration(v.GetString("DISCUSSIONS_CACHE_TTL"), 10*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ucoursehub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REDDIT_CLIENT_ID", "")
	v.SetDefault("REDDIT_CLIENT_SECRET", "")
	v.SetDefault("REDDIT_USER_AGENT", "golang:ucoursehub-scraper:v1.0")
	v.SetDefault("REDDIT_SUBREDDIT", "uAlberta")

	v.SetDefault("RMP_SCHOOL_ID", "U2Nob29sLTE0MDc=")

	v.SetDefault("DIRECTORY_BASE_URL", "")

	v.SetDefault("DISCUSSIONS_COMMENT_LIMIT", 50)
	v.SetDefault("DISCUSSIONS_CACHE_TTL", "10m")
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
