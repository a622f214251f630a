package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/storyforge/storyforge-backend/pkg/logger"
)

// Config is the resolved application configuration. Values come from the
// YAML file for the active APP_ENV, then environment variables override.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	CORS       CORSConfig       `yaml:"cors"`
	Moderation ModerationConfig `yaml:"moderation"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// ModerationConfig holds the report escalation thresholds.
type ModerationConfig struct {
	EpisodeQuarantineThreshold int `yaml:"episode_quarantine_threshold"`
	StoryReportedThreshold     int `yaml:"story_reported_threshold"`
}

// GetDSN builds the MySQL DSN from the database config
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment reports whether the server runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "local" || c.Server.Env == "development"
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not fatal; defaults plus env vars still apply.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Env: "local"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "storyforge",
			Name:            "storyforge",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 3600,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		JWT:   JWTConfig{ExpiresIn: 3600},
		Moderation: ModerationConfig{
			EpisodeQuarantineThreshold: 3,
			StoryReportedThreshold:     3,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Server.Env, "APP_ENV")
	overrideInt(&cfg.Server.Port, "SERVER_PORT")

	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideInt(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")

	overrideString(&cfg.Redis.Host, "REDIS_HOST")
	overrideInt(&cfg.Redis.Port, "REDIS_PORT")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideInt(&cfg.Redis.DB, "REDIS_DB")

	overrideString(&cfg.JWT.Secret, "JWT_SECRET")
	overrideInt(&cfg.JWT.ExpiresIn, "JWT_EXPIRES_IN")

	overrideString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")

	overrideInt(&cfg.Moderation.EpisodeQuarantineThreshold, "EPISODE_QUARANTINE_THRESHOLD")
	overrideInt(&cfg.Moderation.StoryReportedThreshold, "STORY_REPORTED_THRESHOLD")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// LogResolved logs the effective configuration with secrets masked
func LogResolved(cfg *Config) {
	logger.Infof("config: env=%s port=%d db=%s@%s:%d/%s redis=%s:%d thresholds(episode=%d story=%d)",
		cfg.Server.Env, cfg.Server.Port,
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		cfg.Redis.Host, cfg.Redis.Port,
		cfg.Moderation.EpisodeQuarantineThreshold, cfg.Moderation.StoryReportedThreshold)
}
