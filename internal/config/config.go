// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string        `yaml:"port"`
	DBPath        string        `yaml:"db_path"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	MigrationsDir string        `yaml:"migrations_dir"`
	TimeZone      string        `yaml:"time_zone"`
	Log           LogConfig     `yaml:"log"`
	Weather       WeatherConfig `yaml:"weather"`
	News          NewsConfig    `yaml:"news"`
	Export        ExportConfig  `yaml:"export"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WeatherConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	City    string        `yaml:"city"`
	Lang    string        `yaml:"lang"`
	Timeout time.Duration `yaml:"timeout"`
}

type NewsConfig struct {
	RSSURL  string        `yaml:"rss_url"`
	PageURL string        `yaml:"page_url"`
	Limit   int           `yaml:"limit"`
	Timeout time.Duration `yaml:"timeout"`
}

type ExportConfig struct {
	// FontPath points at a TTF with Cyrillic coverage. Empty means the PDF
	// renderer uses its built-in fallback font.
	FontPath string `yaml:"font_path"`
}

func Defaults() Config {
	return Config{
		Port:          "8080",
		DBPath:        "./data/timesaver.db",
		JWTSecret:     "change-this-secret",
		TokenTTL:      72 * time.Hour,
		CORSOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		MigrationsDir: "./migrations",
		TimeZone:      "UTC",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5/weather",
			City:    "Yekaterinburg",
			Lang:    "en",
			Timeout: 5 * time.Second,
		},
		News: NewsConfig{
			Limit:   5,
			Timeout: 5 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves TimeZone. Dashboard days and form timestamps are
// interpreted in it.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) applyEnvOverrides() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	if hours := getEnvInt("TOKEN_TTL_HOURS", 0); hours > 0 {
		c.TokenTTL = time.Duration(hours) * time.Hour
	}
	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)
	c.MigrationsDir = getEnv("MIGRATIONS_DIR", c.MigrationsDir)
	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Weather.APIKey = getEnv("WEATHER_API_KEY", c.Weather.APIKey)
	c.Weather.BaseURL = getEnv("WEATHER_BASE_URL", c.Weather.BaseURL)
	c.Weather.City = getEnv("WEATHER_CITY", c.Weather.City)
	c.Weather.Lang = getEnv("WEATHER_LANG", c.Weather.Lang)
	c.Weather.Timeout = getEnvDuration("WEATHER_TIMEOUT", c.Weather.Timeout)

	c.News.RSSURL = getEnv("NEWS_RSS_URL", c.News.RSSURL)
	c.News.PageURL = getEnv("NEWS_PAGE_URL", c.News.PageURL)
	c.News.Limit = getEnvInt("NEWS_LIMIT", c.News.Limit)
	c.News.Timeout = getEnvDuration("NEWS_TIMEOUT", c.News.Timeout)

	c.Export.FontPath = getEnv("EXPORT_FONT_PATH", c.Export.FontPath)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
