package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port             string
	DBPath           string
	SeedFile         string
	TokenArtist      string
	TokenManager     string
	Timezone         string
	RebuildHour      int
	CacheTTLMinutes  int
	SynopsisProvider string
	SynopsisModel    string
	SynopsisRPM      int
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OllamaURL        string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("REEL_PORT", "8080"),
		DBPath:           getEnv("REEL_DB_PATH", ""),
		SeedFile:         getEnv("REEL_SEED_FILE", ""),
		TokenArtist:      getEnv("REEL_TOKEN_ARTIST", ""),
		TokenManager:     getEnv("REEL_TOKEN_MANAGER", ""),
		Timezone:         getEnv("REEL_TIMEZONE", "America/New_York"),
		RebuildHour:      getEnvInt("REEL_REBUILD_HOUR", 4),
		CacheTTLMinutes:  getEnvInt("REEL_CACHE_TTL_MINUTES", 30),
		SynopsisProvider: getEnv("REEL_SYNOPSIS_PROVIDER", ""),
		SynopsisModel:    getEnv("REEL_SYNOPSIS_MODEL", ""),
		SynopsisRPM:      getEnvInt("REEL_SYNOPSIS_RPM", 20),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OllamaURL:        getEnv("REEL_OLLAMA_URL", "http://localhost:11434"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("REEL_DB_PATH is required")
	}
	if c.TokenArtist == "" && c.TokenManager == "" {
		return fmt.Errorf("at least one of REEL_TOKEN_ARTIST or REEL_TOKEN_MANAGER is required")
	}
	if c.RebuildHour < 0 || c.RebuildHour > 23 {
		return fmt.Errorf("REEL_REBUILD_HOUR must be between 0 and 23, got %d", c.RebuildHour)
	}
	switch c.SynopsisProvider {
	case "", "openai", "ollama":
	default:
		return fmt.Errorf("REEL_SYNOPSIS_PROVIDER must be openai or ollama, got %q", c.SynopsisProvider)
	}
	return nil
}

func (c *Config) ActorFromToken(token string) (string, bool) {
	switch token {
	case c.TokenArtist:
		if c.TokenArtist != "" {
			return "artist", true
		}
	case c.TokenManager:
		if c.TokenManager != "" {
			return "manager", true
		}
	}
	return "", false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
