package config

import "os"

// Config holds the process configuration, sourced from the environment
// (a .env file is loaded at startup when present).
type Config struct {
	Port         string
	PublicDir    string
	CardPacksDir string
	RedisAddr    string
	JournalQueue string
	LogLevel     string
}

// Load reads the configuration with development-friendly fallbacks.
// RedisAddr is intentionally empty by default: the event journal is opt-in.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "4000"),
		PublicDir:    getEnv("PUBLIC_DIR", "public"),
		CardPacksDir: getEnv("CARD_PACKS_DIR", "cardPacks"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		JournalQueue: getEnv("JOURNAL_QUEUE_NAME", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
