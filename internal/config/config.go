package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config собирает настройки клиента из окружения (.env поддерживается)
type Config struct {
	ServerURL     string // базовый URL REST API
	RealtimeURL   string // websocket URL change feed
	DBPath        string // путь к локальной BoltDB
	ViewThreshold int    // порог просмотров для анонимного view gate
	LogLevel      string // debug | info | warn | error
}

// Load читает конфигурацию из окружения с разумными значениями по умолчанию
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerURL:     getEnv("AVTOMARKET_SERVER_URL", "http://localhost:8080"),
		RealtimeURL:   getEnv("AVTOMARKET_REALTIME_URL", "ws://localhost:8080/realtime"),
		DBPath:        getEnv("AVTOMARKET_DB_PATH", "avtomarket-client.db"),
		ViewThreshold: getEnvAsInt("VIEW_THRESHOLD", 20),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
