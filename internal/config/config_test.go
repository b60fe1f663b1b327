package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "ws://localhost:8080/realtime", cfg.RealtimeURL)
	assert.Equal(t, "avtomarket-client.db", cfg.DBPath)
	assert.Equal(t, 20, cfg.ViewThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("AVTOMARKET_SERVER_URL", "https://api.avtomarket.example")
	t.Setenv("VIEW_THRESHOLD", "7")

	cfg := Load()

	assert.Equal(t, "https://api.avtomarket.example", cfg.ServerURL)
	assert.Equal(t, 7, cfg.ViewThreshold)
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("VIEW_THRESHOLD", "not-a-number")

	cfg := Load()
	assert.Equal(t, 20, cfg.ViewThreshold)
}
