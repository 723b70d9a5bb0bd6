package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.JWTAccessTTL)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("PUBLIC_BASE_URL", "https://api.exemplo.com/")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.CORSOrigins)
	assert.Equal(t, "https://api.exemplo.com", cfg.PublicBaseURL)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	assert.Equal(t, 5432, Load().DBPort)
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Invalid/Zone"}
	_, offset := time.Now().In(cfg.Location()).Zone()
	assert.Equal(t, -3*60*60, offset)
}
