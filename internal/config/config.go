// Package config carrega a configuração da API a partir de variáveis de ambiente.
//
// Um arquivo .env no diretório de trabalho é lido primeiro (sem sobrescrever
// variáveis já definidas no ambiente).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config reúne toda a configuração da aplicação.
type Config struct {
	// Servidor
	Port     int
	LogLevel string
	Timezone string

	// Banco
	DBHost            string
	DBPort            int
	DBName            string
	DBUsername        string
	DBPassword        string
	DBSecretID        string
	DBSSLModeDisabled bool

	// JWT / Auth
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	CookieSecure  bool

	// HTTP
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int

	// Arquivos
	UploadDir     string
	PublicBaseURL string

	// Eventos
	WebhookURL          string
	ContadoresIntervalo time.Duration

	// Observabilidade
	TracingEnabled bool
	OTLPEndpoint   string
}

// Load lê o .env (se existir) e monta a Config com defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvInt("DB_PORT", 5432),
		DBName:            getEnv("DB_NAME", "imobiliaria"),
		DBUsername:        getEnv("DB_USERNAME", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBSecretID:        getEnv("DB_SECRET_ID", ""),
		DBSSLModeDisabled: getEnv("DB_SSL_MODE_DISABLE", "false") == "true",

		JWTSecret:     getEnv("JWT_SECRET", "imobiliaria-dev-secret-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 8*time.Hour),
		JWTRefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		WebhookURL:          getEnv("WEBHOOK_URL", ""),
		ContadoresIntervalo: getEnvDuration("CONTADORES_INTERVALO", 30*time.Second),

		TracingEnabled: getEnv("TRACING_ENABLED", "false") == "true",
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// Location resolve o fuso configurado; cai para UTC-3 fixo se o tzdata não estiver disponível.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
