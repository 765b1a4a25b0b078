package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config junta toda la configuración del servicio, leída de env vars.
// Un .env local es opcional (dev); en producción todo llega por entorno.
type Config struct {
	Port string

	// Si DBDSN está vacío, el router usa repos in-memory (modo dev).
	DBDSN string

	// Si RedisAddr está vacío, el dispatcher corre sin throttle.
	RedisAddr     string
	RedisPassword string

	// Auth service upstream. Si AuthBaseURL está vacío => modo dev
	// (headers X-Debug-User-ID / X-Debug-Role).
	AuthBaseURL string
	AuthAPIKey  string

	LogLevel  string
	LogFormat string

	// Zona horaria en la que se interpretan date/time de los schedules.
	ScheduleTZ string

	AlertScanInterval time.Duration
	AlertThrottleTTL  time.Duration
}

func Load() Config {
	// .env es opcional; si no existe seguimos con el entorno real.
	_ = godotenv.Load()

	return Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		DBDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AuthBaseURL:       strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
		AuthAPIKey:        strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
		ScheduleTZ:        getEnvOrDefault("SCHEDULE_TZ", "Local"),
		AlertScanInterval: getDurationOrDefault("ALERT_SCAN_INTERVAL", time.Minute),
		AlertThrottleTTL:  getDurationOrDefault("ALERT_THROTTLE_TTL", 12*time.Hour),
	}
}

// Location resuelve ScheduleTZ; si es inválida cae a la local del host.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTZ)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
