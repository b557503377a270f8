package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	DatabaseDriver  string // "postgres" или "sqlite"
	DatabaseURL     string
	AutoMigrate     bool
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	MetricsUser         string
	MetricsPasswordHash string

	EventsBroker string // "none", "nats", "kafka"
	NATSURL      string
	KafkaBrokers []string
	KafkaTopic   string

	APIBaseURL string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseDriver:  getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AutoMigrate:     getEnvAsBool("AUTO_MIGRATE", false),
		AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://localhost:3000", "http://localhost:5173"}),
		RateLimitRPS:    getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 40),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		MetricsUser:         os.Getenv("METRICS_USER"),
		MetricsPasswordHash: os.Getenv("METRICS_PASSWORD_HASH"),

		EventsBroker: getEnv("EVENTS_BROKER", "none"),
		NATSURL:      getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		KafkaBrokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "users"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid %s=%q, using %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
