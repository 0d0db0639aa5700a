package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	AppPort string
	Env     string

	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	SQLitePath  string
	SeedPosts   bool

	JWTSecret        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AuthUsername     string
	AuthPassword     string
	AuthPasswordHash string

	KafkaBrokers      string
	KafkaTopic        string
	KafkaRequiredAcks string
	KafkaAsync        bool

	RedisAddr      string
	RateLimitRPS   int
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	OTELEnabled     bool
	OTELEndpoint    string
	OTELServiceName string
	OTELSampleRatio float64
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort: getEnv("APP_PORT", ":8080"),
		Env:     getEnv("ENV", "local"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "blog"),
		DBPass:      getEnv("DB_PASSWORD", "blogpass"),
		DBName:      getEnv("DB_NAME", "blog_db"),
		SQLitePath:  getEnv("SQLITE_PATH", "file:blog?mode=memory&cache=shared"),
		SeedPosts:   getEnvBool("SEED_POSTS", true),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		AccessTTL:        getEnvDuration("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       getEnvDuration("JWT_REFRESH_TTL", 24*time.Hour),
		AuthUsername:     getEnv("AUTH_USERNAME", "blog@gmail.net"),
		AuthPassword:     getEnv("AUTH_PASSWORD", "123456"),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),

		KafkaBrokers:      getEnv("KAFKA_BOOTSTRAP_SERVERS", ""),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "posts.events"),
		KafkaRequiredAcks: getEnv("KAFKA_REQUIRED_ACKS", "one"),
		KafkaAsync:        getEnvBool("KAFKA_ASYNC", false),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318"),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "blog-service"),
		OTELSampleRatio: getEnvRatio("OTEL_TRACES_SAMPLER_ARG", 1.0),
	}
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" && c.Env != "local" {
		return errors.New("JWT_SECRET is required outside local env")
	}
	if c.AuthUsername == "" {
		return errors.New("AUTH_USERNAME must not be empty")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Secret falls back to a dev key in the local env only.
func (c *Config) Secret() []byte {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret)
	}
	return []byte("replace-this-with-a-strong-secret")
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName,
	)
}

func (c *Config) String() string {
	return fmt.Sprintf("AppPort=%s, Env=%s, StoreDriver=%s, KafkaTopic=%s, Redis=%t, OTEL=%t",
		c.AppPort, c.Env, c.StoreDriver, c.KafkaTopic, c.RedisAddr != "", c.OTELEnabled)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvRatio(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f < 0 || f > 1 {
		return fallback
	}
	return f
}
