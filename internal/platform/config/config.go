package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory"
)

type Config struct {
	APIPort string
	AppEnv  string
	BaseURL string // Public origin used when building share links
	JWTKey  []byte
	JWTExp  time.Duration

	StoreBackend string
	StoreDir     string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GenAIAPIKey          string
	GenAIModel           string
	GenerationTimeout    time.Duration
	GenerationWorkers    int
	GenerationLockTTL    time.Duration
	RateLimitRetryDelay  time.Duration
	RateLimitMaxRetries  int
	GenerationQueueDepth int
}

var AppConfig *Config

// Load reads .env (if any) and the process environment into AppConfig.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		AppEnv:        getEnv("APP_ENV", "dev"),
		BaseURL:       strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		JWTKey:        []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:        time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreBackendFile)),
		StoreDir:      getEnv("STORE_DIR", "data"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "papergen"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		GenAIAPIKey:          getEnv("GENAI_API_KEY", ""),
		GenAIModel:           getEnv("GENAI_MODEL", "gemini-2.5-flash"),
		GenerationTimeout:    getEnvAsDuration("GENERATION_TIMEOUT_SECONDS", 120*time.Second),
		GenerationWorkers:    getEnvAsInt("GENERATION_WORKERS", 4),
		GenerationLockTTL:    getEnvAsDuration("GENERATION_LOCK_TTL_SECONDS", 5*time.Minute),
		RateLimitRetryDelay:  getEnvAsDuration("RATE_LIMIT_RETRY_SECONDS", 15*time.Second),
		RateLimitMaxRetries:  getEnvAsInt("RATE_LIMIT_MAX_RETRIES", 3),
		GenerationQueueDepth: getEnvAsInt("GENERATION_QUEUE_DEPTH", 64),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode

	return AppConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts either a Go duration ("90s") or a plain number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
