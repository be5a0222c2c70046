package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv                string
	AppPort               string
	AppName               string
	AllowedOrigins        string
	DBDriver              string
	DBHost                string
	DBPort                string
	DBUser                string
	DBPassword            string
	DBName                string
	DBPath                string
	DBMaxIdleConns        int
	DBMaxOpenConns        int
	NATSURL               string
	RedisHost             string
	RedisPort             string
	RedisPassword         string
	RedisDB               int
	AuthRateLimit         int
	AuthRateWindowSeconds int
	JWTSecret             string
	JWTExpirationHours    int
	PageSize              int
	MaxPageSize           int
	LogLevel              string
	LogJSON               bool
}

// RedisAddr returns host:port, or an empty string when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %s", key, defaultValue)
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		log.Printf("Invalid boolean value for %s, defaulting to %t", key, defaultValue)
	}
	return defaultValue
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		AppPort:               getEnv("APP_PORT", "8080"),
		AppName:               getEnv("APP_NAME", "Task API Boilerplate"),
		AllowedOrigins:        getEnv("ALLOWED_ORIGINS", "*"),
		DBDriver:              getEnv("DB_DRIVER", "postgres"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBUser:                getEnv("DB_USER", "taskdesk"),
		DBPassword:            getEnv("DB_PASSWORD", "taskdesk"),
		DBName:                getEnv("DB_NAME", "taskdesk"),
		DBPath:                getEnv("DB_PATH", "taskdesk.db"),
		DBMaxIdleConns:        getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:        getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		NATSURL:               getEnv("NATS_URL", ""),
		RedisHost:             getEnv("REDIS_HOST", ""),
		RedisPort:             getEnv("REDIS_PORT", "6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvAsInt("REDIS_DB", 0),
		AuthRateLimit:         getEnvAsInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindowSeconds: getEnvAsInt("AUTH_RATE_WINDOW_SECONDS", 60),
		JWTSecret:             getEnv("JWT_SECRET", "your-super-secret-key-change-this-in-production"),
		JWTExpirationHours:    getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		PageSize:              getEnvAsInt("PAGE_SIZE", 20),
		MaxPageSize:           getEnvAsInt("MAX_PAGE_SIZE", 100),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogJSON:               getEnvAsBool("LOG_JSON", false),
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = cfg.PageSize
	}

	return cfg
}
