package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/validate"
)

type Config struct {
	Validator *validator.Validate
}

// AppConfig represents the process level configuration
type AppConfig struct {
	Port             string
	BaseURL          string
	ShopURL          string
	OrderDBPath      string
	RedisAddr        string
	APIKey           string
	RateLimit        int
	IPWhitelist      string
	OpenSearchURL    string
	OpenSearchUser   string
	OpenSearchPass   string
	EnableLogging    bool
	LoggingLevel     string
	LogRetentionDays int
}

var (
	instance          *Config
	instanceOnce      sync.Once
	appConfigInstance *AppConfig
	appConfigOnce     sync.Once
)

func App() *Config {
	instanceOnce.Do(func() {
		instance = &Config{
			Validator: validator.New(),
		}
		validate.CustomValidate(instance.Validator)
	})
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	appConfigOnce.Do(func() {
		appConfigInstance = &AppConfig{
			Port:             GetEnv("APP_PORT", "9999"),
			BaseURL:          GetEnv("APP_URL", "http://localhost:9999"),
			ShopURL:          GetEnv("SHOP_URL", "http://localhost:8080"),
			OrderDBPath:      GetEnv("ORDER_DB_PATH", "./data/orders.db"),
			RedisAddr:        GetEnv("REDIS_ADDR", ""),
			APIKey:           GetEnv("API_KEY", ""),
			RateLimit:        GetIntEnv("RATE_LIMIT_PER_MINUTE", 120),
			IPWhitelist:      GetEnv("IP_WHITELIST", ""),
			OpenSearchURL:    GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser:   GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass:   GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:    GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
			LoggingLevel:     GetEnv("LOGGING_LEVEL", "info"),
			LogRetentionDays: GetIntEnv("LOG_RETENTION_DAYS", 30),
		}
	})
	return appConfigInstance
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
