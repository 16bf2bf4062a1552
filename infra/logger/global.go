package logger

import (
	"sync"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/config"
)

const (
	serviceName    = "ceca-gateway"
	serviceVersion = "1.0.0"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
	mu           sync.Mutex
)

// InitGlobalLogger initializes the global system logger
func InitGlobalLogger(sink EventSink) {
	once.Do(func() {
		cfg := SystemLoggerConfig{
			EnableConsole: true,
			EnableSink:    sink != nil,
			MinLevel:      ParseLevel(config.GetEnv("LOGGING_LEVEL", "info")),
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   config.GetEnv("ENVIRONMENT", "development"),
		}

		if cfg.Environment == "development" {
			cfg.MinLevel = LevelDebug
		}

		mu.Lock()
		globalLogger = NewSystemLogger(sink, cfg)
		mu.Unlock()
	})
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		// console-only fallback when InitGlobalLogger was never called
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   "development",
		})
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithOrder creates a context logger for one order of a provider
func WithOrder(provider, orderID string) *ContextLogger {
	return WithContext(LogContext{
		Provider: provider,
		OrderID:  orderID,
	})
}
