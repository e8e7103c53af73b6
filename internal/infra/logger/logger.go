// internal/infra/logger/logger.go
package logger

import (
	"os"
	"ride_notifier/internal/infra/config"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// Init initializes the global logger based on application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout) // Default output

	// Set Log Level
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(level)
	}

	// Set Log Formatter
	if strings.ToLower(cfg.Environment) == "production" || strings.ToLower(cfg.Environment) == "staging" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		Log.SetFormatter(&LineFormatter{})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
}

// Get returns the configured global logger.
func Get() *logrus.Logger {
	return Log
}
