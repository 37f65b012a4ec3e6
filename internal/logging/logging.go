// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Structured logging setup, grounded on
// _examples/penguintechinc-marchproxy/proxy-alb/main.go's setupLogger
// (logrus.New, JSON formatter, LOG_LEVEL env-driven level), adapted to
// bind the level from cmd/xskfw's cobra/viper config instead of a raw
// os.Getenv lookup.

package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing JSON records to stdout at the
// given level ("debug", "info", "warn", "error"; anything else falls
// back to info).
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
