package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func InitLogger() {
	Log = logrus.New()

	// Set formatter to JSON
	Log.SetFormatter(&logrus.JSONFormatter{})

	// Set output to stdout (default)
	Log.SetOutput(os.Stdout)

	// LOG_LEVEL overrides the default (info)
	level := logrus.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	Log.SetLevel(level)
}
