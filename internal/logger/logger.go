package logger

import (
	"github.com/sirupsen/logrus"
)

const (
	DefaultLevel = "INFO"
)

// InitLogger parses the level and configures the standard logrus logger with it.
// An empty level falls back to DefaultLevel.
func InitLogger(level string) error {
	if level == "" {
		level = DefaultLevel
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	logrus.SetLevel(parsed)

	return nil
}
