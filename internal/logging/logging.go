// Package logging builds the process logger from configuration.
package logging

import (
    "fmt"
    "io"
    "os"
    "time"

    "github.com/sirupsen/logrus"
    "gopkg.in/natefinch/lumberjack.v2"

    "bluetooth-spp/internal/config"
)

// ParseLevel maps a configured level to a logrus level. An empty level is
// "error" unless verbose is set, which selects debug.
func ParseLevel(level string, verbose bool) (logrus.Level, error) {
    switch level {
    case "":
        if verbose {
            return logrus.DebugLevel, nil
        }
        return logrus.ErrorLevel, nil
    case "debug":
        return logrus.DebugLevel, nil
    case "info":
        return logrus.InfoLevel, nil
    case "warn":
        return logrus.WarnLevel, nil
    case "error":
        return logrus.ErrorLevel, nil
    default:
        return logrus.PanicLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
    }
}

// New creates a logger writing to stderr, or to a rotating file when
// cfg.File is set. The returned closer releases the file.
func New(cfg config.LogConfig, verbose bool) (*logrus.Logger, io.Closer, error) {
    level, err := ParseLevel(cfg.Level, verbose)
    if err != nil {
        return nil, nil, err
    }

    logger := logrus.New()
    logger.SetLevel(level)
    logger.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: time.RFC3339,
    })

    if cfg.File == "" {
        logger.SetOutput(os.Stderr)
        return logger, nopCloser{}, nil
    }

    fileWriter := &lumberjack.Logger{
        Filename:   cfg.File,
        MaxSize:    cfg.MaxSizeMB,
        MaxBackups: cfg.MaxBackups,
    }
    logger.SetOutput(fileWriter)
    logger.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: time.RFC3339,
        DisableColors:   true,
    })
    return logger, fileWriter, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
