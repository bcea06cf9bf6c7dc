// Package logging builds the operational migration log: a logrus logger with
// optional lumberjack rotation, and helpers that route notices to it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fieldshift/fieldshift/internal/config"
	"github.com/fieldshift/fieldshift/internal/notice"
)

const timestampFormat = "2006-01-02 15:04:05"

// Options configures New.
type Options struct {
	Config config.LogConfig

	// DefaultFile is used when Config.File is empty.
	DefaultFile string

	// Console receives console output. Defaults to os.Stderr so logs never
	// interleave with command output on stdout.
	Console io.Writer
}

// New builds a logger from options. The returned closer releases the log file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	cfg := opts.Config.WithDefaults()
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:   timestampFormat,
			DisableHTMLEscape: true,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
			DisableColors:   cfg.Output != "console",
		})
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Output == "console" || cfg.Output == "both" {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		writers = append(writers, console)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		path := cfg.File
		if path == "" {
			path = opts.DefaultFile
		}
		if path == "" {
			return nil, nil, fmt.Errorf("log file path is required for output %q", cfg.Output)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return log, closer, nil
}

// Level maps a notice status to a log level.
func Level(s notice.Status) logrus.Level {
	switch s {
	case notice.StatusError:
		return logrus.ErrorLevel
	case notice.StatusWarning:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// Notices logs each notice at the level matching its status.
func Notices(entry *logrus.Entry, notices []notice.Notice) {
	for _, n := range notices {
		entry.WithField("status", string(n.Status)).Log(Level(n.Status), n.Message)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
