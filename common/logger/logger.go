package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	once    sync.Once
	Logger  *slog.Logger
	level   = new(slog.LevelVar)
	logFile *os.File
)

// Init initializes the global logger. Records go to stderr, keeping stdout
// free for exports, and to a dated file under <dataFolder>/logs.
func Init(dataFolder string) error {
	var err error
	once.Do(func() {
		err = initLogger(dataFolder, os.Stderr)
	})
	return err
}

func initLogger(dataFolder string, console io.Writer) error {
	logDir := filepath.Join(dataFolder, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	logFilePath := filepath.Join(logDir, fmt.Sprintf("gmfav_%s.log", today))

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = file

	handler := slog.NewTextHandler(io.MultiWriter(console, file), &slog.HandlerOptions{
		Level: level,
	})
	Logger = slog.New(handler)

	slog.SetDefault(Logger)

	Logger.Debug("logger initialized", "path", logFilePath)
	return nil
}

// SetVerbose switches the global level between info and debug.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Close closes the log file handle
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

func Debug(msg string, args ...any) {
	if Logger != nil {
		Logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if Logger != nil {
		Logger.Info(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if Logger != nil {
		Logger.Error(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if Logger != nil {
		Logger.Warn(msg, args...)
	}
}
