package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "cxn.log"

// DefaultDir is $XDG_DATA_HOME/cxn/logs, falling back to ~/.local/share and
// finally the working directory.
func DefaultDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, ".local", "share")
		}
	}
	if base == "" {
		base = "."
	}
	return filepath.Join(base, "cxn", "logs")
}

// FilePath is where NewLogger writes for a given directory.
func FilePath(logDir string) string {
	return filepath.Join(logDir, logFileName)
}

// NewLogger writes JSON lines to a rotating file in logDir. Terminal output is
// left to the presenter.
func NewLogger(logDir, level string) (*zap.Logger, error) {
	if logDir == "" {
		logDir = DefaultDir()
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   FilePath(logDir),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, ParseLevel(level))
	return zap.New(core), nil
}

// ParseLevel maps a level name to a zap level; unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zap.InfoLevel
	}
	return l
}
