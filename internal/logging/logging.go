// Package logging provides the Logger used throughout maker.
// It supports a global log level and per-package log levels that override it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mut           sync.Mutex
	logLevel      = zapcore.InfoLevel
	packageLevels = make(map[string]zapcore.Level)
	// levels holds the level of every logger created so far, by name,
	// so that changing a level also affects existing loggers.
	levels = make(map[string][]zap.AtomicLevel)
)

// ParseLevel parses one of debug, info, warn, error, panic or fatal.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel, nil
	case "info":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	case "panic":
		return zap.PanicLevel, nil
	case "fatal":
		return zap.FatalLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s'", level)
	}
}

// SetLogLevel sets the global log level.
func SetLogLevel(levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mut.Lock()
	defer mut.Unlock()
	logLevel = level
	for name, atoms := range levels {
		if _, ok := packageLevels[name]; ok {
			continue
		}
		for _, atom := range atoms {
			atom.SetLevel(level)
		}
	}
	return nil
}

// SetPackageLogLevel sets the log level of the loggers with the given name,
// overriding the global level.
func SetPackageLogLevel(name, levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	mut.Lock()
	defer mut.Unlock()
	packageLevels[name] = level
	for _, atom := range levels[name] {
		atom.SetLevel(level)
	}
	return nil
}

// SetPackageLogLevels parses a list of name:level pairs and applies them.
func SetPackageLogLevels(pairs []string) error {
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return fmt.Errorf("package log level must be of the form package:level, got '%s'", pair)
		}
		if err := SetPackageLogLevel(parts[0], parts[1]); err != nil {
			return err
		}
	}
	return nil
}

// Logger is the logging interface used by maker. It is a subset of zap.SugaredLogger.
type Logger interface {
	Debug(args ...any)
	Debugf(template string, args ...any)
	Info(args ...any)
	Infof(template string, args ...any)
	Warn(args ...any)
	Warnf(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
}

func register(name string) zap.AtomicLevel {
	mut.Lock()
	defer mut.Unlock()
	level, ok := packageLevels[name]
	if !ok {
		level = logLevel
	}
	atom := zap.NewAtomicLevelAt(level)
	levels[name] = append(levels[name], atom)
	return atom
}

// New returns a new logger for stderr with the given name.
// The output is JSON if the environment variable MAKER_LOG_TYPE is "json".
func New(name string) Logger {
	var config zap.Config
	if strings.ToLower(os.Getenv("MAKER_LOG_TYPE")) == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	config.Level = register(name)
	l, err := config.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar().Named(name)
}

// NewWithDest returns a new logger with the given name that writes to dest.
func NewWithDest(dest io.Writer, name string) Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(dest),
		register(name),
	)
	return zap.New(core).Sugar().Named(name)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}
