// Package logging installs the component loggers of prefKV.
//
// Every package logs through a dragonboat logger.ILogger obtained with
// logger.GetLogger(component). Init replaces the default implementation with one
// that writes "LEVEL | component | message" lines and sets the level of all components.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
)

// Components lists the logger names used in this module
var Components = []string{"store", "lstore", "maple", "bolt", "prefs", "cli"}

var (
	// std is shared by all component loggers, Init redirects it
	std         = log.New(os.Stderr, "", log.Ldate|log.Ltime)
	factoryOnce sync.Once
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// prefLogger implements the ILogger interface with custom formatting
type prefLogger struct {
	name   string
	level  atomic.Int32 // logger.LogLevel, changed while other goroutines log
	logger *log.Logger
}

func (l *prefLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *prefLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *prefLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.log("DEBUG", format, args...)
	}
}

func (l *prefLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.log("INFO", format, args...)
	}
}

func (l *prefLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.log("WARN", format, args...)
	}
}

func (l *prefLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.log("ERROR", format, args...)
	}
}

func (l *prefLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *prefLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-8s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the dragonboat logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	l := &prefLogger{
		name:   pkgName,
		logger: std,
	}
	l.SetLevel(logger.WARNING)
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLevel converts a string level to logger.LogLevel
func ParseLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// Init installs the custom logger factory, redirects all output to w (nil = stderr)
// and sets the level of all components. It may be called more than once.
func Init(level string, w io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	std.SetOutput(w)

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})
	for _, name := range Components {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
