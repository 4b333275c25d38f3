// Package config holds the configuration of the preference stores of a process.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
	"github.com/ValentinKolb/prefKV/lib/logging"
	"github.com/ValentinKolb/prefKV/lib/store"
)

// DefaultStoreSuffix is appended to the app id to name the default store
const DefaultStoreSuffix = "_preferences"

// Config holds all parameters needed to open preference stores.
type Config struct {
	// AppID identifies the application. The default store is named "<AppID>_preferences".
	// Empty means the base name of the executable.
	AppID string

	// DataDir is the directory holding one file per store (not used by the memory engine)
	DataDir string

	// Engine is one of bolt, maple or memory
	Engine string

	// Serializer is one of binary, json or gob
	Serializer string

	// LogLevel is one of debug, info, warn or error
	LogLevel string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		DataDir:    "data",
		Engine:     engines.EngineBolt,
		Serializer: "binary",
		LogLevel:   "warn",
	}
}

// Validate checks all fields and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if c.AppID != "" {
		if err := store.ValidateName(c.AppID + DefaultStoreSuffix); err != nil {
			errs = append(errs, fmt.Errorf("app id: %w", err))
		}
	}
	if !slices.Contains(engines.Names, c.Engine) {
		errs = append(errs, fmt.Errorf("engine: invalid engine %q (expected one of: %s)", c.Engine, strings.Join(engines.Names, ", ")))
	}
	if c.Engine != engines.EngineMemory && c.DataDir == "" {
		errs = append(errs, fmt.Errorf("data dir: required for engine %s", c.Engine))
	}
	if _, err := serializer.ByName(c.Serializer); err != nil {
		errs = append(errs, fmt.Errorf("serializer: %w", err))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	return errors.Join(errs...)
}

// ResolveAppID returns AppID or, if empty, the base name of the running executable
// without extension.
func (c Config) ResolveAppID() string {
	if c.AppID != "" {
		return c.AppID
	}
	exe, err := os.Executable()
	if err != nil {
		return "app"
	}
	base := filepath.Base(exe)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DefaultStoreName returns the name of the default store, "<app-id>_preferences".
func (c Config) DefaultStoreName() string {
	return c.ResolveAppID() + DefaultStoreSuffix
}

// NewFactory returns the db.Factory for the configured engine and serializer.
func (c Config) NewFactory() (db.Factory, error) {
	s, err := serializer.ByName(c.Serializer)
	if err != nil {
		return nil, err
	}
	return engines.NewFactory(c.Engine, c.DataDir, s)
}

// String returns a formatted string representation of the configuration
func (c Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Application identity
	addSection("Application")
	addField("App ID", c.ResolveAppID())
	addField("Default Store", c.DefaultStoreName())

	// Storage
	addSection("Storage")
	addField("Engine", c.Engine)
	addField("Serializer", c.Serializer)
	if c.Engine == engines.EngineMemory {
		addField("Data Directory", "(not used)")
	} else {
		addField("Data Directory", c.DataDir)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
