package util

import (
	"strings"

	"github.com/ValentinKolb/prefKV/lib/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the cli
	EnvPrefix = "prefkv"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags selecting and configuring the store to a command
func SetupStoreFlags(cmd *cobra.Command) {
	defaults := config.Defaults()

	key := "app-id"
	cmd.PersistentFlags().String(key, "", WrapString("The application id, the default store is named <app-id>_preferences (default: name of the executable)"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, defaults.DataDir, WrapString("Directory holding one file per store"))

	key = "engine"
	cmd.PersistentFlags().String(key, defaults.Engine, WrapString("Storage engine to use (bolt, maple, memory)"))

	key = "serializer"
	cmd.PersistentFlags().String(key, defaults.Serializer, WrapString("Serializer for stored values (binary, json, gob). Existing bolt files keep their serializer"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("Log level (debug, info, warn, error)"))

	key = "store"
	cmd.PersistentFlags().String(key, "", WrapString("Name of the store to operate on (default: <app-id>_preferences)"))
}

// InitConfig loads .env files and makes v read environment variables with the PREFKV_ prefix
func InitConfig(v *viper.Viper) {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to v
func BindCommandFlags(v *viper.Viper, cmd *cobra.Command) error {
	return v.BindPFlags(cmd.Flags())
}

// GetConfig reads the store configuration from v
func GetConfig(v *viper.Viper) config.Config {
	return config.Config{
		AppID:      v.GetString("app-id"),
		DataDir:    v.GetString("data-dir"),
		Engine:     v.GetString("engine"),
		Serializer: v.GetString("serializer"),
		LogLevel:   v.GetString("log-level"),
	}
}

// GetStoreName returns the selected store, empty means the default store
func GetStoreName(v *viper.Viper) string {
	return v.GetString("store")
}
