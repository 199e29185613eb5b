package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// Example ENV equivalent:
//
//	DB_PATH=data/bist100_prices.db
//	OUT_DIR=data
//	OUTPUT_PREFIX=BIST100
//	SLEEP_MIN_MS=800
//	SLEEP_MAX_MS=1800
//	HTTP_TIMEOUT_SECONDS=20
//	SERVER_PORT=8080
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Output   OutputConfig
	Fetch    FetchConfig
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	Port string // TCP port the API listens on (e.g., "8080")
}

// DatabaseConfig points at the local SQLite store.
type DatabaseConfig struct {
	Path string // SQLite file path, created on first run
}

// OutputConfig controls where and under what name run files are written.
type OutputConfig struct {
	Dir    string // directory for CSV/XLSX output, created if missing
	Prefix string // filename prefix, e.g. "BIST100"
}

// FetchConfig tunes the provider client.
//
// SleepMinMS/SleepMaxMS bound the random pause between consecutive symbol
// requests; TimeoutSeconds caps a single chart request.
type FetchConfig struct {
	SleepMinMS     int
	SleepMaxMS     int
	TimeoutSeconds int
}

// AppConfig is the globally accessible configuration instance, populated once
// via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit: if required variables end up missing, validateConfig()
// terminates the process with a descriptive message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("DB_PATH", "data/bist100_prices.db")
	viper.SetDefault("OUT_DIR", "data")
	viper.SetDefault("OUTPUT_PREFIX", "BIST100")

	viper.SetDefault("SLEEP_MIN_MS", 800)
	viper.SetDefault("SLEEP_MAX_MS", 1800)
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 20)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("DB_PATH"),
		},
		Output: OutputConfig{
			Dir:    viper.GetString("OUT_DIR"),
			Prefix: viper.GetString("OUTPUT_PREFIX"),
		},
		Fetch: FetchConfig{
			SleepMinMS:     viper.GetInt("SLEEP_MIN_MS"),
			SleepMaxMS:     viper.GetInt("SLEEP_MAX_MS"),
			TimeoutSeconds: viper.GetInt("HTTP_TIMEOUT_SECONDS"),
		},
	}

	validateConfig()
}

// validateConfig ensures required variables are present and terminates the
// application if they are missing or inconsistent.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Database.Path == "" {
		missing = append(missing, "DB_PATH")
	}
	if AppConfig.Output.Dir == "" {
		missing = append(missing, "OUT_DIR")
	}
	if AppConfig.Output.Prefix == "" {
		missing = append(missing, "OUTPUT_PREFIX")
	}
	if AppConfig.Fetch.TimeoutSeconds <= 0 {
		missing = append(missing, "HTTP_TIMEOUT_SECONDS")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v", missing)
	}

	if AppConfig.Fetch.SleepMaxMS < AppConfig.Fetch.SleepMinMS {
		log.Fatalf("SLEEP_MAX_MS (%d) must be >= SLEEP_MIN_MS (%d)",
			AppConfig.Fetch.SleepMaxMS, AppConfig.Fetch.SleepMinMS)
	}
}
