// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the service configuration, loaded from the environment
// with an optional .env file.
type Config struct {
	Port      string
	DataDir   string
	LogDir    string
	DebugMode bool

	// Engine tunables.
	HighlightDurationMS int
	CameraTransitionMS  int
	TickIntervalMS      int
	HistoryLimit        int
}

// Load reads the configuration from the environment. A missing .env file
// is not an error.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		DataDir:   getEnvPath("DATA_DIR", "data"),
		LogDir:    getEnv("LOG_DIR", "logs"),
		DebugMode: getEnvBool("DEBUG_MODE", true),

		HighlightDurationMS: getEnvInt("HIGHLIGHT_DURATION_MS", 3000),
		CameraTransitionMS:  getEnvInt("CAMERA_TRANSITION_MS", 1000),
		TickIntervalMS:      getEnvInt("TICK_INTERVAL_MS", 33),
		HistoryLimit:        getEnvInt("HISTORY_LIMIT", 50),
	}

	if config.HighlightDurationMS <= 0 || config.CameraTransitionMS <= 0 || config.TickIntervalMS <= 0 {
		return nil, fmt.Errorf("engine durations must be positive")
	}

	return config, nil
}

// getEnv returns the environment value or the default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath returns the environment path and ensures the directory exists.
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: failed to create directory %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool parses a boolean environment value.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt parses an integer environment value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
