package config

import (
	"os"
	"strconv"

	"fairlens/domain/core"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Report    ReportConfig
	Data      DataConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ReportConfig holds reporting defaults
type ReportConfig struct {
	SigFig         int
	ErrLimit       int
	PrivilegedCode int
	FlagCaption    string
}

// DataConfig holds data loading settings
type DataConfig struct {
	InputFile  string
	TargetCol  string
	PredCol    string
	ProbCol    string
	ProtectCol string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Report: ReportConfig{
			SigFig:         getEnvIntOrDefault("REPORT_SIG_FIG", 4),
			ErrLimit:       getEnvIntOrDefault("REPORT_ERR_LIMIT", 5),
			PrivilegedCode: getEnvIntOrDefault("PRIVILEGED_CODE", 1),
			FlagCaption:    getEnvOrDefault("FLAG_CAPTION", "Fairness Measures"),
		},
		Data: DataConfig{
			InputFile:  getEnvOrDefault("INPUT_FILE", ""),
			TargetCol:  getEnvOrDefault("TARGET_COLUMN", "y_true"),
			PredCol:    getEnvOrDefault("PREDICTION_COLUMN", "y_pred"),
			ProbCol:    getEnvOrDefault("PROBABILITY_COLUMN", ""),
			ProtectCol: getEnvOrDefault("PROTECTED_COLUMN", ""),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, core.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Report.SigFig < 1 {
		return core.ConfigInvalidf("REPORT_SIG_FIG must be positive, got %d", config.Report.SigFig)
	}
	if config.Report.ErrLimit < 0 {
		return core.ConfigInvalidf("REPORT_ERR_LIMIT must not be negative, got %d", config.Report.ErrLimit)
	}
	if config.Data.TargetCol == "" {
		return core.ConfigInvalid("TARGET_COLUMN is required")
	}
	if config.Data.PredCol == "" {
		return core.ConfigInvalid("PREDICTION_COLUMN is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
