// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// OpenAIConfig contains completion service configuration
type OpenAIConfig struct {
	APIKey   string `mapstructure:"apikey"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig contains conversation store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig contains response cache configuration
type CacheConfig struct {
	AssistantTTLMinutes   int `mapstructure:"assistant_ttl_minutes"`
	JurisprudenceTTLHours int `mapstructure:"jurisprudence_ttl_hours"`
	SweepIntervalMinutes  int `mapstructure:"sweep_interval_minutes"`
}

// AnalysisConfig contains document analysis settings
type AnalysisConfig struct {
	MaxChunkSize    int `mapstructure:"max_chunk_size"`
	AnalysisCeiling int `mapstructure:"analysis_ceiling"`
}

// ChatConfig contains chat-send retry settings
type ChatConfig struct {
	AttemptTimeoutSeconds  int `mapstructure:"attempt_timeout_seconds"`
	OverallDeadlineSeconds int `mapstructure:"overall_deadline_seconds"`
	MaxAttempts            int `mapstructure:"max_attempts"`
	BackoffStepSeconds     int `mapstructure:"backoff_step_seconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath, ValidateRequired: true})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	setConfigFile(v, opts.ConfigPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("LEGAL_ASSISTANT")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine when env vars carry the settings
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.endpoint", "")
	v.SetDefault("openai.model", "gpt-4o-mini")

	v.SetDefault("server.port", "8080")

	v.SetDefault("database.path", "./legal_assistant.db")

	v.SetDefault("cache.assistant_ttl_minutes", 30)
	v.SetDefault("cache.jurisprudence_ttl_hours", 24)
	v.SetDefault("cache.sweep_interval_minutes", 5)

	v.SetDefault("analysis.max_chunk_size", 8000)
	v.SetDefault("analysis.analysis_ceiling", 12000)

	v.SetDefault("chat.attempt_timeout_seconds", 10)
	v.SetDefault("chat.overall_deadline_seconds", 15)
	v.SetDefault("chat.max_attempts", 3)
	v.SetDefault("chat.backoff_step_seconds", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

func setConfigFile(v *viper.Viper, configPath string) {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		v.SetConfigFile(envPath)
		return
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
}

// setEnvironmentMappings sets explicit environment variable mappings for
// variables that do not follow the prefixed naming scheme.
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"OPENAI_API_KEY":  "openai.apikey",
		"OPENAI_MODEL":    "openai.model",
		"OPENAI_ENDPOINT": "openai.endpoint",
		"DATABASE_PATH":   "database.path",
		"PORT":            "server.port",
		"LOG_LEVEL":       "logging.level",
		"LOG_FORMAT":      "logging.format",
		"LOG_OUTPUT":      "logging.output",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errors []ValidationError

	if config.OpenAI.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "openai.apikey",
			Message: "OpenAI API key is required. Set via config file or OPENAI_API_KEY environment variable",
		})
	}

	if config.Database.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "database.path",
			Message: "database path is required",
		})
	}

	if config.Analysis.MaxChunkSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "analysis.max_chunk_size",
			Message: "max_chunk_size must be greater than 0",
		})
	}

	if config.Analysis.AnalysisCeiling < config.Analysis.MaxChunkSize {
		errors = append(errors, ValidationError{
			Field:   "analysis.analysis_ceiling",
			Message: "analysis_ceiling must be at least max_chunk_size",
		})
	}

	if config.Chat.MaxAttempts <= 0 {
		errors = append(errors, ValidationError{
			Field:   "chat.max_attempts",
			Message: "max_attempts must be greater than 0",
		})
	}

	if config.Chat.AttemptTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "chat.attempt_timeout_seconds",
			Message: "attempt_timeout_seconds must be greater than 0",
		})
	}

	if config.Chat.OverallDeadlineSeconds < config.Chat.AttemptTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "chat.overall_deadline_seconds",
			Message: "overall_deadline_seconds must be at least attempt_timeout_seconds",
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c
	if masked.OpenAI.APIKey != "" {
		masked.OpenAI.APIKey = maskValue(masked.OpenAI.APIKey)
	}
	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()
	setConfigFile(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for watching: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config after change to %s: %v\n", e.Name, err)
			return
		}
		callback(config)
	})

	return nil
}
