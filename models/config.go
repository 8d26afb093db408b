package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJSON    LogFormat = "json"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// String returns the string representation of LogFormat
func (f LogFormat) String() string {
	return string(f)
}

// IsValid checks if the LogLevel is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// IsValid checks if the LogFormat is valid
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatConsole, LogFormatJSON:
		return true
	default:
		return false
	}
}

// Config represents the application configuration
type Config struct {
	// GitHub configuration
	GitHub struct {
		Token     string `mapstructure:"token"`
		EventPath string `mapstructure:"event_path"`
	} `mapstructure:"github"`

	// OpenAI configuration
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"` // Optional endpoint override for proxies and compatible APIs
	} `mapstructure:"openai"`

	// Review behavior
	Review struct {
		Exclude     []string `mapstructure:"exclude"`
		Concurrency int      `mapstructure:"concurrency"`
		MaxComments int      `mapstructure:"max_comments"`
	} `mapstructure:"review"`

	// Logging configuration
	Logging struct {
		Level  LogLevel  `mapstructure:"level"`
		Format LogFormat `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// LoadConfig loads configuration from environment variables and an optional
// YAML file. Environment values take precedence over file values.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("review.concurrency", 1)
	v.SetDefault("review.max_comments", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	_ = v.BindEnv("github.token", "GITHUB_TOKEN")
	_ = v.BindEnv("github.event_path", "GITHUB_EVENT_PATH")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "OPENAI_API_MODEL")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("review.exclude", "REVIEWER_EXCLUDE")
	_ = v.BindEnv("review.concurrency", "REVIEWER_CONCURRENCY")
	_ = v.BindEnv("review.max_comments", "REVIEWER_MAX_COMMENTS")
	_ = v.BindEnv("logging.level", "REVIEWER_LOG_LEVEL")
	_ = v.BindEnv("logging.format", "REVIEWER_LOG_FORMAT")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		stringToLogLevelHookFunc(),
		stringToLogFormatHookFunc(),
	))
	if err := v.Unmarshal(&config, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := config.validateGitHub(); err != nil {
		return nil, err
	}
	if err := config.validateOpenAI(); err != nil {
		return nil, err
	}
	if err := config.validateReview(); err != nil {
		return nil, err
	}
	if err := config.validateLogging(); err != nil {
		return nil, err
	}

	return &config, nil
}

// stringToLogLevelHookFunc decodes and validates log levels during unmarshal
func stringToLogLevelHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(LogLevel("")) {
			return data, nil
		}
		level := LogLevel(strings.ToLower(data.(string)))
		if !level.IsValid() {
			return nil, fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", data)
		}
		return level, nil
	}
}

// stringToLogFormatHookFunc decodes and validates log formats during unmarshal
func stringToLogFormatHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(LogFormat("")) {
			return data, nil
		}
		format := LogFormat(strings.ToLower(data.(string)))
		if !format.IsValid() {
			return nil, fmt.Errorf("invalid log format: %s. Valid options are: console, json", data)
		}
		return format, nil
	}
}

// validateGitHub ensures the GitHub collaborator can be reached
func (c *Config) validateGitHub() error {
	if c.GitHub.Token == "" {
		return errors.New("github.token (GITHUB_TOKEN) is required")
	}
	if c.GitHub.EventPath == "" {
		return errors.New("github.event_path (GITHUB_EVENT_PATH) is required")
	}
	return nil
}

// validateOpenAI ensures the inference collaborator can be reached
func (c *Config) validateOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("openai.api_key (OPENAI_API_KEY) is required")
	}
	if c.OpenAI.Model == "" {
		return errors.New("openai.model cannot be empty")
	}
	return nil
}

// validateReview ensures review behavior settings are usable
func (c *Config) validateReview() error {
	if c.Review.Concurrency < 1 {
		return fmt.Errorf("review.concurrency must be at least 1, got %d", c.Review.Concurrency)
	}
	if c.Review.MaxComments < 0 {
		return fmt.Errorf("review.max_comments cannot be negative, got %d", c.Review.MaxComments)
	}
	for _, pattern := range c.Review.Exclude {
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}
	return nil
}

// validateLogging ensures logging configuration is valid
func (c *Config) validateLogging() error {
	if !c.Logging.Level.IsValid() {
		return fmt.Errorf("invalid log level: %s. Valid options are: debug, info, warn, error", c.Logging.Level)
	}
	if !c.Logging.Format.IsValid() {
		return fmt.Errorf("invalid log format: %s. Valid options are: console, json", c.Logging.Format)
	}
	return nil
}
