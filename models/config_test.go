package models_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-pr-reviewer/models"
)

// setRequiredEnv sets the minimum environment a run needs.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_MODEL", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("REVIEWER_EXCLUDE", "")
	t.Setenv("REVIEWER_CONCURRENCY", "")
	t.Setenv("REVIEWER_MAX_COMMENTS", "")
	t.Setenv("REVIEWER_LOG_LEVEL", "")
	t.Setenv("REVIEWER_LOG_FORMAT", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	config, err := models.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", config.GitHub.Token)
	assert.Equal(t, "/tmp/event.json", config.GitHub.EventPath)
	assert.Equal(t, "sk-test", config.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", config.OpenAI.Model)
	assert.Equal(t, 1, config.Review.Concurrency)
	assert.Equal(t, 0, config.Review.MaxComments)
	assert.Equal(t, models.LogLevelInfo, config.Logging.Level)
	assert.Equal(t, models.LogFormatConsole, config.Logging.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_MODEL", "gpt-4-turbo")
	t.Setenv("REVIEWER_EXCLUDE", "**/*.md,vendor/**")
	t.Setenv("REVIEWER_CONCURRENCY", "4")
	t.Setenv("REVIEWER_LOG_LEVEL", "debug")
	t.Setenv("REVIEWER_LOG_FORMAT", "json")

	config, err := models.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo", config.OpenAI.Model)
	assert.Equal(t, []string{"**/*.md", "vendor/**"}, config.Review.Exclude)
	assert.Equal(t, 4, config.Review.Concurrency)
	assert.Equal(t, models.LogLevelDebug, config.Logging.Level)
	assert.Equal(t, models.LogFormatJSON, config.Logging.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
openai:
  model: gpt-4o-mini
review:
  exclude:
    - "**/*.lock"
  concurrency: 2
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := models.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", config.OpenAI.Model)
	assert.Equal(t, []string{"**/*.lock"}, config.Review.Exclude)
	assert.Equal(t, 2, config.Review.Concurrency)
	assert.Equal(t, models.LogLevelWarn, config.Logging.Level)
}

func TestLoadConfig_EnvTakesPrecedenceOverFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_MODEL", "gpt-4-turbo")
	t.Setenv("REVIEWER_CONCURRENCY", "8")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
openai:
  model: gpt-4o-mini
review:
  concurrency: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := models.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo", config.OpenAI.Model)
	assert.Equal(t, 8, config.Review.Concurrency)
}

func TestLoadConfig_MissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GITHUB_TOKEN", "")

	_, err := models.LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github.token")
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := models.LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.api_key")
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REVIEWER_LOG_LEVEL", "verbose")

	_, err := models.LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadConfig_InvalidConcurrency(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REVIEWER_CONCURRENCY", "0")

	_, err := models.LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := models.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLogLevelValidation(t *testing.T) {
	assert.True(t, models.LogLevelDebug.IsValid())
	assert.True(t, models.LogLevelError.IsValid())
	assert.False(t, models.LogLevel("trace").IsValid())
	assert.True(t, models.LogFormatJSON.IsValid())
	assert.False(t, models.LogFormat("pretty").IsValid())
}
