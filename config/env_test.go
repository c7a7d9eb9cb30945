package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENML_MODE", "prod")
	t.Setenv("OPENML_SERVER", "http://localhost:9999/")
	t.Setenv("OPENML_API_KEY", "secret")
	t.Setenv("OPENML_RETRY_MAX", "3")

	env, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "prod", env.Mode)
	assert.Equal(t, "http://localhost:9999/", env.Server)
	assert.Equal(t, "api/v1/", env.APIPath)
	assert.Equal(t, "secret", env.APIKey)
	assert.Equal(t, 3, env.RetryMax)
	assert.Equal(t, 300*time.Second, env.Timeout())
}

func TestLoadFromFile(t *testing.T) {
	os.Unsetenv("OPENML_MODE")
	envFile := filepath.Join(t.TempDir(), "openml.env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENML_API_KEY=from-file\nOPENML_TIMEOUT_SEC=7\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("OPENML_API_KEY")
		os.Unsetenv("OPENML_TIMEOUT_SEC")
	})

	env, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", env.APIKey)
	assert.Equal(t, 7*time.Second, env.Timeout())
}

func TestStringHidesKeys(t *testing.T) {
	env := Defaults()
	env.APIKey = "do-not-print"
	env.AdminKey = "do-not-print-either"

	assert.NotContains(t, env.String(), "do-not-print")
	assert.Contains(t, env.String(), "https://test.openml.org/")
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("dev")
	assert.NoError(t, err)
	_, err = NewLogger("quiet")
	assert.NoError(t, err)
	_, err = NewLogger("verbose")
	assert.Error(t, err)

	var cfg *Config
	assert.NotNil(t, cfg.Log())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusActive))
	assert.True(t, ValidStatus(StatusDeactivated))
	assert.False(t, ValidStatus(StatusInPreparation))
	assert.False(t, ValidStatus("removed"))
}

func TestEvaluatorDefaults(t *testing.T) {
	env := Defaults()
	assert.False(t, env.EvaluatorEnabled)
	assert.Equal(t, 1, env.EvaluatorEngineID)
	assert.Equal(t, 5*time.Second, env.PollInterval())
	assert.Empty(t, env.EvaluatorPauseTime)
}
