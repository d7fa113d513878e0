package config_test

import (
	"testing"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"

	"github.com/transitlabs/citymapper/internal/config"
)

func TestMustLoad_FromEnv(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_ENV", "local")
	t.Setenv("CITYMAPPER_API_KEY", "testAPIKey")
	t.Setenv("CITYMAPPER_CALL_LIMIT", "500")
	t.Setenv("CITYMAPPER_RATE", "20")
	t.Setenv("CITYMAPPER_HEALTH_PORT", "9090")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, 500, cfg.CallLimit)
	assert.Equal(t, 20, cfg.Rate)
	assert.Equal(t, 9090, cfg.Port)
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_ENV", "")
	t.Setenv("CITYMAPPER_API_KEY", "testAPIKey")
	t.Setenv("CITYMAPPER_CALL_LIMIT", "")
	t.Setenv("CITYMAPPER_RATE", "")
	t.Setenv("CITYMAPPER_HEALTH_PORT", "")

	cfg := config.MustLoad()

	assert.Equal(t, 1000, cfg.CallLimit)
	assert.Equal(t, 10, cfg.Rate)
	assert.Equal(t, 8080, cfg.Port)
}

func TestMustLoad_FromFile(t *testing.T) {
	defer filet.CleanUp(t)

	file := filet.TmpFile(t, "", `
env: development
api_key: fileAPIKey
call_limit: 250
rate: 5
health_port: 9999
`)
	t.Setenv("CITYMAPPER_CONFIG", file.Name())

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "fileAPIKey", cfg.APIKey)
	assert.Equal(t, 250, cfg.CallLimit)
	assert.Equal(t, 5, cfg.Rate)
	assert.Equal(t, 9999, cfg.Port)
}

func TestMustLoad_FileDefaults(t *testing.T) {
	defer filet.CleanUp(t)

	file := filet.TmpFile(t, "", "api_key: fileAPIKey\n")
	t.Setenv("CITYMAPPER_CONFIG", file.Name())

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 1000, cfg.CallLimit)
	assert.Equal(t, 10, cfg.Rate)
	assert.Equal(t, 8080, cfg.Port)
}

func TestMustLoad_MissingFile(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "/nonexistent/config.yml")

	assert.Panics(t, func() {
		config.MustLoad()
	})
}

func TestMustLoad_CallLimitError(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_API_KEY", "testAPIKey")
	t.Setenv("CITYMAPPER_CALL_LIMIT", "error_value")

	assert.PanicsWithValue(t, "failed to parse call limit from configuration, must be an integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateError(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_API_KEY", "testAPIKey")
	t.Setenv("CITYMAPPER_RATE", "error_value")

	assert.PanicsWithValue(t, "failed to parse rate from configuration, must be an integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_API_KEY", "testAPIKey")
	t.Setenv("CITYMAPPER_HEALTH_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for monitoring server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("CITYMAPPER_CONFIG", "")
	t.Setenv("CITYMAPPER_API_KEY", "")

	assert.Panics(t, func() {
		config.MustLoad()
	})
}
