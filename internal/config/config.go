package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration settings for the Citymapper client.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the monitoring server.
// - APIKey: The Citymapper API credential (required).
// - CallLimit: The lifetime call ceiling for one client instance.
// - Rate: The outbound rate in calls per minute.
type Config struct {
	Env       string `yaml:"env"`                             // Env is the current environment: local, development, production.
	Port      int    `yaml:"health_port"`                     // Port is the monitoring server port.
	APIKey    string `yaml:"api_key"    validate:"required"`  // The Citymapper API credential.
	CallLimit int    `yaml:"call_limit" validate:"gt=0"`      // Lifetime call ceiling.
	Rate      int    `yaml:"rate"       validate:"gt=0"`      // Outbound calls per minute.
}

// MustLoad loads the configuration from the environment (an optional .env
// file is honored) and returns a Config struct. When CITYMAPPER_CONFIG
// points at a YAML file, that file wins over the individual variables.
func MustLoad() *Config {
	_ = godotenv.Load()

	if path := os.Getenv("CITYMAPPER_CONFIG"); path != "" {
		cfg, err := loadFile(path)
		if err != nil {
			panic("failed to load configuration file: " + err.Error())
		}
		return cfg
	}

	callLimit, err := strconv.Atoi(setDefaultEnv("CITYMAPPER_CALL_LIMIT", "1000"))
	if err != nil {
		panic("failed to parse call limit from configuration, must be an integer")
	}

	callRate, err := strconv.Atoi(setDefaultEnv("CITYMAPPER_RATE", "10"))
	if err != nil {
		panic("failed to parse rate from configuration, must be an integer")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("CITYMAPPER_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	cfg := &Config{
		Env:       setDefaultEnv("CITYMAPPER_ENV", "production"),
		Port:      healthPort,
		APIKey:    os.Getenv("CITYMAPPER_API_KEY"),
		CallLimit: callLimit,
		Rate:      callRate,
	}

	if err = validator.New().Struct(cfg); err != nil {
		panic("invalid configuration: " + err.Error())
	}

	return cfg
}

// loadFile reads and validates a YAML configuration file. Missing fields
// keep their defaults.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := &Config{
		Env:       "production",
		Port:      8080,
		CallLimit: 1000,
		Rate:      10,
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err = validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return cfg, nil
}

// setDefaultEnv treats an unset or empty variable as absent.
func setDefaultEnv(key, override string) string {
	value := os.Getenv(key)
	if value == "" {
		value = override
	}

	return value
}
