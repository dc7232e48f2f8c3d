package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment holds the environment variables recognized by all services.
// Every value is optional and overrides the corresponding YAML setting.
type Environment struct {
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.yaml"`

	JWTIssuer          string `env:"JWT_ISSUER"`
	JWTPrivateKey      string `env:"JWT_PRIVATE_KEY"`
	JWTPublicKey       string `env:"JWT_PUBLIC_KEY"`
	JWTAccessLifetime  string `env:"JWT_ACCESS_LIFETIME"`
	JWTRefreshLifetime string `env:"JWT_REFRESH_LIFETIME"`
	JWTMaxActiveTokens int    `env:"JWT_MAX_ACTIVE_TOKEN"`

	UserServiceURL     string `env:"MS_USER_URL"`
	AuthServiceURL     string `env:"MS_AUTH_URL"`
	EventServiceURL    string `env:"MS_EVENT_URL"`
	MicroserviceSecret string `env:"MICROSERVICE_SECRET"`
}

// LoadEnv loads a .env file when present and parses the environment variables
func LoadEnv() (*Environment, error) {
	// ignore a missing .env file, the variables may come from the process
	_ = godotenv.Load()

	e := Environment{}
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &e, nil
}
