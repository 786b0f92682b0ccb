package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Auth        AuthConfig
	StorageType string
	LogLevel    string
}

type HTTPConfig struct {
	Port string
}

type PostgresConfig struct {
	User     string
	Password string
	DB       string
	Host     string
	Port     int
	SSLMode  string
}

func (pc PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.User,
		pc.Password,
		pc.Host,
		pc.Port,
		pc.DB,
		pc.SSLMode,
	)
}

type AuthConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

func LoadConfig() Config {
	cfg := Config{
		StorageType: getEnvDefault("STORAGE_TYPE", "inmemory"),
		LogLevel:    getEnvDefault("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Port: getEnvDefault("HTTP_PORT", "8080"),
		},
		// JWKSURL left empty runs the API anonymous-only: bearer tokens
		// are rejected because nothing can verify them.
		Auth: AuthConfig{
			JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
			Issuer:   os.Getenv("AUTH_ISSUER"),
			Audience: os.Getenv("AUTH_AUDIENCE"),
		},
	}

	if cfg.StorageType == "postgres" {
		cfg.Postgres = PostgresConfig{
			User:     mustGetEnv("POSTGRES_USER"),
			Password: mustGetEnv("POSTGRES_PASSWORD"),
			DB:       mustGetEnv("POSTGRES_DB"),
			Host:     mustGetEnv("POSTGRES_HOST"),
			Port:     mustGetInt("POSTGRES_PORT"),
			SSLMode:  getEnvDefault("POSTGRES_SSLMODE", "disable"),
		}
	}

	return cfg
}

func getEnvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("missing required env var: " + key)
	}
	return val
}

func mustGetInt(key string) int {
	val := mustGetEnv(key)
	i, err := strconv.Atoi(val)
	if err != nil {
		panic("invalid int for env var " + key + ": " + val)
	}
	return i
}
