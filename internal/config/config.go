package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only honoured when ENV=development.
const DefaultJWTSecret = "default_secret_key"

type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Relay    RelayConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

type RelayConfig struct {
	StoreTimeout time.Duration
	SendBuffer   int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from the current environment without
// touching .env files.
func FromEnv() (*Config, error) {
	env := getEnvOrDefault("ENV", "development")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if env != "development" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required")
		}
		secret = DefaultJWTSecret
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" && env != "development" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	readTimeout, err := getDurationOrDefault("READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getDurationOrDefault("WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	idleTimeout, err := getDurationOrDefault("IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	expiresIn, err := getDurationOrDefault("JWT_EXPIRES_IN", "1h")
	if err != nil {
		return nil, err
	}
	storeTimeout, err := getDurationOrDefault("STORE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	sendBuffer, err := getIntOrDefault("SEND_BUFFER", 256)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      env,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", ":5000"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
			CORSOrigins:  getListOrDefault("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
		Database: DatabaseConfig{
			URL: databaseURL,
		},
		JWT: JWTConfig{
			Secret:    []byte(secret),
			ExpiresIn: expiresIn,
		},
		Relay: RelayConfig{
			StoreTimeout: storeTimeout,
			SendBuffer:   sendBuffer,
		},
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return duration, nil
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return intValue, nil
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
