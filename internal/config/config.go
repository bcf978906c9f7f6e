package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Continuation store backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the notification service.
type Config struct {
	Server       ServerConfig
	Commerce     CommerceConfig
	Gateway      GatewayConfig
	Redis        RedisConfig
	Database     DatabaseConfig
	Kafka        KafkaConfig
	Telemetry    TelemetryConfig
	Continuation ContinuationConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CommerceConfig holds commercetools API credentials.
type CommerceConfig struct {
	ClientID     string
	ClientSecret string
	ProjectKey   string
	APIURL       string
	AuthURL      string
	Timeout      time.Duration
}

// GatewayConfig holds Paydock connection settings.
type GatewayConfig struct {
	LiveURL         string
	SandboxURL      string
	SandboxMode     bool
	CredentialsType string
	SecretKey       string
	AccessKey       string
	Timeout         time.Duration
}

// GatewayConnection is the resolved endpoint and credential header for the
// active gateway environment.
type GatewayConnection struct {
	BaseURL    string
	AuthHeader string
	Credential string
}

// Connection picks the sandbox or live endpoint and the credential header.
func (g GatewayConfig) Connection() GatewayConnection {
	conn := GatewayConnection{BaseURL: g.LiveURL}
	if g.SandboxMode {
		conn.BaseURL = g.SandboxURL
	}
	if g.CredentialsType == "access_key" {
		conn.AuthHeader = "x-access-token"
		conn.Credential = g.AccessKey
	} else {
		conn.AuthHeader = "x-user-secret-key"
		conn.Credential = g.SecretKey
	}
	return conn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type TelemetryConfig struct {
	ServiceName    string
	JaegerEndpoint string
	LogLevel       string
}

// ContinuationConfig selects and tunes the fraud continuation store.
type ContinuationConfig struct {
	Backend      string
	TTL          time.Duration
	ReapAfter    time.Duration
	ReapInterval time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Commerce: CommerceConfig{
			ClientID:     os.Getenv("COMMERCETOOLS_CLIENT_ID"),
			ClientSecret: os.Getenv("COMMERCETOOLS_CLIENT_SECRET"),
			ProjectKey:   os.Getenv("COMMERCETOOLS_PROJECT_KEY"),
			APIURL:       os.Getenv("COMMERCETOOLS_API_URL"),
			AuthURL:      os.Getenv("COMMERCETOOLS_AUTH_URL"),
			Timeout:      getDurationEnv("COMMERCETOOLS_TIMEOUT", 10*time.Second),
		},
		Gateway: GatewayConfig{
			LiveURL:         os.Getenv("PAYDOCK_API_LIVE_URL"),
			SandboxURL:      os.Getenv("PAYDOCK_API_SANDBOX_URL"),
			SandboxMode:     getBoolEnv("PAYDOCK_SANDBOX_MODE", false),
			CredentialsType: getEnv("PAYDOCK_CREDENTIALS_TYPE", "secret_key"),
			SecretKey:       os.Getenv("PAYDOCK_SECRET_KEY"),
			AccessKey:       os.Getenv("PAYDOCK_ACCESS_KEY"),
			Timeout:         getDurationEnv("PAYDOCK_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_URL", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "paydock.notification.processed"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    getEnv("SERVICE_NAME", "paydock-notification"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "jaeger:4318"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
		Continuation: ContinuationConfig{
			Backend:      getEnv("CONTINUATION_BACKEND", BackendRedis),
			TTL:          getDurationEnv("CONTINUATION_TTL", 0),
			ReapAfter:    getDurationEnv("CONTINUATION_REAP_AFTER", 0),
			ReapInterval: getDurationEnv("CONTINUATION_REAP_INTERVAL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing required settings and unsupported values.
func (c *Config) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"COMMERCETOOLS_CLIENT_ID", c.Commerce.ClientID},
		{"COMMERCETOOLS_CLIENT_SECRET", c.Commerce.ClientSecret},
		{"COMMERCETOOLS_PROJECT_KEY", c.Commerce.ProjectKey},
		{"COMMERCETOOLS_API_URL", c.Commerce.APIURL},
		{"COMMERCETOOLS_AUTH_URL", c.Commerce.AuthURL},
		{"PAYDOCK_API_LIVE_URL", c.Gateway.LiveURL},
		{"PAYDOCK_API_SANDBOX_URL", c.Gateway.SandboxURL},
		{"DATABASE_URL", c.Database.URL},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.env)
		}
	}
	if c.Gateway.Connection().Credential == "" {
		if c.Gateway.CredentialsType == "access_key" {
			missing = append(missing, "PAYDOCK_ACCESS_KEY")
		} else {
			missing = append(missing, "PAYDOCK_SECRET_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.Continuation.Backend {
	case BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unsupported CONTINUATION_BACKEND %q", c.Continuation.Backend)
	}
	if c.Continuation.ReapAfter > 0 && c.Continuation.ReapInterval <= 0 {
		return fmt.Errorf("CONTINUATION_REAP_INTERVAL must be positive when CONTINUATION_REAP_AFTER is set, got %s", c.Continuation.ReapInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
