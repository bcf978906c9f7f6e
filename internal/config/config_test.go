package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COMMERCETOOLS_CLIENT_ID", "client")
	t.Setenv("COMMERCETOOLS_CLIENT_SECRET", "secret")
	t.Setenv("COMMERCETOOLS_PROJECT_KEY", "project")
	t.Setenv("COMMERCETOOLS_API_URL", "https://api.example.com")
	t.Setenv("COMMERCETOOLS_AUTH_URL", "https://auth.example.com")
	t.Setenv("PAYDOCK_API_LIVE_URL", "https://api.paydock.com")
	t.Setenv("PAYDOCK_API_SANDBOX_URL", "https://api-sandbox.paydock.com")
	t.Setenv("PAYDOCK_SECRET_KEY", "sk")
	t.Setenv("DATABASE_URL", "postgres://localhost/paydock")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Continuation.Backend != BackendRedis {
		t.Errorf("expected redis backend, got %s", cfg.Continuation.Backend)
	}
	if cfg.Continuation.TTL != 0 {
		t.Errorf("expected no continuation TTL, got %s", cfg.Continuation.TTL)
	}
	if cfg.Kafka.Topic != "paydock.notification.processed" {
		t.Errorf("unexpected kafka topic %s", cfg.Kafka.Topic)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COMMERCETOOLS_PROJECT_KEY", "")
	t.Setenv("PAYDOCK_SECRET_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing variables")
	}
	for _, name := range []string{"COMMERCETOOLS_PROJECT_KEY", "PAYDOCK_SECRET_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected %s in error, got %q", name, err.Error())
		}
	}
}

func TestLoad_UnsupportedBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTINUATION_BACKEND", "memcached")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestLoad_RejectsNonPositiveReapInterval(t *testing.T) {
	for _, interval := range []string{"0s", "-1m"} {
		t.Run(interval, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("CONTINUATION_REAP_AFTER", "24h")
			t.Setenv("CONTINUATION_REAP_INTERVAL", interval)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), "CONTINUATION_REAP_INTERVAL") {
				t.Fatalf("expected reap interval error, got %v", err)
			}
		})
	}
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CONTINUATION_TTL", "72h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Continuation.TTL != 72*time.Hour {
		t.Errorf("expected 72h TTL, got %s", cfg.Continuation.TTL)
	}
}

func TestGatewayConnection(t *testing.T) {
	t.Parallel()

	g := GatewayConfig{
		LiveURL:    "https://live",
		SandboxURL: "https://sandbox",
		SecretKey:  "sk",
		AccessKey:  "ak",
	}

	conn := g.Connection()
	if conn.BaseURL != "https://live" || conn.AuthHeader != "x-user-secret-key" || conn.Credential != "sk" {
		t.Errorf("unexpected live connection %+v", conn)
	}

	g.SandboxMode = true
	g.CredentialsType = "access_key"
	conn = g.Connection()
	if conn.BaseURL != "https://sandbox" || conn.AuthHeader != "x-access-token" || conn.Credential != "ak" {
		t.Errorf("unexpected sandbox connection %+v", conn)
	}
}
