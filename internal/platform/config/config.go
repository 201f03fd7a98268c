package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server binary reads from the environment.
type Config struct {
	Addr        string
	Environment string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers []string
	AuditTopic   string

	EPP   EPPConfig
	Email EmailConfig

	JWTSigningKey string
}

// EPPConfig points at the registry endpoint and the client certificate pair
// used for the TLS session.
type EPPConfig struct {
	Addr     string
	CertFile string
	KeyFile  string
	Login    string
	Password string
}

// EmailConfig carries the SMTP endpoint and the non-production safety net.
type EmailConfig struct {
	SMTPAddr  string
	From      string
	Disabled  bool
	AllowList []string
	OpsBCC    string
}

// AvailabilityCacheTTL bounds how long a registry availability answer may be
// served from Redis.
var AvailabilityCacheTTL = 5 * time.Minute

// IsProduction reports whether the environment enables production behavior:
// ops BCC on notifications and no recipient allow-list.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:        envOr("REGISTRAR_ADDR", ":8080"),
		Environment: envOr("REGISTRAR_ENV", "development"),
		PostgresDSN: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AuditTopic:  envOr("AUDIT_TOPIC", "registrar.audit"),
		EPP: EPPConfig{
			Addr:     os.Getenv("EPP_ADDR"),
			CertFile: os.Getenv("EPP_CERT_FILE"),
			KeyFile:  os.Getenv("EPP_KEY_FILE"),
			Login:    os.Getenv("EPP_LOGIN"),
			Password: os.Getenv("EPP_PASSWORD"),
		},
		Email: EmailConfig{
			SMTPAddr: envOr("SMTP_ADDR", "localhost:25"),
			From:     envOr("EMAIL_FROM", "help@get.gov"),
			Disabled: os.Getenv("EMAIL_DISABLED") == "true",
			OpsBCC:   os.Getenv("EMAIL_OPS_BCC"),
		},
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	if allow := os.Getenv("EMAIL_ALLOW_LIST"); allow != "" {
		cfg.Email.AllowList = splitAndTrim(allow)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
