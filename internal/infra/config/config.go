package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	Identity     IdentitySettings     `mapstructure:"identity"`
	Google       GoogleOAuthSettings  `mapstructure:"google"`
	RateLimit    RateLimitSettings    `mapstructure:"rate_limit"`
	Verification VerificationSettings `mapstructure:"verification"`
	Session      SessionSettings      `mapstructure:"session"`
	Argon2       Argon2Settings       `mapstructure:"argon2"`
	Telemetry    TelemetrySettings    `mapstructure:"telemetry"`
	CORS         CORSSettings         `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the Kafka producer used for code delivery and audit events
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// IdentitySettings selects and configures the external identity provider adapter.
// Mode "rest" talks to an identity-toolkit style HTTP API; mode "local" keeps
// credentials in Postgres for development and tests.
type IdentitySettings struct {
	Mode           string        `mapstructure:"mode"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TokenSecret    string        `mapstructure:"token_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
}

// GoogleOAuthSettings configures the federated Google sign-in provider.
type GoogleOAuthSettings struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// RateLimitSettings configures the login attempt limiter window and ceiling.
// Store selects the counter backend: "redis" shares one budget across
// instances, "memory" keeps per-process counters for single-node setups.
type RateLimitSettings struct {
	Store            string        `mapstructure:"store"`
	LoginWindow      time.Duration `mapstructure:"login_window"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
}

// VerificationSettings configures one-time code issuance.
type VerificationSettings struct {
	CodeTTL    time.Duration `mapstructure:"code_ttl"`
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
}

// SessionSettings configures the sliding idle timeout.
type SessionSettings struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// Argon2Settings configures Argon2id password hashing parameters for the
// local identity provider.
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CREALIK")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"identity.mode",
		"identity.base_url",
		"identity.api_key",
		"identity.request_timeout",
		"identity.token_secret",
		"identity.token_ttl",
		"google.client_id",
		"google.client_secret",
		"google.redirect_url",
		"rate_limit.store",
		"rate_limit.login_window",
		"rate_limit.login_max_attempts",
		"verification.code_ttl",
		"verification.history_ttl",
		"session.idle_timeout",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crealik-auth")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "crealik")
	v.SetDefault("postgres.password", "crealik_password")
	v.SetDefault("postgres.database", "crealik")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "crealik")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "crealik")
	v.SetDefault("kafka.async", true)

	v.SetDefault("identity.mode", "local")
	v.SetDefault("identity.base_url", "")
	v.SetDefault("identity.api_key", "")
	v.SetDefault("identity.request_timeout", "10s")
	v.SetDefault("identity.token_secret", "dev-only-secret")
	v.SetDefault("identity.token_ttl", "1h")

	v.SetDefault("rate_limit.store", "redis")
	v.SetDefault("rate_limit.login_window", "15m")
	v.SetDefault("rate_limit.login_max_attempts", 5)

	v.SetDefault("verification.code_ttl", "15m")
	// Retained history lets validity checks pick the most recent of several codes.
	v.SetDefault("verification.history_ttl", "24h")

	v.SetDefault("session.idle_timeout", "2h")

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "crealik-auth")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "CREALIK_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
