// Package config loads service configuration from defaults, an optional
// passgate.yaml and PASSGATE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PASSGATE"

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Store        StoreConfig        `mapstructure:"store"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Audit        AuditConfig        `mapstructure:"audit"`
	AppCheck     AppCheckConfig     `mapstructure:"appcheck"`
	Registration RegistrationConfig `mapstructure:"registration"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// AdminToken enables the /admin operator routes when set.
	AdminToken string `mapstructure:"admin_token"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects where admins, profiles and accounts live.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	ClientID    string        `mapstructure:"client_id"`
	AuditTopic  string        `mapstructure:"audit_topic"`
	Linger      time.Duration `mapstructure:"linger"`
	Partitions  int32         `mapstructure:"partitions"`
	Replication int16         `mapstructure:"replication"`
}

// AuditConfig selects the audit sink: none, memory, postgres (outbox relayed
// to Kafka when brokers are set) or kafka (direct).
type AuditConfig struct {
	Sink          string        `mapstructure:"sink"`
	Buffer        int           `mapstructure:"buffer"`
	RelayInterval time.Duration `mapstructure:"relay_interval"`
	RelayBatch    int           `mapstructure:"relay_batch"`
}

const (
	SinkNone     = "none"
	SinkMemory   = "memory"
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"
)

// AppCheckConfig configures app-integrity attestation.
type AppCheckConfig struct {
	Mode            string        `mapstructure:"mode"`
	Header          string        `mapstructure:"header"`
	JWKSURL         string        `mapstructure:"jwks_url"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	HMACSecret      string        `mapstructure:"hmac_secret"`
	Leeway          time.Duration `mapstructure:"leeway"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

const (
	AppCheckModeJWKS = "jwks"
	AppCheckModeHMAC = "hmac"
)

type RegistrationConfig struct {
	MinFailureDelay   time.Duration `mapstructure:"min_failure_delay"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// SetDefaults registers every key so AutomaticEnv can resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.admin_token", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.backend", BackendMemory)

	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.migrate_on_start", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "passgate:")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.client_id", "passgate")
	v.SetDefault("kafka.audit_topic", "passgate.audit")
	v.SetDefault("kafka.linger", 5*time.Millisecond)
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replication", 1)

	v.SetDefault("audit.sink", SinkMemory)
	v.SetDefault("audit.buffer", 0)
	v.SetDefault("audit.relay_interval", time.Second)
	v.SetDefault("audit.relay_batch", 100)

	v.SetDefault("appcheck.mode", AppCheckModeJWKS)
	v.SetDefault("appcheck.header", "X-Firebase-AppCheck")
	v.SetDefault("appcheck.jwks_url", "https://firebaseappcheck.googleapis.com/v1/jwks")
	v.SetDefault("appcheck.issuer", "")
	v.SetDefault("appcheck.audience", "")
	v.SetDefault("appcheck.hmac_secret", "")
	v.SetDefault("appcheck.leeway", 30*time.Second)
	v.SetDefault("appcheck.refresh_interval", 6*time.Hour)

	v.SetDefault("registration.min_failure_delay", time.Second)
	v.SetDefault("registration.min_password_length", 6)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window", time.Minute)
}

// Load reads configuration from v. When configFile is empty, passgate.yaml is
// looked up in the working directory; a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("passgate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres.url is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	switch c.Audit.Sink {
	case SinkNone, SinkMemory:
	case SinkPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres.url is required for the postgres audit sink"))
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required for the kafka audit sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown audit.sink %q", c.Audit.Sink))
	}

	switch c.AppCheck.Mode {
	case AppCheckModeJWKS:
		if c.AppCheck.JWKSURL == "" {
			errs = append(errs, errors.New("appcheck.jwks_url is required in jwks mode"))
		}
	case AppCheckModeHMAC:
		if len(c.AppCheck.HMACSecret) < 32 {
			errs = append(errs, errors.New("appcheck.hmac_secret must be at least 32 bytes in hmac mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown appcheck.mode %q", c.AppCheck.Mode))
	}
	if c.AppCheck.Header == "" {
		errs = append(errs, errors.New("appcheck.header must not be empty"))
	}

	if c.Registration.MinFailureDelay < 0 {
		errs = append(errs, errors.New("registration.min_failure_delay must not be negative"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("ratelimit.requests and ratelimit.window must be positive"))
	}

	return errors.Join(errs...)
}
