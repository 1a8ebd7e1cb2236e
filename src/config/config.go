// Package config provides configuration management for the honeypot engagement platform.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the validated, immutable process configuration.
// It is constructed once at startup and passed explicitly to collaborators;
// nothing in this module reads viper directly after LoadConfig returns.
type Config struct {
	// Engagement controls the per-turn state machine and LLM retry behavior.
	Engagement struct {
		// MaxSessionMessages caps turn_number before engaging -> completing.
		MaxSessionMessages int `mapstructure:"max_session_messages"`
		// FeatureEnabled is the kill switch; when false, ProcessMessage returns status "disabled".
		FeatureEnabled bool `mapstructure:"feature_enabled"`
	} `mapstructure:"engagement"`

	// Agent controls the Persona Orchestrator's retry/timeout behavior.
	Agent struct {
		MaxRetries                  int     `mapstructure:"max_retries"`
		DefaultPersona               string  `mapstructure:"default_persona"`
		GenerationTimeoutSeconds     int     `mapstructure:"generation_timeout_seconds"`
		RequestTimeoutSeconds        int     `mapstructure:"request_timeout_seconds"`
		RetryDelaySeconds            int     `mapstructure:"retry_delay_seconds"`
		MaxTurnsRetainedInMemory     int     `mapstructure:"max_turns_retained"`
		TemperatureSequence          []float64 `mapstructure:"temperature_sequence"`
	} `mapstructure:"agent"`

	// Detection tunes the ensemble decay factor; weights are fixed algorithm
	// constants and are not configurable (see src/detection).
	Detection struct {
		DecayAlpha float64 `mapstructure:"decay_alpha"`
	} `mapstructure:"detection"`

	// Redis backs the remote SessionStore and the durable EventBus.
	Redis struct {
		Addr               string `mapstructure:"addr"`
		Password           string `mapstructure:"password"`
		DB                 int    `mapstructure:"db"`
		SessionTTLSeconds  int    `mapstructure:"session_ttl_seconds"`
		KeyPrefix          string `mapstructure:"key_prefix"`
	} `mapstructure:"redis"`

	// Profile controls the durable sender-profile store and S3 archive.
	Profile struct {
		DatabaseDSN               string `mapstructure:"database_dsn"`
		NewEngagementGapSeconds   int    `mapstructure:"new_engagement_gap_seconds"`
		ArchiveS3Bucket           string `mapstructure:"archive_s3_bucket"`
		ArchiveS3Prefix           string `mapstructure:"archive_s3_prefix"`
	} `mapstructure:"profile"`

	// Callback controls the completion-callback dispatcher.
	Callback struct {
		URL               string `mapstructure:"url"`
		MaxRetries        int    `mapstructure:"max_retries"`
		BackoffBaseSeconds int   `mapstructure:"backoff_base_seconds"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
		SigningSecret     string `mapstructure:"signing_secret"`
	} `mapstructure:"callback"`

	// Persona controls where persona definitions are loaded from.
	Persona struct {
		Dir           string `mapstructure:"dir"`
		RemoteSources struct {
			GitHub string `mapstructure:"github"`
			GitLab string `mapstructure:"gitlab"`
		} `mapstructure:"remote_sources"`
	} `mapstructure:"persona"`

	// API controls the HTTP surface.
	API struct {
		ListenAddr  string `mapstructure:"listen_addr"`
		APIKeyHash  string `mapstructure:"api_key_hash"`
	} `mapstructure:"api"`

	// Log controls the zerolog logger.
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// GenerationTimeout returns Agent.GenerationTimeoutSeconds as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Agent.GenerationTimeoutSeconds) * time.Second
}

// CallbackTimeout returns Callback.TimeoutSeconds as a duration.
func (c *Config) CallbackTimeout() time.Duration {
	return time.Duration(c.Callback.TimeoutSeconds) * time.Second
}

// SessionTTL returns Redis.SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Redis.SessionTTLSeconds) * time.Second
}

// DefaultConfig returns the default configuration, matching the env-var
// defaults a complete implementation of this system documents.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Engagement.MaxSessionMessages = 20
	cfg.Engagement.FeatureEnabled = true

	cfg.Agent.MaxRetries = 3
	cfg.Agent.DefaultPersona = "margaret_72"
	cfg.Agent.GenerationTimeoutSeconds = 8
	cfg.Agent.RequestTimeoutSeconds = 15
	cfg.Agent.RetryDelaySeconds = 1
	cfg.Agent.MaxTurnsRetainedInMemory = 10
	cfg.Agent.TemperatureSequence = []float64{0.7, 0.9, 0.4}

	cfg.Detection.DecayAlpha = 0.6

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.SessionTTLSeconds = 3600
	cfg.Redis.KeyPrefix = "honeypot:session:"

	cfg.Profile.DatabaseDSN = "sqlite3://./cipher.db"
	cfg.Profile.NewEngagementGapSeconds = 3600

	cfg.Callback.MaxRetries = 3
	cfg.Callback.BackoffBaseSeconds = 1
	cfg.Callback.TimeoutSeconds = 10

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.Persona.Dir = filepath.Join(homeDir, ".cipher", "personas")
	} else {
		cfg.Persona.Dir = "./personas"
	}

	cfg.API.ListenAddr = ":8080"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"

	return cfg
}

// LoadConfig loads configuration from file, then environment variables,
// layered on top of DefaultConfig.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".cipher")
	v.SetConfigType("yaml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("CIPHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if url := os.Getenv("CIPHER_CALLBACK_URL"); url != "" {
		cfg.Callback.URL = url
	}
	if dsn := os.Getenv("CIPHER_PROFILE_DATABASE_DSN"); dsn != "" {
		cfg.Profile.DatabaseDSN = dsn
	}
	if secret := os.Getenv("CIPHER_CALLBACK_SIGNING_SECRET"); secret != "" {
		cfg.Callback.SigningSecret = secret
	}
	if hash := os.Getenv("CIPHER_API_API_KEY_HASH"); hash != "" {
		cfg.API.APIKeyHash = hash
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations that would make the system misbehave
// rather than fail loudly at startup.
func (c *Config) Validate() error {
	if c.Engagement.MaxSessionMessages <= 0 {
		return fmt.Errorf("engagement.max_session_messages must be positive")
	}
	if c.Agent.MaxRetries <= 0 {
		return fmt.Errorf("agent.max_retries must be positive")
	}
	if len(c.Agent.TemperatureSequence) == 0 {
		return fmt.Errorf("agent.temperature_sequence must not be empty")
	}
	if c.Detection.DecayAlpha < 0 || c.Detection.DecayAlpha > 1 {
		return fmt.Errorf("detection.decay_alpha must be in [0,1]")
	}
	return nil
}

// SaveConfig persists non-secret configuration to the user's home directory.
// API keys and signing secrets are never written to disk; they belong in
// the environment.
func SaveConfig(cfg *Config) error {
	v := viper.New()
	v.SetConfigName(".cipher")
	v.SetConfigType("yaml")

	v.Set("engagement", cfg.Engagement)
	v.Set("agent", cfg.Agent)
	v.Set("detection", cfg.Detection)
	v.Set("redis", cfg.Redis)
	v.Set("profile.new_engagement_gap_seconds", cfg.Profile.NewEngagementGapSeconds)
	v.Set("profile.archive_s3_bucket", cfg.Profile.ArchiveS3Bucket)
	v.Set("profile.archive_s3_prefix", cfg.Profile.ArchiveS3Prefix)
	v.Set("callback.url", cfg.Callback.URL)
	v.Set("callback.max_retries", cfg.Callback.MaxRetries)
	v.Set("callback.backoff_base_seconds", cfg.Callback.BackoffBaseSeconds)
	v.Set("callback.timeout_seconds", cfg.Callback.TimeoutSeconds)
	v.Set("persona.dir", cfg.Persona.Dir)
	v.Set("persona.remote_sources", cfg.Persona.RemoteSources)
	v.Set("api.listen_addr", cfg.API.ListenAddr)
	v.Set("log", cfg.Log)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error getting home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".cipher.yaml")
	return v.WriteConfigAs(configPath)
}
