// Package config loads the server configuration from defaults, an optional
// YAML file and CONFUSENSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Name        string        `mapstructure:"name"`
	Version     string        `mapstructure:"version"`
	Mode        string        `mapstructure:"mode"`
	Port        int           `mapstructure:"port"`
	LogLevel    string        `mapstructure:"log_level"`
	CORSOrigins []string      `mapstructure:"cors_origins"`
	Database    DBConfig      `mapstructure:"database"`
	Redis       RedisConfig   `mapstructure:"redis"`
	Relay       Relay         `mapstructure:"relay"`
	SessionTTL  time.Duration `mapstructure:"session_cache_ttl"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Topic    string `mapstructure:"topic"`
}

// Load reads .env (if present), then config/config.<CONFIG_ENV>.yaml (if present),
// then the environment. Missing files are not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Str("module", "config").Msg("no .env file")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix("CONFUSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	relay := DefaultRelay()

	v.SetDefault("name", "ConfuSense Backend")
	v.SetDefault("version", "4.0.0")
	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("session_cache_ttl", DefaultSessionCacheTTL)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.name", "confusense")
	v.SetDefault("database.user", "confusense")
	v.SetDefault("database.password", "confusense")
	v.SetDefault("database.sslmode", DefaultDBSSLMode)
	v.SetDefault("database.max_conns", DefaultMaxConns)
	v.SetDefault("database.min_conns", DefaultMinConns)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.topic", DefaultEventTopic)

	v.SetDefault("relay.write_wait", relay.WriteWait)
	v.SetDefault("relay.pong_wait", relay.PongWait)
	v.SetDefault("relay.ping_period", relay.PingPeriod)
	v.SetDefault("relay.max_message_size", relay.MaxMessageSize)
	v.SetDefault("relay.send_buffer", relay.SendBuffer)
	v.SetDefault("relay.persist_timeout", relay.PersistTimeout)
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive, got %d", c.Port)
	}
	if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
		return errors.New("database.host, database.name and database.user are required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Relay.PingPeriod >= c.Relay.PongWait {
		return fmt.Errorf("relay.ping_period (%s) must be shorter than relay.pong_wait (%s)",
			c.Relay.PingPeriod, c.Relay.PongWait)
	}
	if c.Relay.SendBuffer <= 0 {
		return errors.New("relay.send_buffer must be positive")
	}
	switch c.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("mode must be debug, release or test, got %q", c.Mode)
	}
	return nil
}
