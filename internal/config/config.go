package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-yaml/yaml"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

const EnvPrefix = "MISBLOCK_"

type Config struct {
	Ledger domain.Config `yaml:"ledger" envPrefix:"LEDGER_"`
	Server Server        `yaml:"server" envPrefix:"SERVER_"`
	Token  Token         `yaml:"token" envPrefix:"TOKEN_"`
	Kafka  Kafka         `yaml:"kafka" envPrefix:"KAFKA_"`
	Log    Log           `yaml:"log" envPrefix:"LOG_"`
}

type Server struct {
	Listen          string `yaml:"listen" env:"LISTEN"`
	PostgresDsn     string `yaml:"postgresDsn" env:"POSTGRES_DSN"`
	RedisAddr       string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword   string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisDB         int    `yaml:"redisDB" env:"REDIS_DB"`
	MemcachedAddr   string `yaml:"memcachedAddr" env:"MEMCACHED_ADDR"`
	RankingCacheTTL int    `yaml:"rankingCacheTTL" env:"RANKING_CACHE_TTL"` // seconds
	EnableTrace     bool   `yaml:"enableTrace" env:"ENABLE_TRACE"`
	TraceEndpoint   string `yaml:"traceEndpoint" env:"TRACE_ENDPOINT"`
}

type Token struct {
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT"`
	APIKey         string `yaml:"apiKey" env:"API_KEY"`
	Timeout        int    `yaml:"timeout" env:"TIMEOUT"`                // seconds
	ResendInterval int    `yaml:"resendInterval" env:"RESEND_INTERVAL"` // seconds
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"BROKERS"`
	GroupID string   `yaml:"groupID" env:"GROUP_ID"`
	Topic   string   `yaml:"topic" env:"TOPIC"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type Log struct {
	Level      string `yaml:"level" env:"LEVEL"`
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMB" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"maxAgeDays" env:"MAX_AGE_DAYS"`
}

func (s Server) RankingTTL() time.Duration {
	return time.Duration(s.RankingCacheTTL) * time.Second
}

func (t Token) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

func (t Token) ResendEvery() time.Duration {
	return time.Duration(t.ResendInterval) * time.Second
}

// Load reads the yaml file at path, when it exists, then applies MISBLOCK_*
// environment overrides and defaults.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		file, err := os.Open(path)
		if err == nil {
			defer file.Close()
			err = yaml.NewDecoder(file).Decode(&config)
			if err != nil {
				return Config{}, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.RankingCacheTTL == 0 {
		c.Server.RankingCacheTTL = 30
	}
	if c.Token.Timeout == 0 {
		c.Token.Timeout = 3
	}
	if c.Token.ResendInterval == 0 {
		c.Token.ResendInterval = 30
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "misblock"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "misblock.token.transfer"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
}

func (c Config) Validate() error {
	accounts := map[string]string{
		"ledger.contract":      c.Ledger.Contract,
		"ledger.admin":         c.Ledger.Admin,
		"ledger.tokenContract": c.Ledger.TokenContract,
	}
	for key, name := range accounts {
		if !misblock.IsValidName(name) {
			return fmt.Errorf("%s: invalid account name %q", key, name)
		}
	}
	if c.Ledger.AuthKey != "" {
		if _, err := misblock.NormalizePublicKey(c.Ledger.AuthKey); err != nil {
			return fmt.Errorf("ledger.authKey: %w", err)
		}
	}
	return nil
}
