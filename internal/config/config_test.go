package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
ledger:
  contract: mis.system
  admin: misadmin
  tokenContract: mis.token
  audience: misblock
server:
  listen: ":9000"
  postgresDsn: "host=localhost user=postgres dbname=misblock"
  redisAddr: "localhost:6379"
token:
  endpoint: "http://token:8080"
kafka:
  brokers: ["kafka:9092"]
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "mis.system", conf.Ledger.Contract)
	assert.Equal(t, "misadmin", conf.Ledger.Admin)
	assert.Equal(t, ":9000", conf.Server.Listen)
	assert.Equal(t, "http://token:8080", conf.Token.Endpoint)
	assert.True(t, conf.Kafka.Enabled())
	assert.Equal(t, "misblock.token.transfer", conf.Kafka.Topic)
	assert.Equal(t, 30, conf.Server.RankingCacheTTL)
	assert.Equal(t, "debug", conf.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MISBLOCK_LEDGER_ADMIN", "ops")
	t.Setenv("MISBLOCK_SERVER_LISTEN", ":7000")
	t.Setenv("MISBLOCK_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("MISBLOCK_TOKEN_TIMEOUT", "10")

	conf, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "ops", conf.Ledger.Admin)
	assert.Equal(t, "mis.system", conf.Ledger.Contract)
	assert.Equal(t, ":7000", conf.Server.Listen)
	assert.Equal(t, []string{"a:9092", "b:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, 10, conf.Token.Timeout)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("MISBLOCK_LEDGER_CONTRACT", "mis.system")
	t.Setenv("MISBLOCK_LEDGER_ADMIN", "misadmin")
	t.Setenv("MISBLOCK_LEDGER_TOKEN_CONTRACT", "mis.token")

	conf, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", conf.Server.Listen)
	assert.False(t, conf.Kafka.Enabled())
	assert.Equal(t, 30*time.Second, conf.Token.ResendEvery())
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(writeConfig(t, "ledger:\n  contract: Bad\n  admin: misadmin\n  tokenContract: mis.token\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, sample+"  file: [\n"))
	assert.Error(t, err)

	t.Setenv("MISBLOCK_SERVER_REDIS_DB", "zero")
	_, err = Load(writeConfig(t, sample))
	assert.ErrorContains(t, err, "parse config")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", slog.String("module", "test"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "misblock", line["service"])
	assert.Equal(t, "test", line["module"])

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
