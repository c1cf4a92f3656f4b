package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 8080
database:
  driver: postgres
  host: localhost
  port: 5432
  user: legis
  password: secret
  name: legisequity
redis:
  url: redis://localhost:6379/0
  ttlSeconds: 60
llm:
  apiKey: sk-test
  model: grok-3
  thinkingTags: "<think>,</think>"
  jsonMode: true
  maxBills: 100
  ephemeralImageHosts:
    - fal.media
auth:
  users:
    - apiKey: key-1
      name: ops
      role: admin
rateLimit:
  capacity: 50
  refillRate: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 100, cfg.LLM.MaxBills)
	assert.True(t, cfg.LLM.JSONMode)
	assert.Equal(t, []string{"fal.media"}, cfg.LLM.EphemeralImageHosts)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "admin", cfg.Auth.Users[0].Role)
	assert.Equal(t, 50, cfg.RateLimit.Capacity)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("LLM_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	dsn := cfg.PostgresDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=legisequity")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestMySQLDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "legis:secret@tcp(localhost:5432)/legisequity?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestThinkTagPair(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	start, end := cfg.ThinkTagPair()
	assert.Equal(t, "<think>", start)
	assert.Equal(t, "</think>", end)

	cfg.LLM.ThinkingTags = ""
	start, end = cfg.ThinkTagPair()
	assert.Equal(t, "<think>", start)
	assert.Equal(t, "</think>", end)
}

func TestLLMConfigured(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.True(t, cfg.LLMConfigured())

	cfg.LLM.APIKey = ""
	assert.False(t, cfg.LLMConfigured())
}
