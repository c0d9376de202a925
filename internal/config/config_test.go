package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: resale
  password: secret
  name: resale_intel
openai:
  apiKey: sk-test
  model: gpt-4o
  prospectModel: gpt-4o-mini
redis:
  addr: redis.internal:6379
auth:
  apiKeys:
    acme: key-123
rateLimit:
  capacity: 10
  refillRate: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "key-123", cfg.Auth.APIKeys["acme"])
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ProspectModel)
	assert.Equal(t, 60, cfg.OpenAI.TimeoutSeconds)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillRate)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DB_PASSWORD", "env-db-pass")

	path := writeConfig(t, `
openai:
  apiKey: sk-file
database:
  password: file-pass
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "env-db-pass", cfg.Database.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	var cfg Config
	cfg.Database.Host = "db"
	cfg.Database.Port = 3306
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Name = "resale"

	assert.Equal(t, "u:p@tcp(db:3306)/resale?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "host=db port=3306 user=u password=p dbname=resale sslmode=disable", cfg.PostgresDSN())
}
