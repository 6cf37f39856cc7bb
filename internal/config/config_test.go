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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  api_key: secret
database:
  host: db.internal
  name: faceid
  user: faceid
  password: pw
minio:
  endpoint: minio:9000
  access_key: ak
  secret_key: sk
  bucket: faces
nats:
  url: nats://nats:4222
recognition:
  models_dir: /opt/models
  match_threshold: 85
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "faces", cfg.MinIO.Bucket)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
	assert.Equal(t, 85.0, cfg.Recognition.MatchThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 20, cfg.Database.MaxConns)
	assert.Equal(t, "default", cfg.Recognition.Collection)
	assert.Equal(t, 90.0, cfg.Recognition.MatchThreshold)
	assert.Equal(t, 0.5, cfg.Recognition.DetectionThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACEID_SERVER_PORT", "7070")
	t.Setenv("FACEID_API_KEY", "from-env")
	t.Setenv("FACEID_DB_HOST", "env-db")
	t.Setenv("FACEID_MATCH_THRESHOLD", "95.5")

	path := writeConfig(t, `
server:
  port: 9090
  api_key: from-file
database:
  host: file-db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Server.APIKey)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, 95.5, cfg.Recognition.MatchThreshold)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5433, Name: "n", User: "u", Password: "p"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", d.DSN())
}
