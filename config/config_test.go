package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/poker")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("OCR_TIMEOUT", "")
	t.Setenv("RECONCILE_INTERVAL", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, time.Hour, cfg.Reconcile)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("RECONCILE_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile)
}

func TestLoadFileThenEnv(t *testing.T) {
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
db_driver: sqlite
ocr:
  service_url: http://ocr.local
  timeout: 10s
r2:
  account_id: acc
  access_key_id: key
  access_key_secret: secret
  bucket: shots
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "http://ocr.local", cfg.OCR.ServiceURL)
	assert.Equal(t, 10*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.R2.Enabled())
}

func TestLoadValidation(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "mysql")
}

func TestLoadBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("OCR_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR_TIMEOUT")
}
