package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, 24, cfg.Web.JwtExpire)
	assert.Equal(t, "postgres", cfg.Database.Type)
	// relative upload dir resolves under the workdir
	assert.Equal(t, filepath.Join(cfg.System.Workdir, "uploads"), cfg.Web.UploadDir)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "cafeorder.yml")
	content := `
system:
  workdir: /tmp/cafeorder
web:
  port: 9090
  secret: file-secret
database:
  host: db.internal
  name: cafe
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "/tmp/cafeorder", cfg.System.Workdir)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "file-secret", cfg.Web.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "cafe", cfg.Database.Name)
	// values absent from the file keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, filepath.Join("/tmp/cafeorder", "uploads"), cfg.Web.UploadDir)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CAFEORDER_WEB_PORT", "8088")
	t.Setenv("CAFEORDER_WEB_SECRET", "env-secret")
	t.Setenv("CAFEORDER_DB_PWD", "env-pass")
	t.Setenv("CAFEORDER_SYSTEM_DEBUG", "false")

	cfg := LoadConfig("")
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "env-secret", cfg.Web.Secret)
	assert.Equal(t, "env-pass", cfg.Database.Passwd)
	assert.False(t, cfg.System.Debug)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg := LoadConfig("/nonexistent/cafeorder.yml")
	assert.Equal(t, DefaultAppConfig.Web.Port, cfg.Web.Port)
}
