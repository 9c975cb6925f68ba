package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const sampleConfig = `
server:
  addr: ":8080"
  read_timeout: 5s
database:
  username: "shop"
  password: "secret"
  host: "db"
  port: "3307"
  database: "shopdb"
redis:
  addr: "cache:6379"
jwt:
  token_ttl: 2h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "./uploads", cfg.Server.UploadsDir)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "shop:secret@tcp(db:3307)/shopdb?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.DSN())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_DATABASE_PASSWORD", "from-env")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSQLLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, SQLLogLevel("silent"))
	assert.Equal(t, logger.Info, SQLLogLevel("INFO"))
	assert.Equal(t, logger.Warn, SQLLogLevel("unknown"))
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed("seed.yaml")
	require.NoError(t, err)
	require.Len(t, seed.Categories, 4)
	assert.Equal(t, "Smartphone", seed.Categories[0].Name)
	assert.Equal(t, "fa-mobile-alt", seed.Categories[0].Icon)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - slug: nameless\n"), 0o644))
	_, err = LoadSeed(path)
	assert.Error(t, err)
}
