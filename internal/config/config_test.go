package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9090"
mysql:
  dsn: "root:pw@tcp(db:3306)/portal"
jwt:
  access_secret: "a"
  refresh_secret: "r"
kafka:
  brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "root:pw@tcp(db:3306)/portal", cfg.MySQL.DSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Feed.DiscoverySize)
	assert.Equal(t, "@every 5m", cfg.Reconcile.Cron)
}

func TestLoadRequiresSecrets(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
