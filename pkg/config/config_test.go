package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "arrivalTime <= 60", cfg.Condition.TimeRule)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadFromEnvironment(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TAYOBELL_LISTEN":          ":9000",
		"TAYOBELL_STORAGE":         "redis",
		"TAYOBELL_REDIS_DATABASE":  "3",
		"TAYOBELL_WATCH_STATIONS":  "111000001, 111000002,,",
		"TAYOBELL_TRACKER_REFRESH": "30s",
		"TAYOBELL_BUS_API_KEY":     "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Redis.Database)
	assert.Equal(t, []string{"111000001", "111000002"}, cfg.Tracker.Stations)
	assert.Equal(t, 30*time.Second, cfg.Tracker.RefreshRate)
	assert.Equal(t, "secret", cfg.Feed.ServiceKey)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadFromFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	contents := `
listen: ":4000"
feed:
  timeout: 2s
storage:
  backend: mongo
tracker:
  stations: ["123"]
condition:
  timeRule: "arrivalTime <= 90"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadFrom(map[string]string{
		"TAYOBELL_CONFIG": path,
		"TAYOBELL_LISTEN": ":5000",
	})
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Listen, "environment wins over the file")
	assert.Equal(t, 2*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, StorageMongo, cfg.Storage.Backend)
	assert.Equal(t, []string{"123"}, cfg.Tracker.Stations)
	assert.Equal(t, "arrivalTime <= 90", cfg.Condition.TimeRule)
	assert.Equal(t, "remainingStops <= 1", cfg.Condition.StopRule)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := LoadFrom(map[string]string{"TAYOBELL_STORAGE": "postgres"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"TAYOBELL_REDIS_DATABASE": "zero"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"TAYOBELL_CONFIG": filepath.Join(t.TempDir(), "missing.yml")})
	assert.Error(t, err)
}
