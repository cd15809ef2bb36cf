package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withValues(t *testing.T) {
	t.Helper()
	mu.RLock()
	saved := values
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		values = saved
		mu.Unlock()
	})
}

func TestLoadFromFilesLayering(t *testing.T) {
	withValues(t)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","db_driver":"postgres","cache_ttl":30}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nAPP_PORT=9100\nS3_BUCKET=\"catalogs\"\n"), 0o644))

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "9100", get("APP_PORT", ""), ".env overrides app.json")
	assert.Equal(t, "postgres", get("DB_DRIVER", ""))
	assert.Equal(t, "catalogs", get("S3_BUCKET", ""))
	assert.Equal(t, "30", get("CACHE_TTL", ""))
}

func TestLoadFromFilesMissingFilesKeepDefaults(t *testing.T) {
	withValues(t)

	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env")))
	assert.Equal(t, defaultAppPort, get("APP_PORT", ""))
	assert.Equal(t, defaultDatabaseDriver, get("DB_DRIVER", ""))
}

func TestProcessEnvironmentWins(t *testing.T) {
	withValues(t)
	t.Setenv("APP_PORT", "7777")

	mu.Lock()
	values["APP_PORT"] = "9100"
	mu.Unlock()

	assert.Equal(t, "7777", get("APP_PORT", ""))
}

func TestDatabaseDSNFollowsDriver(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DB_DRIVER", "mysql")
	assert.Equal(t, defaultMySQLDSN, DatabaseDSN())

	t.Setenv("DB_DRIVER", "oracle")
	assert.Equal(t, defaultDatabaseDriver, DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())

	t.Setenv("DATABASE_DSN", "file::memory:")
	assert.Equal(t, "file::memory:", DatabaseDSN())
}

func TestCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	assert.Equal(t, 90*time.Second, CacheTTL())

	t.Setenv("CACHE_TTL", "45")
	assert.Equal(t, 45*time.Second, CacheTTL())

	t.Setenv("CACHE_TTL", "soon")
	assert.Equal(t, defaultCacheTTL, CacheTTL())
}
