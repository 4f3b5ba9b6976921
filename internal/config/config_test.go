package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("STORAGE_USE_SSL", "true")
	os.Setenv("INGEST_MAX_FILES_PER_DOCUMENT", "50")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("STORAGE_USE_SSL")
		os.Unsetenv("INGEST_MAX_FILES_PER_DOCUMENT")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 50, cfg.Ingest.MaxFilesPerDocument)
	assert.Equal(t, int64(25<<20), cfg.Ingest.MaxUploadBytes)
	assert.True(t, cfg.Ingest.VersioningEnabled)
}

func TestLoad_CallerStorageFallsBackToElevatedEndpoint(t *testing.T) {
	os.Setenv("STORAGE_ENDPOINT", "minio:9000")
	os.Setenv("STORAGE_BUCKET", "audit-files")
	defer func() {
		os.Unsetenv("STORAGE_ENDPOINT")
		os.Unsetenv("STORAGE_BUCKET")
	}()

	cfg := Load()

	assert.Equal(t, "minio:9000", cfg.CallerStorage.Endpoint)
	assert.Equal(t, "audit-files", cfg.CallerStorage.Bucket)
	assert.False(t, cfg.CallerStorage.Configured())
}

func TestStorageConfig_Configured(t *testing.T) {
	assert.False(t, StorageConfig{}.Configured())
	assert.False(t, StorageConfig{Endpoint: "minio:9000"}.Configured())
	assert.True(t, StorageConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}.Configured())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
