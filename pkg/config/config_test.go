package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("whats-fresh")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "whats_fresh", cfg.DB.DBName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "entry_token", cfg.JWT.CookieName)
	assert.Equal(t, "whats_fresh", cfg.Metrics.Prefix)
	assert.Equal(t, "local", cfg.Blob.Driver)
	assert.Equal(t, 20, cfg.Entry.PageLength)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=password dbname=whats_fresh sslmode=disable", cfg.DB.GetDSN())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/fresh.db")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PAGE_LENGTH", "5")
	t.Setenv("GEOCODER_TIMEOUT", "3s")
	t.Setenv("BLOB_DRIVER", "s3")
	t.Setenv("BLOB_S3_BUCKET", "fresh-images")
	t.Setenv("BLOB_S3_PATH_STYLE", "true")

	cfg, err := Load("whats-fresh")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fresh.db", cfg.DB.GetDSN())
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.Entry.PageLength)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, "fresh-images", cfg.Blob.S3Bucket)
	assert.True(t, cfg.Blob.S3PathStyle)
	assert.NotEmpty(t, cfg.LogConfig())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "page length", env: map[string]string{"PAGE_LENGTH": "0"}},
		{name: "db driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "blob driver", env: map[string]string{"BLOB_DRIVER": "ftp"}},
		{name: "s3 without bucket", env: map[string]string{"BLOB_DRIVER": "s3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("whats-fresh")
			assert.Error(t, err)
		})
	}
}
