package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, "/uploads/resumes", cfg.UploadURLPrefix)
	assert.False(t, cfg.AuthRequired)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("RATE_LIMIT_PER_MIN", "7")
	t.Setenv("CLIENT_URL", "https://app.example.com/")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg := Load()
	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 7, cfg.RateLimitPerMin)
	assert.Equal(t, "https://app.example.com", cfg.ClientURL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("AUTH_REQUIRED", "maybe")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, 300, cfg.RateLimitPerMin)
}

func TestValidate(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("RATE_LIMIT_BACKEND", "")
	base := Load()
	require.NoError(t, base.Validate())

	prod := base
	prod.Env = "production"
	assert.ErrorContains(t, prod.Validate(), "JWT_SECRET")

	prod.JWTSecret = "real-secret"
	assert.NoError(t, prod.Validate())

	prod.StoreBackend = "memory"
	assert.ErrorContains(t, prod.Validate(), "STORE_BACKEND=memory")

	s3 := base
	s3.StorageBackend = "s3"
	assert.ErrorContains(t, s3.Validate(), "S3_BUCKET")

	bad := base
	bad.StorageBackend = "ftp"
	bad.RateLimitBackend = "carrier-pigeon"
	err := bad.Validate()
	assert.ErrorContains(t, err, "STORAGE_BACKEND")
	assert.ErrorContains(t, err, "RATE_LIMIT_BACKEND")
}
