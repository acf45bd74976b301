package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("TRIPBITE_JWT_SECRET", "s3cret")
	t.Setenv("TRIPBITE_DRIVER", "memory")
	t.Setenv("TRIPBITE_PLACES_API_KEY", "key")
	t.Setenv("TRIPBITE_SESSION_TTL", "2h")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.Driver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "key", cfg.Places.APIKey)
	assert.Equal(t, "restaurant", cfg.Places.Keyword)
	assert.Equal(t, 1.0, cfg.Weights.Like)
	assert.Equal(t, 2.0, cfg.Weights.Dislike)
}

func TestSessionTTLDefaultsToNoExpiry(t *testing.T) {
	t.Setenv("TRIPBITE_JWT_SECRET", "s3cret")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Zero(t, cfg.SessionTTL)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripbite.yaml")
	content := `
jwt_secret: from-file
db_path: /tmp/trip.db
places:
  keyword: 맛집
weights:
  like: 1.5
  dislike: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "/tmp/trip.db", cfg.DBPath)
	assert.Equal(t, "맛집", cfg.Places.Keyword)
	assert.Equal(t, 1.5, cfg.Weights.Like)
	assert.Equal(t, 3.0, cfg.Weights.Dislike)
}

func TestValidate(t *testing.T) {
	t.Setenv("TRIPBITE_JWT_SECRET", "")
	_, err := Load(viper.New(), "")
	assert.ErrorContains(t, err, "jwt_secret")

	t.Setenv("TRIPBITE_JWT_SECRET", "s3cret")
	t.Setenv("TRIPBITE_DRIVER", "postgres")
	_, err = Load(viper.New(), "")
	assert.ErrorContains(t, err, "unknown storage driver")

	t.Setenv("TRIPBITE_DRIVER", "memory")
	t.Setenv("TRIPBITE_WEIGHTS_LIKE", "3")
	_, err = Load(viper.New(), "")
	assert.ErrorContains(t, err, "dislike weight")

	t.Setenv("TRIPBITE_WEIGHTS_LIKE", "1")
	t.Setenv("TRIPBITE_SESSION_TTL", "-1h")
	_, err = Load(viper.New(), "")
	assert.ErrorContains(t, err, "session_ttl")

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
