package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Enabled())
	assert.False(t, cfg.Register.ExpectedIncludesMovements)
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, 30, cfg.Redis.TTLSeconds)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_HOST", "db")
	v.Set("DB_PASSWORD", "p@ss:word")
	v.Set("REGISTER_EXPECTED_INCLUDES_MOVEMENTS", "true")
	v.Set("REDIS_ADDR", "localhost:6379")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.Enabled())
	assert.True(t, cfg.Register.ExpectedIncludesMovements)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.DB.ConnectionString(), "p%40ss%3Aword@db:5432/multitienda")
}

func TestFromViper_PuertoInvalido(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "0")
	_, err := fromViper(v)
	assert.Error(t, err)
}
