package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"MONGO_URI": "mongodb://localhost:27017"}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "collect_and_cruise", cfg.MongoDB)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
}

func TestFromEnv_MongoURLFallback(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"MONGO_URL": "mongodb://db:27017"}))
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
}

func TestFromEnv_MissingMongo(t *testing.T) {
	_, err := FromEnv(envOf(nil))
	assert.Error(t, err)
}

func TestFromEnv_MemoryDriverNeedsNoMongo(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"STORE_DRIVER": "memory"}))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"STORE_DRIVER": "memory", "APP_ENV": "production"}))
	assert.Error(t, err)
}

func TestFromEnv_CORSList(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"STORE_DRIVER": "memory",
		"CORS_ORIGIN":  "https://a.example, https://b.example,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnv_BadTTL(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"STORE_DRIVER": "memory", "TOKEN_TTL": "forever"}))
	assert.Error(t, err)
}
