package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Success - Defaults", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "")
		t.Setenv("ALGORITHM", "")
		t.Setenv("ORIGINS", "")
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "HS256", cfg.Algorithm)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	})

	t.Run("Success - Lists and overrides", func(t *testing.T) {
		t.Setenv("ORIGINS", "https://a.example, https://b.example")
		t.Setenv("ALGORITHM", "hs512")
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
		assert.Equal(t, "HS512", cfg.Algorithm)
		assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	})

	t.Run("Error - Bad token ttl", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "soon")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := &Config{
		SecretKey:   "0123456789abcdef0123456789abcdef",
		Algorithm:   "HS256",
		DatabaseURL: "postgres://localhost/storefront",
	}
	assert.NoError(t, valid.Validate())

	short := *valid
	short.SecretKey = "short"
	assert.Error(t, short.Validate())

	alg := *valid
	alg.Algorithm = "RS256"
	assert.Error(t, alg.Validate())

	noDB := *valid
	noDB.DatabaseURL = ""
	assert.Error(t, noDB.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "shop", DBPort: "5433"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5433 sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DSN())
}
