package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg := testConfig()
		cfg.port = 8080
		return cfg
	}

	require.NoError(t, valid().validate())

	for name, mutate := range map[string]func(*Config){
		"cert without key":  func(c *Config) { c.tlsCert = "cert.pem" },
		"port out of range": func(c *Config) { c.port = 70000 },
		"zero player ttl":   func(c *Config) { c.playerTimeout = 0 },
		"negative session":  func(c *Config) { c.sessionTimeout = -time.Second },
		"zero burst":        func(c *Config) { c.rateBurst = 0 },
		"too many question": func(c *Config) { c.quizQuestions = 51 },
		"zero answer time":  func(c *Config) { c.questionTime = 0 },
		"zero oracle ttl":   func(c *Config) { c.oracleTimeout = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("PARTYHOST_PORT", "9090")
	t.Setenv("PARTYHOST_SESSION_TIMEOUT", "5m")
	t.Setenv("PARTYHOST_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.allowedOrigins)
	assert.Equal(t, defaultGeminiModel, cfg.geminiModel)
	require.NoError(t, cfg.validate())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "party.env")
	require.NoError(t, os.WriteFile(path, []byte("PARTYHOST_GEMINI_MODEL=from-file\n"), 0o600))

	t.Setenv("PARTYHOST_ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("PARTYHOST_GEMINI_MODEL") })

	require.NoError(t, loadEnvFile())

	cfg := &Config{}
	newCmd(cfg)
	assert.Equal(t, "from-file", cfg.geminiModel)

	t.Setenv("PARTYHOST_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, loadEnvFile())
}
