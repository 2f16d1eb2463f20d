package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplanner/homeplanner/internal/auth"
)

const sampleHCL = `
listen_addr  = ":9090"
timezone     = "UTC"
cors_origins = ["http://localhost:5173", "http://localhost:3000"]

upstream {
  base_url = "http://planner-api:8000"
  timeout  = "5s"
}

access_code "Parent" {
  role = "admin"
  hash = "$2a$10$abcdefghijklmnopqrstuv"
}

access_code "Kid" {
  role   = "member"
  hash   = "$2a$10$vutsrqponmlkjihgfedcba"
  active = false
}

rollbar {
  token       = "rb-token"
  environment = "production"
}
`

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseAndResolve(t *testing.T) {
	fc, err := parse([]byte(sampleHCL), "planner.hcl")
	require.NoError(t, err)

	cfg, err := resolve(fc, envMap(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "http://planner-api:8000", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "rb-token", cfg.RollbarToken)
	assert.Equal(t, "production", cfg.Environment)

	require.Len(t, cfg.AccessCodes, 2)
	assert.Equal(t, AccessCode{Label: "Parent", Role: "admin", Hash: "$2a$10$abcdefghijklmnopqrstuv", Active: true}, cfg.AccessCodes[0])
	assert.False(t, cfg.AccessCodes[1].Active)

	codes := cfg.AuthCodes()
	assert.Equal(t, auth.RoleAdmin, codes[0].Role)
	assert.Equal(t, auth.RoleMember, codes[1].Role)

	assert.NoError(t, Validate(cfg))
}

func TestResolve_EnvOverrides(t *testing.T) {
	fc, err := parse([]byte(sampleHCL), "planner.hcl")
	require.NoError(t, err)

	cfg, err := resolve(fc, envMap(map[string]string{
		"JWT_SECRET":        "s3cret",
		"LISTEN_ADDR":       ":7000",
		"PLANNER_API_URL":   "https://api.example.com",
		"PLANNER_API_TOKEN": "svc",
		"CORS_ORIGINS":      "https://a.example.com, https://b.example.com",
		"ROLLBAR_TOKEN":     "override",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "svc", cfg.APIToken)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "override", cfg.RollbarToken)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := resolve(&fileConfig{}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultAPIURL, cfg.APIBaseURL)
	assert.Equal(t, defaultAPITimeout, cfg.APITimeout)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, "development", cfg.Environment)
}

func TestResolve_BadTimezone(t *testing.T) {
	_, err := resolve(&fileConfig{Timezone: "Mars/Olympus"}, envMap(nil))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := parse([]byte(`upstream { timeout = "5s" }`), "planner.hcl")
	assert.Error(t, err, "base_url is required")
}

func TestValidate(t *testing.T) {
	cfg, err := resolve(&fileConfig{}, envMap(nil))
	require.NoError(t, err)

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")

	cfg.JWTSecret = "s3cret"
	cfg.AccessCodes = []AccessCode{{Label: "Guest", Role: "guest", Hash: "x"}}
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Role")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleHCL), 0600))
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://planner-api:8000", cfg.APIBaseURL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.NoError(t, err, "a missing file falls back to defaults")
}
