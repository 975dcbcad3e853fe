package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigs(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

const validPublic = `
port: 8080
log_level: info
bcrypt_cost: 12
session_ttl_hours: 24
verification_ttl_hours: 24
reset_ttl_minutes: 60
lockout_threshold: 5
lockout_minutes: 15
resend_cooldown_minutes: 5
rate_limits:
  register: {limit: 3, window_minutes: 15}
  login: {limit: 5, window_minutes: 15}
  verify: {limit: 5, window_minutes: 60}
  resend: {limit: 3, window_minutes: 60}
`

const validPrivate = `
jwt_key: "secret"
pg:
  host: localhost
  port: 5432
  user: app
  password: pw
  dbname: sportlink
`

func TestMustLoad(t *testing.T) {
	dir := writeConfigs(t, validPublic, validPrivate)

	cfg := MustLoad(dir)

	assert.Equal(t, "secret", cfg.JwtKey())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.VerificationTTL())
	assert.Equal(t, time.Hour, cfg.ResetTTL())
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration())
	assert.Equal(t, 5*time.Minute, cfg.ResendCooldown())
	assert.Equal(t, 3, cfg.Public.RateLimits.Register.Limit)
	assert.Equal(t, 15*time.Minute, cfg.Public.RateLimits.Register.Window())
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// jwt_key intentionally missing
	dir := writeConfigs(t, validPublic, "pg: {host: localhost, dbname: sportlink}\n")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing required field, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestMustLoad_MissingFile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for missing config folder, got none")
		}
	}()

	_ = MustLoad(t.TempDir())
}
