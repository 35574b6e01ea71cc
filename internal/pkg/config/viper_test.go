package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
mail:
  smtp:
    host: smtp.gmail.com
    port: 465
    timeout_seconds: 15
  retry:
    base_delay_ms: 250
modules:
  waitlist:
    notify_operator: true
    operator_emails: " ops@example.com , ,team@example.com"
    empty: ""
instrument:
  trace_sample_ratio: 0.25
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.Equal(t, "smtp.gmail.com", cfg.GetString("mail.smtp.host"))
	assert.Equal(t, 465, cfg.GetInt("mail.smtp.port"))
	assert.Equal(t, 15*time.Second, cfg.GetSecond("mail.smtp.timeout_seconds"))
	assert.Equal(t, 250*time.Millisecond, cfg.GetMillisecond("mail.retry.base_delay_ms"))
	assert.True(t, cfg.GetBool("modules.waitlist.notify_operator"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, []string{"ops@example.com", "team@example.com"}, cfg.GetArray("modules.waitlist.operator_emails"))
	assert.Empty(t, cfg.GetArray("modules.waitlist.empty"))
	assert.Empty(t, cfg.GetArray("modules.waitlist.missing"))
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sample))
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestNewViper_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	t.Setenv("MAIL_SMTP_HOST", "smtp.example.org")

	cfg, err := NewViper(file)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.org", cfg.GetString("mail.smtp.host"))
	assert.Equal(t, 465, cfg.GetInt("mail.smtp.port"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
