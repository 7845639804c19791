package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureConfig = `log_level: debug
monitoring:
  url: https://bank.example.com/rates
  timeout_seconds: 10
email:
  smtp_server: smtp.example.com
  imap_server: imap.example.com
  sender_email: monitor@example.com
  sender_password: file-secret
  recipient_email: user@example.com
store:
  dir: /var/lib/monitor
metrics:
  pushgateway_url: http://pushgateway:9091
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, fixtureConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://bank.example.com/rates", cfg.Monitoring.URL)
	assert.Equal(t, 10, cfg.Monitoring.TimeoutSeconds)

	// Defaults fill what the file leaves out.
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, 993, cfg.Email.IMAPPort)
	assert.Equal(t, "INBOX", cfg.Email.Mailbox)
	assert.Equal(t, "conditions.yaml", cfg.Store.File)
	assert.Equal(t, "/var/lib/monitor", cfg.Store.Dir)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("EMAIL_PASSWORD", "env-secret")
	t.Setenv("EMAIL_SMTP_SERVER", "smtp.override.example.com")

	cfg, err := LoadConfig(writeConfig(t, fixtureConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Email.Password)
	assert.Equal(t, "smtp.override.example.com", cfg.Email.SMTPServer)
	assert.Equal(t, "monitor@example.com", cfg.Email.Sender, "untouched fields keep file values")
}

func TestLoadConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing url",
			content: "email:\n  smtp_server: s\n  sender_email: a\n  recipient_email: b\n",
			wantErr: "monitoring URL is required",
		},
		{
			name:    "missing smtp server",
			content: "monitoring:\n  url: https://x\nemail:\n  sender_email: a\n  recipient_email: b\n",
			wantErr: "SMTP server is required",
		},
		{
			name:    "missing recipient",
			content: "monitoring:\n  url: https://x\nemail:\n  smtp_server: s\n  sender_email: a\n",
			wantErr: "recipient email is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("MONITORING_URL", "https://bank.example.com/rates")
	t.Setenv("EMAIL_SMTP_SERVER", "smtp.example.com")
	t.Setenv("EMAIL_SENDER", "monitor@example.com")
	t.Setenv("EMAIL_RECIPIENT", "user@example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example.com/rates", cfg.Monitoring.URL)
	assert.Equal(t, 30, cfg.Monitoring.TimeoutSeconds)
	assert.Equal(t, "info", cfg.LogLevel)
}
