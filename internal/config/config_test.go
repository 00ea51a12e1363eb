package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mailvoice/internal/config"
	"github.com/hal9000y/mailvoice/internal/mail"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "env-id")
	t.Setenv("OAUTH_GOOGLE_CLIENT_SECRET", "env-secret")

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	expected := config.Default()
	expected.OAuth.ClientID = "env-id"
	expected.OAuth.ClientSecret = "env-secret"
	assert.Equal(t, expected, cfg)
	assert.NoError(t, cfg.RequireOAuth())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MAILVOICE_SECRET", "from-env")
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "ignored")

	path := writeFile(t, "mailvoice.yaml", `
http_addr: 127.0.0.1:8080
user_id: alice
timezone: Europe/Berlin
oauth:
  client_id: file-id
  client_secret: ${MAILVOICE_SECRET}
store:
  path: /var/lib/mailvoice.db
scheduler:
  spec: "@every 30s"
dispatch:
  list_limit: 50
automation_rules:
  - name: Invoices
    condition: subject:invoice
    action: label:Billing
  - name: Newsletters
    condition: from:news
    action: archive
    disabled: true
`)

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, "file-id", cfg.OAuth.ClientID)
	assert.Equal(t, "from-env", cfg.OAuth.ClientSecret)
	assert.Equal(t, "./data/mailvoice-token.json", cfg.OAuth.TokenFile)
	assert.Equal(t, "/var/lib/mailvoice.db", cfg.Store.Path)
	assert.Equal(t, "@every 30s", cfg.Scheduler.Spec)
	assert.Equal(t, int64(50), cfg.Dispatch.ListLimit)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	assert.Equal(t, []mail.AutomationRule{
		{Name: "Invoices", Condition: "subject:invoice", Action: "label:Billing", IsActive: true},
		{Name: "Newsletters", Condition: "from:news", Action: "archive"},
	}, cfg.AutomationRules())
}

func TestLoadEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set.
	for _, key := range []string{"OAUTH_GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	envFile := writeFile(t, ".env", "OAUTH_GOOGLE_CLIENT_ID=dotenv-id\nOAUTH_GOOGLE_CLIENT_SECRET=dotenv-secret\n")

	cfg, err := config.Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-id", cfg.OAuth.ClientID)
	assert.Equal(t, "dotenv-secret", cfg.OAuth.ClientSecret)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "")
	t.Setenv("OAUTH_GOOGLE_CLIENT_SECRET", "")

	cases := []struct {
		name    string
		content string
		err     string
	}{
		{name: "unknown_field", content: "htp_addr: x\n", err: "yaml.Decode failed"},
		{name: "bad_timezone", content: "timezone: Mars/Olympus\n", err: `timezone "Mars/Olympus"`},
		{name: "bad_limit", content: "dispatch:\n  list_limit: 0\n", err: "dispatch.list_limit must be positive, got 0"},
		{name: "empty_user", content: "user_id: ' '\n", err: "user_id must not be empty"},
		{name: "incomplete_rule", content: "automation_rules:\n  - name: x\n", err: "automation_rules[0]: name, condition and action are required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "c.yaml", tc.content), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Error(t, cfg.RequireOAuth())
}
