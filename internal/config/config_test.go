package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SESSIONFLOW_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, c.Storage.Backend)
	assert.Equal(t, "state", c.Storage.Key)
	assert.Equal(t, 50*time.Millisecond, c.UI.AlertDelay)
	assert.Equal(t, "http://127.0.0.1:8787", c.SDK.BaseURL)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
backend = "redis"
dsn = "redis://localhost:6379/0"

[ui]
alert_delay = "200ms"

[sdk]
client_id = "from-file"
`), 0o600))
	t.Setenv("SESSIONFLOW_SDK_CLIENT_ID", "from-env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, c.Storage.Backend)
	assert.Equal(t, "redis://localhost:6379/0", c.Storage.DSN)
	assert.Equal(t, 200*time.Millisecond, c.UI.AlertDelay)
	assert.Equal(t, "from-env", c.SDK.ClientID)
}

func TestLoad_EnvSelectsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("[storage]\nbackend = \"memory\"\n"), 0o600))
	t.Setenv("SESSIONFLOW_CONFIG", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, c.Storage.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown backend": "[storage]\nbackend = \"etcd\"\n",
		"missing dsn":     "[storage]\nbackend = \"postgres\"\ndsn = \"\"\n",
		"bad level":       "[log]\nlevel = \"chatty\"\n",
		"bad format":      "[log]\nformat = \"xml\"\n",
		"broken toml":     "[storage\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want, err := Load(path)
	require.NoError(t, err)
	want.Storage.Backend = BackendMongo
	want.Storage.DSN = "mongodb://localhost:27017"
	want.UI.AlertDelay = time.Second
	want.Log.Format = "json"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", slog.String("k", "v"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
