package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
timezone: UTC
http:
  addr: ":8081"
source:
  serve: LIVE
  timeout_seconds: 5
refresh:
  policy: none
cache:
  path: /tmp/outage.html
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Addr)
	assert.Equal(t, ServeLive, cfg.Source.Serve)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout())
	assert.Equal(t, RefreshNone, cfg.Refresh.Policy)
	assert.Equal(t, "/tmp/outage.html", cfg.Cache.Path)
	assert.Equal(t, DefaultConfig().Source.URL, cfg.Source.URL, "unset keys keep defaults")
	assert.Equal(t, time.UTC.String(), cfg.Location().String())
}

func TestLoadNormalizesNonPositiveValues(t *testing.T) {
	path := writeConfig(t, `
http:
  stream_interval_seconds: 0
refresh:
  interval_minutes: -3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, time.Minute, cfg.StreamInterval())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("OUTAGE_SOURCE__URL", "https://example.test/outage")
	t.Setenv("OUTAGE_REFRESH__INTERVAL_MINUTES", "3")
	t.Setenv("OUTAGE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/outage", cfg.Source.URL)
	assert.Equal(t, 3*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"serve":    "source:\n  serve: sometimes\n",
		"policy":   "refresh:\n  policy: hourly\n",
		"backend":  "cache:\n  backend: s3\n",
		"redis":    "cache:\n  backend: redis\n",
		"timezone": "timezone: Mars/Olympus\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "http: [unterminated"))
	assert.Error(t, err)
}
