package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, float64(100), cfg.Security.RateLimit.RPS)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Dataset.DataDir)
	assert.Equal(t, "multi_cloud_usage.csv", cfg.Dataset.DefaultFile)
	assert.Equal(t, int64(32<<20), cfg.Dataset.MaxUploadBytes)
	assert.Equal(t, 0.2, cfg.Dataset.ThresholdFactor)
	assert.Equal(t, 5, cfg.Dataset.MaxReportRows)

	require.NoError(t, cfg.validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Dataset.PreviewRows)
	assert.Equal(t, 0.2, cfg.Dataset.ThresholdFactor)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COSTLENS_SERVER_PORT", "9090")
	t.Setenv("COSTLENS_DATASET_THRESHOLD_FACTOR", "0.5")
	t.Setenv("COSTLENS_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Dataset.ThresholdFactor)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("COSTLENS_SERVER_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"zero upload limit", func(c *Config) { c.Dataset.MaxUploadBytes = 0 }},
		{"negative threshold factor", func(c *Config) { c.Dataset.ThresholdFactor = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeFileEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9999\nlogging:\n  level: debug\ndataset:\n  data_dir: /srv/data\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg := &Config{}
	cfg.Server.Port = 8081 // already set, must survive the merge
	require.NoError(t, mergeFile(path, cfg))

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/data", cfg.Dataset.DataDir)
}

func TestMergeFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	assert.Error(t, mergeFile(path, &Config{}))
}

func TestDefaultDatasetPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("data", "multi_cloud_usage.csv"), cfg.DefaultDatasetPath())

	cfg.Dataset.DefaultFile = "/opt/datasets/usage.csv"
	assert.Equal(t, "/opt/datasets/usage.csv", cfg.DefaultDatasetPath())
}
