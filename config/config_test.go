package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAnalysisPort, cfg.Server.AnalysisPort)
	assert.Equal(t, DefaultNewsPort, cfg.Server.NewsPort)
	assert.Equal(t, []string{DefaultNewsOrigin}, cfg.Server.NewsOrigins)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, DefaultStageTimeout, cfg.Pipeline.StageTimeout)
	assert.Equal(t, DefaultEventsTopic, cfg.Events.Topic)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  analysis_port: 9000
llm:
  model: from-file
storage:
  backend: redis
  redis_ttl: 2h
pipeline:
  stage_timeout: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "from-env")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.AnalysisPort)
	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Storage.RedisTTL)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Brokers)
}

func TestLoadFrontendURLKeepsLocalOrigin(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultNewsOrigin, "https://app.example.com"}, cfg.Server.NewsOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: true},
		{name: "s3 with bucket", mutate: func(c *Config) { c.Storage.Backend = "s3"; c.Storage.S3Bucket = "b" }},
		{name: "zero rpm", mutate: func(c *Config) { c.Concurrency.RPM = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
