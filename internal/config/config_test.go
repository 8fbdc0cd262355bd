package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key FromEnv reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "gemini", "GEMINI_MODEL", "GEMINI_TEMPERATURE", "GENERATION_TIMEOUT",
		"OBJECT_STORE", "WORK_DIR", "S3_BUCKET", "S3_PREFIX", "AWS_REGION", "PORT", "MAX_UPLOAD_MB",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_DEFAULT_LIMIT", "RATE_LIMIT_DEFAULT_WINDOW",
		"RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_IDLE_TIMEOUT", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"api_key": "file-key",
		"model": "gemini-2.5-pro",
		"generation_timeout": "90s",
		"object_store": "s3",
		"s3_bucket": "sites",
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, 90*time.Second, cfg.Timeout())
	assert.Equal(t, StoreS3, cfg.ObjectStore)
	assert.Equal(t, "sites", cfg.S3Bucket)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"generation_timeout": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GENERATION_TIMEOUT", "2m")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_TEMPERATURE", "0.4")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 2*time.Minute, cfg.Timeout())
	assert.Equal(t, 9090, cfg.Port)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 0.0001)
}

func TestFromEnv_LegacyKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("gemini", "legacy-key")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.APIKey)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"GENERATION_TIMEOUT":       "forever",
		"PORT":                     "eighty",
		"MAX_UPLOAD_MB":            "big",
		"GEMINI_TEMPERATURE":       "warm",
		"RATE_LIMIT_ENABLED":       "sometimes",
		"RATE_LIMIT_DEFAULT_LIMIT": "lots",
		"RATE_LIMIT_IDLE_TIMEOUT":  "later",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestFromEnv_RateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.RateLimit.IsEnabled())
	assert.Equal(t, 50, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, Duration(30*time.Second), cfg.RateLimit.DefaultWindow)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
	assert.Empty(t, cfg.RateLimit.Blacklist)
}

func TestLoad_RateLimitDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "25")

	cfg, err := Load(writeConfig(t, `{"rate_limit": {"enabled": false, "blacklist": ["192.0.2.7"]}}`))
	require.NoError(t, err)

	assert.False(t, cfg.RateLimit.IsEnabled())
	assert.Equal(t, 25, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, Duration(time.Minute), cfg.RateLimit.DefaultWindow)
	assert.Equal(t, Duration(time.Hour), cfg.RateLimit.IdleTimeout)
	assert.Equal(t, []string{"192.0.2.7"}, cfg.RateLimit.Blacklist)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("WORK_DIR", "/tmp/env-out")

	cfg, err := Load(writeConfig(t, `{"work_dir": "/tmp/file-out"}`))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "/tmp/file-out", cfg.WorkDir)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, StoreLocal, cfg.ObjectStore)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.RateLimit.IsEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkDir, cfg.WorkDir)
	assert.Empty(t, cfg.APIKey)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.APIKey = "key"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid local", mutate: func(c *Config) {}},
		{name: "valid s3", mutate: func(c *Config) { c.ObjectStore = StoreS3; c.S3Bucket = "b" }},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: "APIKey failed required"},
		{name: "unknown store", mutate: func(c *Config) { c.ObjectStore = "gcs" }, wantErr: "ObjectStore failed oneof"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.ObjectStore = StoreS3 }, wantErr: "S3Bucket failed required_if"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "Port failed lte"},
		{name: "negative timeout", mutate: func(c *Config) { c.GenerationTimeout = Duration(-time.Second) }, wantErr: "GenerationTimeout failed gte"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.DefaultLimit = 0 }, wantErr: "DefaultLimit failed gte"},
		{name: "zero rate window", mutate: func(c *Config) { c.RateLimit.DefaultWindow = 0 }, wantErr: "DefaultWindow failed gt"},
		{name: "whitelist entry not an ip", mutate: func(c *Config) { c.RateLimit.Whitelist = []string{"10.0.0.1", "office"} }, wantErr: "Whitelist[1] failed ip"},
		{name: "temperature out of range", mutate: func(c *Config) {
			temp := float32(3)
			c.Temperature = &temp
		}, wantErr: "Temperature failed lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	temp := float32(0.2)
	cfg := &Config{
		Model:   "custom-model",
		Port:    0,
		Verbose: false,
	}
	defaults := Config{
		APIKey:            "default-key",
		Model:             "default-model",
		GenerationTimeout: Duration(time.Minute),
		Port:              8080,
		Temperature:       &temp,
		Verbose:           true,
	}

	result := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "default-key", result.APIKey)
	assert.Equal(t, "custom-model", result.Model)
	assert.Equal(t, time.Minute, result.Timeout())
	assert.Equal(t, 8080, result.Port)
	assert.Equal(t, &temp, result.Temperature)
	assert.True(t, result.Verbose)
	assert.Empty(t, cfg.APIKey, "receiver must not be modified")
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))

	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`5000000000`)))
	assert.Equal(t, 5*time.Second, time.Duration(d))
}
