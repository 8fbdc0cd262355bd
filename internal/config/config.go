// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-site/internal/llm"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = llm.DefaultModel
	// DefaultWorkDir is where the local object store writes run artifacts.
	DefaultWorkDir = "./output"
	// DefaultPort is the HTTP listen port.
	DefaultPort = 8080
	// DefaultMaxUploadMB caps multipart résumé uploads.
	DefaultMaxUploadMB = 10

	StoreLocal = "local"
	StoreS3    = "s3"
)

// Config represents the application configuration. Values come from the
// environment (after .env is loaded) and may be overridden by a JSON file.
type Config struct {
	// Model
	APIKey            string   `json:"api_key,omitempty" validate:"required"`
	Model             string   `json:"model,omitempty" validate:"required"`
	Temperature       *float32 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	GenerationTimeout Duration `json:"generation_timeout,omitempty" validate:"gte=0"`

	// Storage
	ObjectStore string `json:"object_store,omitempty" validate:"oneof=local s3"`
	WorkDir     string `json:"work_dir,omitempty" validate:"required_if=ObjectStore local"`
	S3Bucket    string `json:"s3_bucket,omitempty" validate:"required_if=ObjectStore s3"`
	S3Prefix    string `json:"s3_prefix,omitempty"`
	AWSRegion   string `json:"aws_region,omitempty"`

	// Server
	Port        int `json:"port,omitempty" validate:"gte=1,lte=65535"`
	MaxUploadMB int `json:"max_upload_mb,omitempty" validate:"gte=1"`

	RateLimit RateLimitConfig `json:"rate_limit"`

	Verbose bool `json:"verbose,omitempty"`
}

// RateLimitConfig holds the per-client request limits applied by the server.
type RateLimitConfig struct {
	// Enabled is a pointer so a file can switch limiting off over an enabled default.
	Enabled         *bool    `json:"enabled,omitempty"`
	DefaultLimit    int      `json:"default_limit,omitempty" validate:"gte=1"`
	DefaultWindow   Duration `json:"default_window,omitempty" validate:"gt=0"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" validate:"gte=0"`
	IdleTimeout     Duration `json:"idle_timeout,omitempty" validate:"gte=0"`
	Whitelist       []string `json:"whitelist,omitempty" validate:"dive,ip"`
	Blacklist       []string `json:"blacklist,omitempty" validate:"dive,ip"`
}

// IsEnabled reports whether limiting is on. Unset means on.
func (r RateLimitConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

func (r RateLimitConfig) merge(defaults RateLimitConfig) RateLimitConfig {
	if r.Enabled == nil {
		r.Enabled = defaults.Enabled
	}
	if r.DefaultLimit == 0 {
		r.DefaultLimit = defaults.DefaultLimit
	}
	if r.DefaultWindow == 0 {
		r.DefaultWindow = defaults.DefaultWindow
	}
	if r.CleanupInterval == 0 {
		r.CleanupInterval = defaults.CleanupInterval
	}
	if r.IdleTimeout == 0 {
		r.IdleTimeout = defaults.IdleTimeout
	}
	if len(r.Whitelist) == 0 {
		r.Whitelist = defaults.Whitelist
	}
	if len(r.Blacklist) == 0 {
		r.Blacklist = defaults.Blacklist
	}
	return r
}

// Duration is a time.Duration that reads from JSON as a string like "90s".
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Model:       DefaultModel,
		ObjectStore: StoreLocal,
		WorkDir:     DefaultWorkDir,
		Port:        DefaultPort,
		MaxUploadMB: DefaultMaxUploadMB,
		RateLimit: RateLimitConfig{
			DefaultLimit:    1000,
			DefaultWindow:   Duration(time.Minute),
			CleanupInterval: Duration(5 * time.Minute),
			IdleTimeout:     Duration(time.Hour),
		},
	}
}

// FromEnv reads configuration from environment variables. Unset keys are left
// empty so they can be filled by MergeWithDefaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:      firstEnv("GEMINI_API_KEY", "gemini"),
		Model:       os.Getenv("GEMINI_MODEL"),
		ObjectStore: os.Getenv("OBJECT_STORE"),
		WorkDir:     os.Getenv("WORK_DIR"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Prefix:    os.Getenv("S3_PREFIX"),
		AWSRegion:   os.Getenv("AWS_REGION"),
	}

	if err := envDuration("GENERATION_TIMEOUT", &cfg.GenerationTimeout); err != nil {
		return nil, err
	}
	if err := envInt("PORT", &cfg.Port); err != nil {
		return nil, err
	}
	if err := envInt("MAX_UPLOAD_MB", &cfg.MaxUploadMB); err != nil {
		return nil, err
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		temp, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid GEMINI_TEMPERATURE: %w", err)
		}
		t := float32(temp)
		cfg.Temperature = &t
	}

	rl := &cfg.RateLimit
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
		}
		rl.Enabled = &enabled
	}
	if err := envInt("RATE_LIMIT_DEFAULT_LIMIT", &rl.DefaultLimit); err != nil {
		return nil, err
	}
	for key, dst := range map[string]*Duration{
		"RATE_LIMIT_DEFAULT_WINDOW":   &rl.DefaultWindow,
		"RATE_LIMIT_CLEANUP_INTERVAL": &rl.CleanupInterval,
		"RATE_LIMIT_IDLE_TIMEOUT":     &rl.IdleTimeout,
	} {
		if err := envDuration(key, dst); err != nil {
			return nil, err
		}
	}
	rl.Whitelist = envList("RATE_LIMIT_WHITELIST")
	rl.Blacklist = envList("RATE_LIMIT_BLACKLIST")

	return cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: the JSON file at path (if any) takes
// precedence over the environment, which takes precedence over defaults.
func Load(path string) (*Config, error) {
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *env
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = file.MergeWithDefaults(merged)
	}

	result := merged.MergeWithDefaults(Defaults())
	return &result, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %s", describeValidationError(err))
	}
	return nil
}

// describeValidationError extracts the first validation error message.
func describeValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		if ve.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", ve.Field(), ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("%s failed %s", ve.Field(), ve.Tag())
	}
	return err.Error()
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.ObjectStore == "" {
		result.ObjectStore = defaults.ObjectStore
	}
	if result.WorkDir == "" {
		result.WorkDir = defaults.WorkDir
	}
	if result.S3Bucket == "" {
		result.S3Bucket = defaults.S3Bucket
	}
	if result.S3Prefix == "" {
		result.S3Prefix = defaults.S3Prefix
	}
	if result.AWSRegion == "" {
		result.AWSRegion = defaults.AWSRegion
	}

	// Numeric fields: use default if zero
	if result.GenerationTimeout == 0 {
		result.GenerationTimeout = defaults.GenerationTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.Temperature == nil {
		result.Temperature = defaults.Temperature
	}

	result.RateLimit = result.RateLimit.merge(defaults.RateLimit)

	// Bool fields: cannot distinguish unset from false, so only true propagates
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Timeout returns the generation timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.GenerationTimeout)
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
