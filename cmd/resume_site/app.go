package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/llm"
	"github.com/jonathan/resume-site/internal/pipeline"
	"github.com/jonathan/resume-site/internal/storage"
	"github.com/jonathan/resume-site/internal/storage/local"
	s3store "github.com/jonathan/resume-site/internal/storage/s3"
)

// commonOptions are the flags shared by commands that call the model.
type commonOptions struct {
	ConfigPath string
	APIKey     string
	Model      string
	WorkDir    string
	Store      string
	Timeout    time.Duration
	Verbose    bool
}

func (o *commonOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&o.APIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVarP(&o.Model, "model", "m", "", "Gemini model (defaults to GEMINI_MODEL or "+config.DefaultModel+")")
	cmd.Flags().StringVarP(&o.WorkDir, "out", "o", "", "Directory for generated runs when using the local store (defaults to WORK_DIR or ./output)")
	cmd.Flags().StringVar(&o.Store, "store", "", "Object store for artifacts: local or s3 (defaults to OBJECT_STORE or local)")
	cmd.Flags().DurationVar(&o.Timeout, "timeout", 0, "Bound on the model call, e.g. 90s (0 means no limit)")
	cmd.Flags().BoolVarP(&o.Verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadConfig merges the config file, environment and flags, flags winning.
func loadConfig(opts commonOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := config.Config{
		APIKey:            opts.APIKey,
		Model:             opts.Model,
		WorkDir:           opts.WorkDir,
		ObjectStore:       opts.Store,
		GenerationTimeout: config.Duration(opts.Timeout),
		Verbose:           opts.Verbose,
	}
	merged := overrides.MergeWithDefaults(*cfg)

	if merged.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// newClient builds the model client. Tests replace it with a fake.
var newClient = func(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	llmConfig := llm.DefaultGeminiConfig().WithModel(cfg.Model)
	if cfg.Temperature != nil {
		llmConfig = llmConfig.WithTemperature(*cfg.Temperature)
	}
	return llm.NewClient(ctx, llmConfig, cfg.APIKey)
}

// openStore returns the configured object store and a human-readable location.
func openStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, string, error) {
	switch cfg.ObjectStore {
	case config.StoreS3:
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open s3 store: %w", err)
		}
		return store, fmt.Sprintf("s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return local.New(cfg.WorkDir), cfg.WorkDir, nil
	}
}

// readDocument loads the résumé at path. An empty path is reported as missing input.
func readDocument(path string) (pipeline.Document, error) {
	if path == "" {
		return pipeline.Document{}, pipeline.ErrInputMissing
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("failed to read resume %s: %w", path, err)
	}
	return pipeline.Document{Name: path, Data: data}, nil
}
