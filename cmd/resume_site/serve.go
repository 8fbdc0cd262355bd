package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/llm"
	"github.com/jonathan/resume-site/internal/server"
	"github.com/jonathan/resume-site/internal/server/ratelimit"
)

type serveOptions struct {
	commonOptions
	Port int
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that accepts résumé uploads, streams progress and serves generated archives.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveOpts.Port, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	serveOpts.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	srv, client, err := newServer(ctx, serveOpts)
	if err != nil {
		return err
	}
	defer client.Close()

	return srv.Start(ctx)
}

// newServer resolves configuration and builds the server. The caller owns the
// returned model client.
func newServer(ctx context.Context, opts serveOptions) (*server.Server, llm.Client, error) {
	cfg, err := loadConfig(opts.commonOptions)
	if err != nil {
		return nil, nil, err
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	store, _, err := openStore(ctx, cfg)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		LLM:               client,
		Store:             store,
		GenerationTimeout: cfg.Timeout(),
		MaxUploadMB:       cfg.MaxUploadMB,
		RateLimit:         rateLimitConfig(cfg.RateLimit),
		Verbose:           cfg.Verbose,
	})
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, client, nil
}

// rateLimitConfig applies configured limits on top of the built-in endpoint table.
func rateLimitConfig(rl config.RateLimitConfig) *ratelimit.Config {
	out := ratelimit.DefaultConfig()
	out.Enabled = rl.IsEnabled()
	out.DefaultLimit = rl.DefaultLimit
	out.DefaultWindow = time.Duration(rl.DefaultWindow)
	out.CleanupInterval = time.Duration(rl.CleanupInterval)
	out.IdleTimeout = time.Duration(rl.IdleTimeout)
	out.Whitelist = ratelimit.ClientSet(rl.Whitelist)
	out.Blacklist = ratelimit.ClientSet(rl.Blacklist)
	return out
}
