package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/pipeline"
)

type generateOptions struct {
	commonOptions
	Resume string
}

var generateOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a portfolio website from a résumé PDF",
	Long: `Extracts the résumé text, sends it to Gemini with the portfolio instructions, splits the reply into
index.html, style.css and script.js, and writes them with portfolio_website.zip under a new run directory.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd.Context(), generateOpts, cmd.OutOrStdout())
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.Resume, "resume", "r", "", "Path to the résumé PDF")
	generateOpts.register(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(ctx context.Context, opts generateOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	printer := observability.NewPrinter(out)

	doc, err := readDocument(opts.Resume)
	if errors.Is(err, pipeline.ErrInputMissing) {
		_, _ = fmt.Fprintln(out, "⚠ Please upload a resume PDF with --resume.")
		return err
	}
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.commonOptions)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	store, location, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	g := pipeline.NewGenerator(client, store)
	g.Timeout = cfg.Timeout()
	g.Verbose = cfg.Verbose
	g.OnProgress = printer.PrintProgress

	result, err := g.Run(ctx, doc)
	if err != nil {
		printer.PrintFailure(err)
		return err
	}

	printer.PrintOutline(result.Outline)
	printer.PrintRunSummary(result, runLocation(cfg, location, result.RunID))
	return nil
}

func runLocation(cfg *config.Config, location, runID string) string {
	if cfg.ObjectStore == config.StoreS3 {
		return strings.TrimSuffix(location, "/") + "/" + runID
	}
	return filepath.Join(location, runID)
}
