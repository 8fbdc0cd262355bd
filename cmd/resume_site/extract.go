package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/pipeline"
)

type extractOptions struct {
	Resume string
	Raw    bool
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the text extracted from a résumé PDF",
	Long:  `Extracts text page by page exactly as it would be sent to the model. No model call is made.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExtract(extractOpts, cmd.OutOrStdout())
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.Resume, "resume", "r", "", "Path to the résumé PDF")
	extractCmd.Flags().BoolVar(&extractOpts.Raw, "raw", false, "Print only the extracted text")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(opts extractOptions, out io.Writer) error {
	doc, err := readDocument(opts.Resume)
	if errors.Is(err, pipeline.ErrInputMissing) {
		_, _ = fmt.Fprintln(out, "⚠ Please upload a resume PDF with --resume.")
		return err
	}
	if err != nil {
		return err
	}

	result, err := pipeline.Extract(doc)
	if err != nil {
		return err
	}

	if opts.Raw {
		_, err := io.WriteString(out, result.Text)
		return err
	}
	observability.NewPrinter(out).PrintExtraction(doc.Name, result)
	return nil
}
