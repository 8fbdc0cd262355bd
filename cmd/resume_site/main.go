// Package main provides the entry point for the résumé-to-portfolio generator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "resume_site",
	Short:        "Generate a portfolio website from a résumé PDF",
	Long:         "resume_site extracts the text of a résumé PDF, asks Gemini to write a single-page portfolio site, and packages index.html, style.css and script.js into portfolio_website.zip.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
