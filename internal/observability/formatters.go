// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-site/internal/extraction"
	"github.com/jonathan/resume-site/internal/pipeline"
	"github.com/jonathan/resume-site/internal/site"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines is how many lines of extracted text are shown
	previewLines = 6
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintProgress writes a one-line state change.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.State, event.Message)
}

// PrintExtraction outputs page statistics and the first lines of extracted text.
func (p *Printer) PrintExtraction(name string, result *extraction.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if name != "" {
		sb.WriteString(fmt.Sprintf("Document:   %s\n", name))
	}
	sb.WriteString(fmt.Sprintf("Pages:      %d\n", result.Pages))
	sb.WriteString(fmt.Sprintf("Characters: %d\n", len(result.Text)))
	if len(result.DegradedPages) > 0 {
		sb.WriteString(fmt.Sprintf("No text on: %s\n", formatPages(result.DegradedPages)))
	}

	lines := nonEmptyLines(result.Text)
	if len(lines) == 0 {
		sb.WriteString("\n(no extractable text)")
	} else {
		sb.WriteString("\n")
		count := min(len(lines), previewLines)
		for i := 0; i < count; i++ {
			sb.WriteString(lines[i] + "\n")
		}
		if len(lines) > previewLines {
			sb.WriteString(fmt.Sprintf("... and %d more lines", len(lines)-previewLines))
		}
	}

	p.printBox("EXTRACTED RESUME TEXT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutline outputs the title and sections of a generated page.
func (p *Printer) PrintOutline(outline site.Outline) {
	var sb strings.Builder

	title := outline.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(fmt.Sprintf("Title:     %s\n", title))
	sb.WriteString(fmt.Sprintf("Nav links: %d\n", outline.Links))

	if len(outline.Sections) > 0 {
		sb.WriteString("\nSections:\n")
		count := min(len(outline.Sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", outline.Sections[i]))
		}
		if len(outline.Sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(outline.Sections)-maxItemsToShow))
		}
	}

	p.printBox("SITE PREVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs where a run's artifacts were written.
func (p *Printer) PrintRunSummary(result *pipeline.Result, location string) {
	if result == nil || result.Package == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", result.Duration.Round(time.Millisecond)))
	if location != "" {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", location))
	}
	sb.WriteString("\n")

	for _, f := range result.Site.Files() {
		sb.WriteString(fmt.Sprintf("  %-12s %6d bytes\n", f.Name, len(f.Content)))
	}
	sb.WriteString(fmt.Sprintf("  %-12s %6d bytes\n", "archive", len(result.Package.Archive)))

	if len(result.DegradedPages) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ no text extracted from pages %s", formatPages(result.DegradedPages)))
	}

	p.printBox("✅ PORTFOLIO WEBSITE GENERATED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailure outputs the state a run failed in and why.
func (p *Printer) PrintFailure(err error) {
	if err == nil {
		return
	}

	var sb strings.Builder
	stage := "unknown"
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		stage = string(runErr.Stage)
		if runErr.RunID != "" {
			sb.WriteString(fmt.Sprintf("Run:   %s\n", runErr.RunID))
		}
		err = runErr.Err
	}
	sb.WriteString(fmt.Sprintf("Stage: %s\n\n", stage))

	// Wrap the message across lines so it is not cut off by the box.
	msg := []rune(err.Error())
	width := boxWidth - 4
	for len(msg) > width {
		sb.WriteString(string(msg[:width]) + "\n")
		msg = msg[width:]
	}
	sb.WriteString(string(msg))

	p.printBox("❌ GENERATION FAILED", sb.String())
}

func formatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, n := range pages {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
