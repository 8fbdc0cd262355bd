// Package pipeline drives a résumé through extraction, generation, parsing and packaging.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-site/internal/extraction"
	"github.com/jonathan/resume-site/internal/llm"
	"github.com/jonathan/resume-site/internal/packaging"
	"github.com/jonathan/resume-site/internal/prompts"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
)

// ProgressEvent represents a state change during a run
type ProgressEvent struct {
	RunID   string    `json:"run_id"`
	State   State     `json:"state"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
	Content any       `json:"content,omitempty"`
}

// ProgressCallback is called on every state change
type ProgressCallback func(event ProgressEvent)

// Document is an uploaded résumé.
type Document struct {
	Name string
	Data []byte
}

// Generator runs documents through the pipeline.
type Generator struct {
	LLM        llm.Client
	Packager   *packaging.Packager
	Timeout    time.Duration
	OnProgress ProgressCallback
	Verbose    bool

	// NewRunID overrides run ID generation in tests.
	NewRunID func() string
}

// NewGenerator creates a Generator writing artifacts to store.
func NewGenerator(client llm.Client, store storage.ObjectStore) *Generator {
	return &Generator{
		LLM:      client,
		Packager: packaging.New(store),
	}
}

// Result is the outcome of a successful run.
type Result struct {
	RunID         string             `json:"run_id"`
	Document      string             `json:"document"`
	Pages         int                `json:"pages"`
	DegradedPages []int              `json:"degraded_pages,omitempty"`
	TextLength    int                `json:"text_length"`
	Site          site.Site          `json:"-"`
	Outline       site.Outline       `json:"outline"`
	Package       *packaging.Package `json:"package"`
	States        []State            `json:"states"`
	Duration      time.Duration      `json:"duration"`
}

// run tracks the state of a single in-flight execution.
type run struct {
	id     string
	state  State
	states []State
	gen    *Generator
}

func (r *run) advance(to State, message string, content any) error {
	if err := ValidateTransition(r.state, to); err != nil {
		return err
	}
	r.state = to
	r.states = append(r.states, to)
	if r.gen.Verbose {
		log.Printf("[pipeline] run %s: %s: %s", r.id, to, message)
	}
	if r.gen.OnProgress != nil {
		r.gen.OnProgress(ProgressEvent{
			RunID:   r.id,
			State:   to,
			Message: message,
			At:      time.Now(),
			Content: content,
		})
	}
	return nil
}

// fail moves the run to failed and wraps err with the state it failed in.
func (r *run) fail(err error) error {
	stage := r.state
	_ = r.advance(StateFailed, err.Error(), nil)
	return &RunError{RunID: r.id, Stage: stage, Err: err}
}

// Run executes one full generation for doc. Runs never share output: each gets a
// fresh run ID and its artifacts are stored under that ID.
func (g *Generator) Run(ctx context.Context, doc Document) (*Result, error) {
	if len(doc.Data) == 0 {
		return nil, &RunError{Stage: StateIdle, Err: ErrInputMissing}
	}
	if g.LLM == nil || g.Packager == nil {
		return nil, fmt.Errorf("generator is not configured")
	}

	start := time.Now()
	r := &run{id: g.runID(), state: StateIdle, states: []State{StateIdle}, gen: g}

	if err := r.advance(StateExtracting, fmt.Sprintf("Extracting text from %s", displayName(doc)), nil); err != nil {
		return nil, err
	}
	extracted, err := extraction.ExtractBytes(doc.Data)
	if err != nil {
		return nil, r.fail(err)
	}
	if len(extracted.DegradedPages) > 0 {
		log.Printf("[pipeline] run %s: %d of %d pages yielded no text", r.id, len(extracted.DegradedPages), extracted.Pages)
	}

	if err := r.advance(StatePrompting, fmt.Sprintf("Extracted %d characters from %d pages", len(extracted.Text), extracted.Pages), nil); err != nil {
		return nil, err
	}
	response, err := g.LLM.Generate(ctx, llm.Request{
		System:  prompts.WebsiteSystem(),
		User:    extracted.Text,
		Timeout: g.Timeout,
	})
	if err != nil {
		return nil, r.fail(err)
	}

	if err := r.advance(StateParsing, fmt.Sprintf("Received %d characters from %s", len(response), g.LLM.Model()), nil); err != nil {
		return nil, err
	}
	parsed, err := site.Parse(response)
	if err != nil {
		return nil, r.fail(err)
	}
	pkg, err := g.Packager.Write(ctx, r.id, parsed)
	if err != nil {
		return nil, r.fail(err)
	}

	outline := site.BuildOutline(parsed.Markup)
	if err := r.advance(StatePackaged, fmt.Sprintf("Packaged %s", pkg.ArchiveKey), outline); err != nil {
		return nil, err
	}

	return &Result{
		RunID:         r.id,
		Document:      doc.Name,
		Pages:         extracted.Pages,
		DegradedPages: extracted.DegradedPages,
		TextLength:    len(extracted.Text),
		Site:          parsed,
		Outline:       outline,
		Package:       pkg,
		States:        r.states,
		Duration:      time.Since(start),
	}, nil
}

// Extract returns the text of doc without calling the model.
func Extract(doc Document) (*extraction.Result, error) {
	if len(doc.Data) == 0 {
		return nil, ErrInputMissing
	}
	return extraction.ExtractBytes(doc.Data)
}

func (g *Generator) runID() string {
	if g.NewRunID != nil {
		return g.NewRunID()
	}
	return uuid.NewString()
}

func displayName(doc Document) string {
	if doc.Name == "" {
		return "upload"
	}
	return doc.Name
}
