package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/extraction"
	"github.com/jonathan/resume-site/internal/llm"
	"github.com/jonathan/resume-site/internal/prompts"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage/local"
	"github.com/jonathan/resume-site/internal/testutil"
)

const janeResponse = "--html--<html>Jane</html>--html----css--body{color:red}--css----js--console.log(1)--js--"

type fakeClient struct {
	mu       sync.Mutex
	response string
	err      error
	requests []llm.Request
}

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }
func (f *fakeClient) Close() error  { return nil }

func newTestGenerator(t *testing.T, client llm.Client) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	g := NewGenerator(client, local.New(dir))
	n := 0
	g.NewRunID = func() string {
		n++
		return "run-" + string(rune('0'+n))
	}
	return g, dir
}

func janeDoc() Document {
	return Document{Name: "jane.pdf", Data: testutil.BuildPDF("Jane Doe, Software Engineer")}
}

func TestRun_EndToEnd(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, dir := newTestGenerator(t, client)

	var events []ProgressEvent
	g.OnProgress = func(e ProgressEvent) { events = append(events, e) }

	result, err := g.Run(context.Background(), janeDoc())
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, site.Site{
		Markup: "<html>Jane</html>",
		Style:  "body{color:red}",
		Script: "console.log(1)",
	}, result.Site)
	assert.Equal(t, []State{StateIdle, StateExtracting, StatePrompting, StateParsing, StatePackaged}, result.States)

	for name, want := range map[string]string{
		"index.html": "<html>Jane</html>",
		"style.css":  "body{color:red}",
		"script.js":  "console.log(1)",
	} {
		got, err := os.ReadFile(filepath.Join(dir, "run-1", name))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
	_, err = os.Stat(filepath.Join(dir, "run-1", "portfolio_website.zip"))
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, StatePackaged, events[3].State)
	assert.Equal(t, "run-1", events[3].RunID)
}

func TestRun_SendsInstructionAndExtractedTextVerbatim(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, _ := newTestGenerator(t, client)
	g.Timeout = 0

	doc := janeDoc()
	_, err := g.Run(context.Background(), doc)
	require.NoError(t, err)

	extracted, err := extraction.ExtractBytes(doc.Data)
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, prompts.WebsiteSystem(), req.System)
	assert.Equal(t, extracted.Text, req.User)
	assert.Contains(t, req.User, "Jane Doe, Software Engineer")
	assert.Zero(t, req.Timeout)
}

func TestRun_MissingInputMakesNoModelCall(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, dir := newTestGenerator(t, client)

	result, err := g.Run(context.Background(), Document{Name: "empty.pdf"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInputMissing)
	assert.Empty(t, client.requests)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_ZeroTextDocumentStillPrompts(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, _ := newTestGenerator(t, client)

	_, err := g.Run(context.Background(), Document{Data: testutil.BuildPDF("")})
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Empty(t, strings.TrimSpace(client.requests[0].User))
}

func TestRun_ParseFailureWritesNothing(t *testing.T) {
	client := &fakeClient{response: "--html--<p>x</p>--html----css--a{}--css--"}
	g, dir := newTestGenerator(t, client)

	var last ProgressEvent
	g.OnProgress = func(e ProgressEvent) { last = e }

	_, err := g.Run(context.Background(), janeDoc())
	require.Error(t, err)

	var parseErr *site.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, site.SectionScript, parseErr.Section)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StateParsing, runErr.Stage)
	assert.Equal(t, StateFailed, last.State)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_GenerationFailure(t *testing.T) {
	genErr := &llm.GenerationError{Kind: llm.KindTimeout, Message: "deadline exceeded"}
	client := &fakeClient{err: genErr}
	g, dir := newTestGenerator(t, client)

	_, err := g.Run(context.Background(), janeDoc())
	require.Error(t, err)

	var got *llm.GenerationError
	require.ErrorAs(t, err, &got)
	assert.True(t, got.Timeout())

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StatePrompting, runErr.Stage)
	assert.Equal(t, "run-1", runErr.RunID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_UnreadableDocument(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, _ := newTestGenerator(t, client)

	_, err := g.Run(context.Background(), Document{Data: []byte("plain text, not a pdf")})
	require.Error(t, err)

	var extErr *extraction.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Empty(t, client.requests)
}

func TestRun_Idempotent(t *testing.T) {
	client := &fakeClient{response: janeResponse}
	g, _ := newTestGenerator(t, client)
	doc := janeDoc()

	first, err := g.Run(context.Background(), doc)
	require.NoError(t, err)
	second, err := g.Run(context.Background(), doc)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Site, second.Site)
	assert.Equal(t, first.Package.Archive, second.Package.Archive)
}

func TestRun_UsesUUIDByDefault(t *testing.T) {
	g := NewGenerator(&fakeClient{response: janeResponse}, local.New(t.TempDir()))

	result, err := g.Run(context.Background(), janeDoc())
	require.NoError(t, err)
	assert.Len(t, result.RunID, 36)
}

func TestRun_Unconfigured(t *testing.T) {
	_, err := (&Generator{}).Run(context.Background(), janeDoc())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInputMissing))
}

func TestExtract(t *testing.T) {
	res, err := Extract(janeDoc())
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Jane Doe")

	_, err = Extract(Document{})
	assert.ErrorIs(t, err, ErrInputMissing)
}
