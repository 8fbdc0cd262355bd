package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WellFormed(t *testing.T) {
	response := "--html--A--html----css--B--css----js--C--js--"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, "A", got.Markup)
	assert.Equal(t, "B", got.Style)
	assert.Equal(t, "C", got.Script)
}

func TestParse_EndToEndResponse(t *testing.T) {
	response := "--html--<html>Jane</html>--html----css--body{color:red}--css----js--console.log(1)--js--"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, Site{
		Markup: "<html>Jane</html>",
		Style:  "body{color:red}",
		Script: "console.log(1)",
	}, got)
}

func TestParse_LaterDelimitersInsideMarkupDoNotLeak(t *testing.T) {
	markup := "<html><!-- styles live in --css-- and scripts in --js-- --><body>Hi</body></html>"
	response := "--html--" + markup + "--html--\n--css--p{margin:0}--css--\n--js--init()--js--"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, markup, got.Markup)
	assert.Equal(t, "p{margin:0}", got.Style)
	assert.Equal(t, "init()", got.Script)
}

func TestParse_ScriptDelimiterInsideStyle(t *testing.T) {
	response := "--html--H--html----css--/* see --js-- */--css----js--S--js--"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, "/* see --js-- */", got.Style)
	assert.Equal(t, "S", got.Script)
}

func TestParse_EarlierDelimitersInsideScript(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "style delimiter", script: "/* see --css-- */"},
		{name: "markup delimiter", script: "x='--html--'"},
		{name: "both", script: "el.innerHTML = '--html--'; // --css--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := "--html--A--html----css--B--css----js--" + tt.script + "--js--"

			got, err := Parse(response)
			require.NoError(t, err)

			assert.Equal(t, "A", got.Markup)
			assert.Equal(t, "B", got.Style)
			assert.Equal(t, tt.script, got.Script)
		})
	}
}

func TestParse_MarkupDelimiterInsideStyle(t *testing.T) {
	response := "--html--A--html----css--/* from --html-- */--css----js--C--js--"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, "/* from --html-- */", got.Style)
	assert.Equal(t, "C", got.Script)
}

func TestParse_PreservesWhitespaceAndIgnoresSurroundingText(t *testing.T) {
	response := "Here is your website:\n--html--\n<h1>Hi</h1>\n--html--\n\n--css--\nh1{}\n--css--\n--js--\nrun()\n--js--\nEnjoy!"

	got, err := Parse(response)
	require.NoError(t, err)

	assert.Equal(t, "\n<h1>Hi</h1>\n", got.Markup)
	assert.Equal(t, "\nh1{}\n", got.Style)
	assert.Equal(t, "\nrun()\n", got.Script)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		section  Section
		reason   ParseFailure
	}{
		{
			name:     "empty response",
			response: "",
			section:  SectionMarkup,
			reason:   FailureMissing,
		},
		{
			name:     "missing markup",
			response: "--css--B--css----js--C--js--",
			section:  SectionMarkup,
			reason:   FailureMissing,
		},
		{
			name:     "missing style",
			response: "--html--A--html----js--C--js--",
			section:  SectionStyle,
			reason:   FailureMissing,
		},
		{
			name:     "missing script",
			response: "--html--A--html----css--B--css--",
			section:  SectionScript,
			reason:   FailureMissing,
		},
		{
			name:     "unterminated markup",
			response: "--html--A--css--B--css----js--C--js--",
			section:  SectionMarkup,
			reason:   FailureUnterminated,
		},
		{
			name:     "unterminated script",
			response: "--html--A--html----css--B--css----js--C",
			section:  SectionScript,
			reason:   FailureUnterminated,
		},
		{
			name:     "style before markup",
			response: "--css--B--css----html--A--html----js--C--js--",
			section:  SectionStyle,
			reason:   FailureMissing,
		},
		{
			name:     "script before style",
			response: "--html--A--html----js--C--js----css--B--css--",
			section:  SectionScript,
			reason:   FailureMissing,
		},
		{
			name:     "repeated markup delimiter",
			response: "--html--A--html----html----css--B--css----js--C--js--",
			section:  SectionMarkup,
			reason:   FailureRepeated,
		},
		{
			name:     "repeated style delimiter",
			response: "--html--A--html----css--B--css--x--css----js--C--js--",
			section:  SectionStyle,
			reason:   FailureRepeated,
		},
		{
			name:     "repeated script delimiter",
			response: "--html--A--html----css--B--css----js--C--js----js--",
			section:  SectionScript,
			reason:   FailureRepeated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.response)
			require.Error(t, err)
			assert.Equal(t, Site{}, got)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.section, parseErr.Section)
			assert.Equal(t, tt.reason, parseErr.Reason)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Section: SectionStyle, Reason: FailureMissing}
	assert.Equal(t, "parse error: css section: missing_section (delimiter seen 0 times)", err.Error())
}

func TestSite_Files(t *testing.T) {
	files := Site{Markup: "m", Style: "s", Script: "j"}.Files()
	require.Len(t, files, 3)

	assert.Equal(t, MarkupFile, files[0].Name)
	assert.Equal(t, "m", files[0].Content)
	assert.Equal(t, StyleFile, files[1].Name)
	assert.Equal(t, "s", files[1].Content)
	assert.Equal(t, ScriptFile, files[2].Name)
	assert.Equal(t, "j", files[2].Content)
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType("style.css")
	assert.True(t, ok)
	assert.Equal(t, "text/css; charset=utf-8", ct)

	_, ok = ContentType("../secret")
	assert.False(t, ok)
}
