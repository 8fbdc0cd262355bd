// Package site turns a model response into the three files of a static website.
package site

// Section identifies one of the three delimited parts of a generated response.
type Section string

// Sections in the order they must appear in a response.
const (
	SectionMarkup Section = "html"
	SectionStyle  Section = "css"
	SectionScript Section = "js"
)

// Delimiters bounding each section. Every delimiter opens and closes its section.
const (
	MarkupDelimiter = "--html--"
	StyleDelimiter  = "--css--"
	ScriptDelimiter = "--js--"
)

// Artifact file names inside a packaged site.
const (
	MarkupFile = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "script.js"
)

// Site holds the three generated artifacts.
type Site struct {
	Markup string `json:"html"`
	Style  string `json:"css"`
	Script string `json:"js"`
}

// Files returns the artifacts keyed by file name in a fixed order.
func (s Site) Files() []File {
	return []File{
		{Name: MarkupFile, ContentType: "text/html; charset=utf-8", Content: s.Markup},
		{Name: StyleFile, ContentType: "text/css; charset=utf-8", Content: s.Style},
		{Name: ScriptFile, ContentType: "text/javascript; charset=utf-8", Content: s.Script},
	}
}

// File is a single named artifact.
type File struct {
	Name        string
	ContentType string
	Content     string
}

// ContentType returns the MIME type of a known artifact file name.
func ContentType(name string) (string, bool) {
	for _, f := range (Site{}).Files() {
		if f.Name == name {
			return f.ContentType, true
		}
	}
	return "", false
}
