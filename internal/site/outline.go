package site

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Outline is a short preview of a generated page: its title and visible structure.
type Outline struct {
	Title    string   `json:"title,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Links    int      `json:"nav_links"`
}

// BuildOutline reads the generated markup and summarizes it for display.
// Markup that cannot be parsed yields an empty outline.
func BuildOutline(markup string) Outline {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Outline{}
	}

	outline := Outline{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	seen := make(map[string]bool)
	doc.Find("section, h1, h2").Each(func(_ int, sel *goquery.Selection) {
		name := sectionName(sel)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		outline.Sections = append(outline.Sections, name)
	})

	outline.Links = doc.Find("nav a").Length()
	return outline
}

// sectionName prefers an element's id and falls back to its collapsed text for headings.
func sectionName(sel *goquery.Selection) string {
	if id, ok := sel.Attr("id"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	if goquery.NodeName(sel) == "section" {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}
