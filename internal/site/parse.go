package site

import "strings"

type rule struct {
	section   Section
	delimiter string
}

// grammar lists the sections in response order.
var grammar = []rule{
	{section: SectionMarkup, delimiter: MarkupDelimiter},
	{section: SectionStyle, delimiter: StyleDelimiter},
	{section: SectionScript, delimiter: ScriptDelimiter},
}

// Parse splits a model response into markup, style and script.
//
// Sections are consumed left to right. A section opens at the first occurrence
// of its delimiter after the previous section closed and ends at the next
// occurrence. Segment content is returned verbatim, so later delimiters quoted
// inside an earlier section, or earlier delimiters quoted inside a later one,
// do not affect the split. A delimiter that shows up again before the next
// section opens (or anywhere after the script closes) is rejected.
func Parse(response string) (Site, error) {
	var segments [3]string
	rest := response
	for i, r := range grammar {
		next := ""
		if i+1 < len(grammar) {
			next = grammar[i+1].delimiter
		}
		content, tail, err := take(rest, r, next)
		if err != nil {
			return Site{}, err
		}
		segments[i] = content
		rest = tail
	}
	return Site{Markup: segments[0], Style: segments[1], Script: segments[2]}, nil
}

// take returns the content between the opening and closing occurrence of
// r.delimiter in scope and the text after the close. Repeats are counted only
// up to the point where the next delimiter opens its own section.
func take(scope string, r rule, next string) (string, string, error) {
	open := strings.Index(scope, r.delimiter)
	if open < 0 {
		return "", "", &ParseError{Section: r.section, Reason: FailureMissing, Count: 0}
	}
	body := scope[open+len(r.delimiter):]
	end := strings.Index(body, r.delimiter)
	if end < 0 {
		return "", "", &ParseError{Section: r.section, Reason: FailureUnterminated, Count: 1}
	}
	content, tail := body[:end], body[end+len(r.delimiter):]

	span := tail
	if next != "" {
		if i := strings.Index(tail, next); i >= 0 {
			span = tail[:i]
		}
	}
	if extra := strings.Count(span, r.delimiter); extra > 0 {
		return "", "", &ParseError{Section: r.section, Reason: FailureRepeated, Count: 2 + extra}
	}
	return content, tail, nil
}
