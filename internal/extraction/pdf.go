package extraction

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Result holds the text of a document along with per-page bookkeeping.
type Result struct {
	// Text is the concatenation of every page's text in page order.
	Text string
	// Pages is the number of pages in the document.
	Pages int
	// DegradedPages lists 1-based page numbers that yielded no text because extraction failed.
	DegradedPages []int
}

// ExtractText reads every page of the PDF behind r and concatenates their plain text.
// A page that cannot be decoded contributes an empty string instead of failing the document.
// The reader is only read from; it is never closed.
func ExtractText(r io.ReaderAt, size int64) (*Result, error) {
	reader, err := openReader(r, size)
	if err != nil {
		return nil, err
	}

	result := &Result{Pages: reader.NumPage()}
	var text bytes.Buffer
	for i := 1; i <= result.Pages; i++ {
		content, err := pageText(reader, i)
		if err != nil {
			result.DegradedPages = append(result.DegradedPages, i)
			continue
		}
		text.WriteString(content)
	}
	result.Text = text.String()
	return result, nil
}

// ExtractBytes is ExtractText over an in-memory document.
func ExtractBytes(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Message: "document is empty"}
	}
	return ExtractText(bytes.NewReader(data), int64(len(data)))
}

// openReader guards pdf.NewReader, which panics on some malformed cross-reference tables.
func openReader(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader = nil
			err = &ExtractionError{Message: "unreadable PDF", Cause: fmt.Errorf("%v", rec)}
		}
	}()

	reader, err = pdf.NewReader(r, size)
	if err != nil {
		return nil, &ExtractionError{Message: "unreadable PDF", Cause: err}
	}
	return reader, nil
}

func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", num)
	}
	return page.GetPlainText(nil)
}
