// Package extraction pulls plain text out of uploaded résumé documents.
package extraction

import "fmt"

// ExtractionError represents a document that could not be opened as a PDF at all.
// Individual unreadable pages never produce this error.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
