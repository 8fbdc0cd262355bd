package site

import "fmt"

// ParseFailure classifies why a response did not match the section grammar.
type ParseFailure string

const (
	// FailureMissing means the section's delimiter never appears where it is expected.
	FailureMissing ParseFailure = "missing_section"
	// FailureUnterminated means the opening delimiter has no closing partner.
	FailureUnterminated ParseFailure = "unterminated_section"
	// FailureRepeated means the delimiter appears more than twice in the section's scope.
	FailureRepeated ParseFailure = "repeated_delimiter"
)

// ParseError represents a response that lacks the expected delimiter structure.
type ParseError struct {
	Section Section
	Reason  ParseFailure
	// Count is how many times the delimiter occurred in the section's scope.
	Count int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s section: %s (delimiter seen %d times)", e.Section, e.Reason, e.Count)
}
