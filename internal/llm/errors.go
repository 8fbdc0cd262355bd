package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// ErrorKind classifies a failed generation call.
type ErrorKind string

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindCanceled means the caller's context was canceled.
	KindCanceled ErrorKind = "canceled"
	// KindService covers network, authentication, quota and other API errors.
	KindService ErrorKind = "service"
	// KindEmptyResponse means the call succeeded but returned no usable text.
	KindEmptyResponse ErrorKind = "empty_response"
)

// GenerationError represents an unrecoverable failure of a single generation call.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call ran out of time.
func (e *GenerationError) Timeout() bool {
	return e.Kind == KindTimeout
}

// classifyError maps an error from the provider SDK to a GenerationError.
func classifyError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	var blocked *genai.BlockedError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &GenerationError{Kind: KindTimeout, Message: "model call timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &GenerationError{Kind: KindCanceled, Message: "model call canceled", Cause: err}
	case errors.As(err, &blocked):
		return &GenerationError{Kind: KindEmptyResponse, Message: "response blocked", Cause: err}
	default:
		return &GenerationError{Kind: KindService, Message: "model call failed", Cause: err}
	}
}
