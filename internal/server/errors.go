package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-site/internal/extraction"
	"github.com/jonathan/resume-site/internal/llm"
	"github.com/jonathan/resume-site/internal/pipeline"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
)

// Error codes returned in the "error" field of failure responses.
const (
	CodeInputMissing      = "input_missing"
	CodeInvalidRequest    = "invalid_request"
	CodeUploadTooLarge    = "upload_too_large"
	CodeExtractionFailure = "extraction_failure"
	CodeGenerationFailure = "generation_failure"
	CodeGenerationTimeout = "generation_timeout"
	CodeParseFailure      = "parse_failure"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal_error"
)

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// NewErrorResponse builds the envelope for err.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:   ErrorCode(err),
		Message: err.Error(),
	}
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		resp.RunID = runErr.RunID
		resp.Stage = string(runErr.Stage)
		resp.Message = runErr.Err.Error()
	}
	return resp
}

// ErrorCode returns the machine-readable code for an error
func ErrorCode(err error) string {
	var (
		maxBytesErr   *http.MaxBytesError
		extractionErr *extraction.ExtractionError
		generationErr *llm.GenerationError
		parseErr      *site.ParseError
	)

	switch {
	case errors.Is(err, pipeline.ErrInputMissing):
		return CodeInputMissing
	case errors.As(err, &maxBytesErr):
		return CodeUploadTooLarge
	case errors.Is(err, errInvalidUpload), errors.Is(err, storage.ErrInvalidKey):
		return CodeInvalidRequest
	case errors.As(err, &extractionErr):
		return CodeExtractionFailure
	case errors.As(err, &generationErr):
		if generationErr.Timeout() {
			return CodeGenerationTimeout
		}
		return CodeGenerationFailure
	case errors.As(err, &parseErr):
		return CodeParseFailure
	case errors.Is(err, storage.ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeInputMissing, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeExtractionFailure, CodeParseFailure:
		return http.StatusUnprocessableEntity
	case CodeGenerationTimeout:
		return http.StatusGatewayTimeout
	case CodeGenerationFailure:
		return http.StatusBadGateway
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
