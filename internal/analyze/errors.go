package analyze

import "fmt"

// ErrorCode classifies user-visible failures. Anything not covered by a
// code degrades inside the pipeline instead of surfacing.
type ErrorCode string

const (
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	CodeInternal         ErrorCode = "INTERNAL"
)

// Error carries a code alongside the message so the HTTP layer can map it
// to a status without string matching.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func extractionFailed(msg string, err error) *Error {
	return &Error{Code: CodeExtractionFailed, Message: msg, Err: err}
}

func internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}
