package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps aggregate error codes onto HTTP statuses. The message is the aggregate's
// user-facing message, not the full op chain.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	msg := errors.New(domainagg.MessageOf(err))
	switch code := domainagg.CodeOf(err); code {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, string(code), msg)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, string(code), msg)
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation:
		return New(http.StatusConflict, string(code), msg)
	case domainagg.CodePreconditionFailed:
		return New(http.StatusPreconditionFailed, string(code), msg)
	case domainagg.CodeGenerationFailed:
		return New(http.StatusBadGateway, string(code), msg)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, string(code), msg)
	default:
		return New(http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
