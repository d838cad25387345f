package apierr

import (
	"fmt"
	"net/http"
)

// Error pairs an HTTP status and a stable code with the underlying cause.
// Message, when set, is what the client sees; otherwise the cause is shown
// for 4xx and a generic text for 5xx.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
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

// Public is the message safe to return to a client.
func (e *Error) Public() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.Status >= 500 || e.Status == 0:
		return http.StatusText(http.StatusInternalServerError)
	case e.Err != nil:
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func WithMessage(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}
