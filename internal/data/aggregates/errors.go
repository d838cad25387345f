package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code standardizes write-boundary failure semantics across repos and services.
type Code string

const (
	CodeValidation         Code = "validation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePreconditionFailed Code = "precondition_failed"
	CodeRetryable          Code = "retryable"
	CodeInternal           Code = "internal"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrConflict indicates an optimistic concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates a transient failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// Error carries a Code plus the operation that failed.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
	case e.Op != "":
		return fmt.Sprintf("%s (%s)", e.Op, e.Code)
	case e.Message != "":
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure failures from postgres or sqlite into coded errors.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return Wrap(CodeValidation, op, err)
	case errors.Is(err, ErrConflict):
		return Wrap(CodeConflict, op, err)
	case errors.Is(err, ErrRetryable):
		return Wrap(CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return Wrap(CodeConflict, op, err)
		case "23503": // foreign_key_violation
			return Wrap(CodePreconditionFailed, op, err)
		case "40001", "40P01", "55P03": // serialization, deadlock, lock_not_available
			return Wrap(CodeRetryable, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return Wrap(CodeConflict, op, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return Wrap(CodePreconditionFailed, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"):
		return Wrap(CodeRetryable, op, err)
	default:
		return Wrap(CodeInternal, op, err)
	}
}
