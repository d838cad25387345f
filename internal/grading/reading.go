package grading

import (
	"encoding/json"
	"fmt"
)

type readingSubmission struct {
	Completed bool `json:"completed"`
}

// gradeReading is all or nothing: marking the reading completed scores 100.
func gradeReading(submission, _ json.RawMessage) (Result, error) {
	if err := validate("reading_submission", submission, ErrInvalidSubmission); err != nil {
		return Result{}, err
	}
	var s readingSubmission
	if err := json.Unmarshal(submission, &s); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	if s.Completed {
		return newResult(100), nil
	}
	return newResult(0), nil
}
