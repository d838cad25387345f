// Package grading scores activity submissions. Everything here is pure:
// no I/O, and identical inputs always produce identical results.
package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PassThreshold is the minimum score that counts as a pass.
const PassThreshold = 70

const (
	TypeQuiz         = "quiz"
	TypeCodeExercise = "code_exercise"
	TypeReading      = "reading"
)

var (
	ErrUnsupportedActivityType = errors.New("unsupported activity type")
	// ErrInvalidSubmission is a client error: the submission does not match
	// the shape the activity type expects.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrInvalidContent means the stored activity content is malformed.
	ErrInvalidContent = errors.New("invalid activity content")
)

type Result struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

func newResult(score int) Result {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Result{Score: score, Passed: score >= PassThreshold}
}

// percent is floor(n*100/total); zero total scores 0.
func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return n * 100 / total
}

// NormalizeType maps accepted spellings onto the canonical type names.
func NormalizeType(activityType string) string {
	t := strings.ToLower(strings.TrimSpace(activityType))
	t = strings.ReplaceAll(t, "-", "_")
	switch t {
	case "code", "codeexercise":
		return TypeCodeExercise
	}
	return t
}

// Grade scores submission against content for the given activity type.
func Grade(activityType string, submission, content json.RawMessage) (Result, error) {
	switch NormalizeType(activityType) {
	case TypeQuiz:
		return gradeQuiz(submission, content)
	case TypeCodeExercise:
		return gradeCode(submission, content)
	case TypeReading:
		return gradeReading(submission, content)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedActivityType, activityType)
	}
}

func decodeStrict(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}
