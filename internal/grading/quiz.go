package grading

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type quizContent struct {
	Questions []quizQuestion `json:"questions"`
}

type quizQuestion struct {
	ID     any   `json:"id"`
	Answer any   `json:"answer"`
	Accept []any `json:"accept"`
}

type quizSubmission struct {
	Answers map[string]any `json:"answers"`
}

// gradeQuiz awards one point per correct answer. A scalar answer matches
// when it equals the expected value or any accepted alternative after
// trimming and case folding. A list answer is a multi-select and matches
// only the exact set.
func gradeQuiz(submission, content json.RawMessage) (Result, error) {
	if err := validate("quiz_content", content, ErrInvalidContent); err != nil {
		return Result{}, err
	}
	if err := validate("quiz_submission", submission, ErrInvalidSubmission); err != nil {
		return Result{}, err
	}
	var c quizContent
	if err := decodeStrict(content, &c); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	var s quizSubmission
	if err := decodeStrict(submission, &s); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	answers := make(map[string]any, len(s.Answers))
	for id, v := range s.Answers {
		answers[questionKey(id)] = v
	}
	correct := 0
	for _, q := range c.Questions {
		got, ok := answers[questionKey(q.ID)]
		if ok && answerMatches(q, got) {
			correct++
		}
	}
	return newResult(percent(correct, len(c.Questions))), nil
}

func answerMatches(q quizQuestion, got any) bool {
	if want, ok := q.Answer.([]any); ok {
		gotList, ok := got.([]any)
		if !ok {
			return false
		}
		return equalSets(want, gotList)
	}
	if _, ok := got.([]any); ok {
		return false
	}
	g := normalize(got)
	if g == normalize(q.Answer) {
		return true
	}
	for _, alt := range q.Accept {
		if g == normalize(alt) {
			return true
		}
	}
	return false
}

func equalSets(a, b []any) bool {
	na := normalizeAll(a)
	nb := normalizeAll(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalizeAll(in []any) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		n := normalize(v)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// questionKey trims ids without folding case, so "Q1" and "q1" stay distinct.
func questionKey(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return normalize(v)
}

func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprint(t)))
	}
}
