package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const fourQuestionQuiz = `{"questions":[
  {"id":"q1","answer":"Paris"},
  {"id":"q2","answer":4},
  {"id":"q3","answer":true},
  {"id":"q4","answer":["a","c"]}
]}`

func TestGrade_UnsupportedType(t *testing.T) {
	_, err := Grade("essay", json.RawMessage(`{}`), json.RawMessage(`{}`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedActivityType))
}

func TestGrade_TypeSpellings(t *testing.T) {
	require.Equal(t, TypeCodeExercise, NormalizeType("code-exercise"))
	require.Equal(t, TypeCodeExercise, NormalizeType(" Code_Exercise "))
	require.Equal(t, TypeQuiz, NormalizeType("QUIZ"))
}

func TestGrade_QuizAllCorrect(t *testing.T) {
	sub := `{"answers":{"q1":"  paris ","q2":4,"q3":true,"q4":["C","a"]}}`
	res, err := Grade(TypeQuiz, json.RawMessage(sub), json.RawMessage(fourQuestionQuiz))
	require.NoError(t, err)
	require.Equal(t, 100, res.Score)
	require.True(t, res.Passed)
}

func TestGrade_QuizNoneCorrect(t *testing.T) {
	sub := `{"answers":{"q1":"London","q2":5,"q3":false,"q4":["a"]}}`
	res, err := Grade(TypeQuiz, json.RawMessage(sub), json.RawMessage(fourQuestionQuiz))
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
	require.False(t, res.Passed)
}

func TestGrade_QuizFloorsPartialCredit(t *testing.T) {
	content := `{"questions":[{"id":1,"answer":"a"},{"id":2,"answer":"b"},{"id":3,"answer":"c"}]}`
	sub := `{"answers":{"1":"a","2":"b","3":"x"}}`
	res, err := Grade(TypeQuiz, json.RawMessage(sub), json.RawMessage(content))
	require.NoError(t, err)
	require.Equal(t, 66, res.Score)
	require.False(t, res.Passed)
}

func TestGrade_QuizAcceptAlternatives(t *testing.T) {
	content := `{"questions":[{"id":"q","answer":"colour","accept":["color"]}]}`
	res, err := Grade(TypeQuiz, json.RawMessage(`{"answers":{"q":"Color"}}`), json.RawMessage(content))
	require.NoError(t, err)
	require.Equal(t, 100, res.Score)
}

func TestGrade_QuizIDsAreCaseSensitive(t *testing.T) {
	content := `{"questions":[{"id":"Q1","answer":"yes"},{"id":"q1","answer":"no"}]}`
	res, err := Grade(TypeQuiz, json.RawMessage(`{"answers":{" Q1 ":"YES","q1":"No"}}`), json.RawMessage(content))
	require.NoError(t, err)
	require.Equal(t, 100, res.Score)

	res, err = Grade(TypeQuiz, json.RawMessage(`{"answers":{"Q1":"no"}}`), json.RawMessage(content))
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
}

func TestGrade_QuizZeroQuestions(t *testing.T) {
	res, err := Grade(TypeQuiz, json.RawMessage(`{"answers":{}}`), json.RawMessage(`{"questions":[]}`))
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
	require.False(t, res.Passed)
}

func TestGrade_QuizMissingAnswersIsInvalid(t *testing.T) {
	for _, sub := range []string{``, `[]`, `{"answer":{}}`, `{"answers":"q1"}`, `not json`} {
		_, err := Grade(TypeQuiz, json.RawMessage(sub), json.RawMessage(fourQuestionQuiz))
		require.Error(t, err, "submission %q", sub)
		require.True(t, errors.Is(err, ErrInvalidSubmission), "submission %q: %v", sub, err)
	}
}

func TestGrade_QuizMalformedContent(t *testing.T) {
	_, err := Grade(TypeQuiz, json.RawMessage(`{"answers":{}}`), json.RawMessage(`{"questions":[{"id":"q"}]}`))
	require.True(t, errors.Is(err, ErrInvalidContent))
}

func TestGrade_Reading(t *testing.T) {
	res, err := Grade(TypeReading, json.RawMessage(`{"completed":true}`), nil)
	require.NoError(t, err)
	require.Equal(t, Result{Score: 100, Passed: true}, res)

	res, err = Grade(TypeReading, json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	require.Equal(t, Result{Score: 0, Passed: false}, res)

	_, err = Grade(TypeReading, json.RawMessage(`{"completed":"yes"}`), nil)
	require.True(t, errors.Is(err, ErrInvalidSubmission))
}

func TestGrade_Deterministic(t *testing.T) {
	sub := json.RawMessage(`{"answers":{"q1":"paris","q2":3}}`)
	first, err := Grade(TypeQuiz, sub, json.RawMessage(fourQuestionQuiz))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Grade(TypeQuiz, sub, json.RawMessage(fourQuestionQuiz))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

// A perfect score always passes and a pass always meets the threshold.
func TestGrade_PassedImpliesThreshold(t *testing.T) {
	for total := 1; total <= 12; total++ {
		content := `{"questions":[`
		for i := 0; i < total; i++ {
			if i > 0 {
				content += ","
			}
			content += fmt.Sprintf(`{"id":"q%d","answer":"x"}`, i)
		}
		content += `]}`
		for correct := 0; correct <= total; correct++ {
			answers := map[string]string{}
			for i := 0; i < total; i++ {
				if i < correct {
					answers[fmt.Sprintf("q%d", i)] = "x"
				} else {
					answers[fmt.Sprintf("q%d", i)] = "y"
				}
			}
			sub, err := json.Marshal(map[string]any{"answers": answers})
			require.NoError(t, err)
			res, err := Grade(TypeQuiz, sub, json.RawMessage(content))
			require.NoError(t, err)
			require.Equal(t, correct*100/total, res.Score)
			if res.Score == 100 {
				require.True(t, res.Passed)
			}
			if res.Passed {
				require.GreaterOrEqual(t, res.Score, PassThreshold)
			} else {
				require.Less(t, res.Score, PassThreshold)
			}
		}
	}
}
