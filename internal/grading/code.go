package grading

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// exprCostLimit bounds CEL evaluation so authored expressions cannot spin.
const exprCostLimit = 100000

const (
	testContains = "contains"
	testRegex    = "regex"
	testOutput   = "output"
	testExpr     = "expr"
)

type codeContent struct {
	Tests []codeTest `json:"tests"`
}

type codeTest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Expected string `json:"expected"`
	Pattern  string `json:"pattern"`
	Expr     string `json:"expr"`
}

type codeSubmission struct {
	Code   string `json:"code"`
	Output string `json:"output"`
}

// gradeCode pattern-matches the submission against the activity's test
// cases. Submitted code is never executed.
func gradeCode(submission, content json.RawMessage) (Result, error) {
	if err := validate("code_content", content, ErrInvalidContent); err != nil {
		return Result{}, err
	}
	if err := validate("code_submission", submission, ErrInvalidSubmission); err != nil {
		return Result{}, err
	}
	var c codeContent
	if err := json.Unmarshal(content, &c); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	var s codeSubmission
	if err := json.Unmarshal(submission, &s); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	passed := 0
	for i, tc := range c.Tests {
		ok, err := runCodeTest(tc, s)
		if err != nil {
			name := tc.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return Result{}, fmt.Errorf("%w: test %s: %v", ErrInvalidContent, name, err)
		}
		if ok {
			passed++
		}
	}
	return newResult(percent(passed, len(c.Tests))), nil
}

func runCodeTest(tc codeTest, s codeSubmission) (bool, error) {
	switch tc.Kind {
	case testContains:
		return strings.Contains(s.Code, tc.Expected), nil
	case testRegex:
		re, err := regexp.Compile(tc.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(s.Code), nil
	case testOutput:
		return strings.TrimSpace(s.Output) == strings.TrimSpace(tc.Expected), nil
	case testExpr:
		return evalExpr(tc.Expr, s)
	default:
		return false, fmt.Errorf("unknown test kind %q", tc.Kind)
	}
}

var (
	celEnvOnce  sync.Once
	celEnv      *cel.Env
	celEnvErr   error
	celPrograms sync.Map // expr -> cel.Program
)

func exprEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("code", cel.StringType),
			cel.Variable("output", cel.StringType),
		)
	})
	return celEnv, celEnvErr
}

func compileExpr(expr string) (cel.Program, error) {
	if cached, ok := celPrograms.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := exprEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast, cel.CostLimit(exprCostLimit))
	if err != nil {
		return nil, err
	}
	celPrograms.Store(expr, prg)
	return prg, nil
}

// evalExpr runs a boolean CEL expression over the submission. Runtime
// evaluation errors count as a failed test rather than a grading error.
func evalExpr(expr string, s codeSubmission) (bool, error) {
	prg, err := compileExpr(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]any{"code": s.Code, "output": s.Output})
	if err != nil {
		return false, nil
	}
	b, ok := out.Value().(bool)
	return ok && b, nil
}
