package question

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Expr is a compiled CEL predicate over a question. The expression sees
// these variables:
//
//	number     int
//	text       string
//	tags       list(string)
//	score      int
//	band       string
//	starred    bool
//	note       string
//	active     bool
//	case_study string
type Expr struct {
	source string
	prg    cel.Program
}

var exprEnvOptions = []cel.EnvOption{
	cel.Variable("number", cel.IntType),
	cel.Variable("text", cel.StringType),
	cel.Variable("tags", cel.ListType(cel.StringType)),
	cel.Variable("score", cel.IntType),
	cel.Variable("band", cel.StringType),
	cel.Variable("starred", cel.BoolType),
	cel.Variable("note", cel.StringType),
	cel.Variable("active", cel.BoolType),
	cel.Variable("case_study", cel.StringType),
}

// CompileExpr parses and type-checks a filter expression such as
//
//	score < 2 && "networking" in tags
func CompileExpr(source string) (*Expr, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty filter expression")
	}

	env, err := cel.NewEnv(exprEnvOptions...)
	if err != nil {
		return nil, fmt.Errorf("build filter env: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("plan filter: %w", err)
	}
	return &Expr{source: source, prg: prg}, nil
}

// String returns the expression source.
func (e *Expr) String() string {
	return e.source
}

// Match evaluates the expression against q.
func (e *Expr) Match(q *Question) (bool, error) {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	out, _, err := e.prg.Eval(map[string]any{
		"number":     int64(q.Number),
		"text":       q.Text,
		"tags":       tags,
		"score":      int64(q.Score),
		"band":       string(q.Band()),
		"starred":    q.Starred,
		"note":       q.Note,
		"active":     q.Active,
		"case_study": q.CaseStudy,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter on question %d: %w", q.Number, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return b, nil
}

// Filter returns the questions for which e evaluates to true.
func (e *Expr) Filter(qs []*Question) ([]*Question, error) {
	var out []*Question
	for _, q := range qs {
		ok, err := e.Match(q)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, q)
		}
	}
	return out, nil
}
