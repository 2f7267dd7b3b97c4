// Package evaluation judges free-text diagnoses against a case rubric.
//
// Two evaluators implement the same interface: KeywordEvaluator is a pure
// fuzzy keyword matcher, LLMEvaluator asks an external classifier. They are
// composed with WithFallback so a classifier failure quietly degrades to
// keyword matching.
package evaluation

import (
	"context"
	"fmt"
	"strings"
)

// Verdict is the outcome of judging one submission.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// ParseVerdict maps a classifier's verdict string to a Verdict.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(strings.ToLower(strings.TrimSpace(s))); v {
	case VerdictCorrect, VerdictPartial, VerdictIncorrect:
		return v, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Phase selects which half of a case a submission answers.
type Phase int

const (
	PhaseRootCause Phase = 1
	PhaseSolution  Phase = 2
)

func (p Phase) String() string {
	switch p {
	case PhaseRootCause:
		return "root-cause"
	case PhaseSolution:
		return "solution"
	default:
		return fmt.Sprintf("phase-%d", int(p))
	}
}

// Valid reports whether p is one of the two defined phases.
func (p Phase) Valid() bool {
	return p == PhaseRootCause || p == PhaseSolution
}

// Rubric is the authored answer key for a case. Read-only.
type Rubric struct {
	DiagnosisPhrase     string   `yaml:"diagnosis_phrase"`
	Keywords            []string `yaml:"keywords"`
	SolutionDescription string   `yaml:"solution_description"`
	ExampleFixes        []string `yaml:"example_fixes"`
}

// Result is a judged submission. Nothing in it reveals which evaluator
// produced it.
type Result struct {
	Verdict         Verdict
	Explanation     string
	MatchedConcepts []string
}

// Evaluator judges a submission against a rubric.
type Evaluator interface {
	Evaluate(ctx context.Context, text string, rubric *Rubric) (*Result, error)
}
