package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/abhisek/incidentlab/internal/llm"
)

// LLMConfig holds configuration for the classifier-backed evaluator.
type LLMConfig struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds one evaluation, retries included. Zero means no
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// DefaultLLMConfig returns sensible defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:   300,
		Temperature: 0.1,
		Timeout:     20 * time.Second,
	}
}

// LLMEvaluator judges submissions with an external classifier. One instance
// serves one phase. Every failure is returned as an error; compose it with
// WithFallback so players never see one.
type LLMEvaluator struct {
	provider llm.Provider
	phase    Phase
	cfg      LLMConfig
}

// NewLLMEvaluator creates a classifier-backed evaluator for phase.
func NewLLMEvaluator(provider llm.Provider, phase Phase, cfg LLMConfig) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, phase: phase, cfg: cfg}
}

// Phase returns the phase this evaluator judges.
func (e *LLMEvaluator) Phase() Phase {
	return e.phase
}

// verdictOutput is the raw classifier response.
type verdictOutput struct {
	Verdict         string   `json:"verdict"`
	Explanation     string   `json:"explanation"`
	MatchedConcepts []string `json:"matchedConcepts"`
}

func (e *LLMEvaluator) Evaluate(ctx context.Context, text string, rubric *Rubric) (*Result, error) {
	if rubric == nil {
		return nil, fmt.Errorf("evaluate %s: nil rubric", e.phase)
	}

	ctx = llm.WithPurpose(ctx, "evaluate-"+e.phase.String())
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	system, user, err := buildPrompt(e.phase, text, rubric)
	if err != nil {
		return nil, fmt.Errorf("build %s prompt: %w", e.phase, err)
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", e.phase, err)
	}
	switch resp.StopReason {
	case "end":
	case "max_tokens":
		return nil, &llm.ErrMaxTokensExceeded{Text: resp.Text}
	default:
		return nil, &llm.ErrInvalidResponse{
			Text: resp.Text,
			Err:  fmt.Errorf("classifier stopped early: %q", resp.StopReason),
		}
	}

	return parseVerdict(resp.Text)
}

// parseVerdict turns a classifier completion into a Result.
func parseVerdict(text string) (*Result, error) {
	raw := []byte(llm.StripCodeFence(text))
	if err := llm.ValidateJSON(VerdictSchema, raw); err != nil {
		return nil, err
	}

	var out verdictOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Text: text, Err: err}
	}

	v, err := ParseVerdict(out.Verdict)
	if err != nil {
		return nil, &llm.ErrInvalidResponse{Text: text, Err: err}
	}

	concepts := out.MatchedConcepts
	if concepts == nil {
		concepts = []string{}
	}
	return &Result{
		Verdict:         v,
		Explanation:     out.Explanation,
		MatchedConcepts: concepts,
	}, nil
}

const rootCauseSystemPrompt = `You are a senior site reliability engineer grading a trainee's incident diagnosis.

Judge CAUSAL UNDERSTANDING: does the answer identify why the incident happened, not just what the symptoms were?

Rules:
- "correct": the answer names the root cause in the rubric, in any wording.
- "partial": the answer touches relevant concepts but misses or blurs the causal link.
- "incorrect": the answer describes symptoms only, or blames the wrong component.
- Keep the explanation to one or two sentences addressed to the player. Do not reveal the answer.
- matchedConcepts lists the rubric keywords the answer demonstrates.

Respond with ONLY a JSON object: {"verdict": "correct|partial|incorrect", "explanation": "...", "matchedConcepts": ["..."]}`

const solutionSystemPrompt = `You are a senior site reliability engineer grading a trainee's proposed fix for a diagnosed incident.

Judge EFFECTIVENESS: would the proposed change actually resolve the root cause and stop the incident from recurring?

Rules:
- "correct": the fix addresses the root cause. It need not match the example fixes word for word.
- "partial": the fix would mitigate symptoms or is incomplete.
- "incorrect": the fix would not help, or targets the wrong component.
- Keep the explanation to one or two sentences addressed to the player. Do not reveal the answer.
- matchedConcepts lists the rubric keywords the fix relies on.

Respond with ONLY a JSON object: {"verdict": "correct|partial|incorrect", "explanation": "...", "matchedConcepts": ["..."]}`

var rootCauseUserTemplate = template.Must(template.New("root-cause").Parse(`Root cause (answer key): {{.Rubric.DiagnosisPhrase}}
Key concepts: {{range $i, $k := .Rubric.Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}

Player's diagnosis:
"""
{{.Text}}
"""`))

var solutionUserTemplate = template.Must(template.New("solution").Parse(`Root cause (answer key): {{.Rubric.DiagnosisPhrase}}
Expected fix: {{.Rubric.SolutionDescription}}
Key concepts: {{range $i, $k := .Rubric.Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}
{{if .Rubric.ExampleFixes}}
Example fixes that would work:
{{range .Rubric.ExampleFixes}}- {{.}}
{{end}}{{end}}
Player's proposed fix:
"""
{{.Text}}
"""`))

// buildPrompt returns the system and user messages for phase.
func buildPrompt(phase Phase, text string, rubric *Rubric) (string, string, error) {
	var (
		system string
		tmpl   *template.Template
	)
	switch phase {
	case PhaseRootCause:
		system, tmpl = rootCauseSystemPrompt, rootCauseUserTemplate
	case PhaseSolution:
		system, tmpl = solutionSystemPrompt, solutionUserTemplate
	default:
		return "", "", fmt.Errorf("unknown phase %d", int(phase))
	}

	var buf bytes.Buffer
	data := struct {
		Rubric *Rubric
		Text   string
	}{rubric, text}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return system, buf.String(), nil
}
