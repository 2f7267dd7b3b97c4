package evaluation

import (
	"context"
	"fmt"
)

// Verdict thresholds on the share of rubric keywords matched.
const (
	correctRatio = 0.5
	partialRatio = 0.25
)

// KeywordEvaluator is the deterministic evaluator. Same inputs, same result.
type KeywordEvaluator struct{}

// Evaluate never returns an error.
func (KeywordEvaluator) Evaluate(_ context.Context, text string, rubric *Rubric) (*Result, error) {
	return JudgeKeywords(text, rubric), nil
}

// JudgeKeywords applies the keyword rules:
// a phrase hit or at least half the keywords is correct; two or more
// matches, a quarter of the keywords or a single match is partial.
func JudgeKeywords(text string, rubric *Rubric) *Result {
	if rubric == nil {
		rubric = &Rubric{}
	}

	keywords := uniqueKeywords(rubric.Keywords)
	var matched []string
	for _, kw := range keywords {
		if Matches(text, kw) {
			matched = append(matched, kw)
		}
	}

	var ratio float64
	if len(keywords) > 0 {
		ratio = float64(len(matched)) / float64(len(keywords))
	}
	phraseHit := Matches(text, rubric.DiagnosisPhrase)

	verdict := VerdictIncorrect
	switch {
	case phraseHit || ratio >= correctRatio:
		verdict = VerdictCorrect
	case len(matched) >= 2 || ratio >= partialRatio || len(matched) == 1:
		verdict = VerdictPartial
	}

	return &Result{
		Verdict:         verdict,
		Explanation:     keywordExplanation(verdict, len(matched), len(keywords), phraseHit),
		MatchedConcepts: matched,
	}
}

// uniqueKeywords drops duplicate and blank keywords, keeping first-seen order.
func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		key := Normalize(kw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

func keywordExplanation(v Verdict, matched, total int, phraseHit bool) string {
	if phraseHit {
		return "Your answer names the core issue."
	}
	switch v {
	case VerdictCorrect:
		return fmt.Sprintf("Matched %d of %d key concepts.", matched, total)
	case VerdictPartial:
		return fmt.Sprintf("Matched %d of %d key concepts. You're on the right track.", matched, total)
	default:
		return "Your answer doesn't touch the key concepts yet. Check the clues again."
	}
}
