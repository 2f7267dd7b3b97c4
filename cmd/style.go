package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/incidentlab/internal/evaluation"
	"github.com/abhisek/incidentlab/internal/progress"
	"github.com/abhisek/incidentlab/internal/scoring"
	"github.com/abhisek/incidentlab/internal/ui/theme"
)

func verdictBadge(v evaluation.Verdict) string {
	label := strings.ToUpper(string(v))
	switch v {
	case evaluation.VerdictCorrect:
		return theme.Correct.Render("✓ " + label)
	case evaluation.VerdictPartial:
		return theme.Partial.Render("~ " + label)
	default:
		return theme.Incorrect.Render("✗ " + label)
	}
}

func stateLabel(s progress.State) string {
	switch s {
	case progress.StateSolved:
		return theme.Correct.Render(s.String())
	case progress.StateGaveUp:
		return theme.Incorrect.Render(s.String())
	case progress.StateNotStarted:
		return theme.Subtitle.Render(s.String())
	default:
		return theme.Partial.Render(s.String())
	}
}

func renderBreakdown(est *progress.Estimate) string {
	if est.Final {
		return fmt.Sprintf("Final score: %s", theme.Score.Render(fmt.Sprint(est.Score)))
	}
	b := est.Breakdown
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-22s %6d\n", "Base", scoring.Base)
	fmt.Fprintf(&sb, "%-22s %6d  (%s)\n", "Time", -b.TimePenalty, b.Elapsed.Truncate(1e9))
	fmt.Fprintf(&sb, "%-22s %6d\n", "Extra clues", -b.CluePenalty)
	fmt.Fprintf(&sb, "%-22s %6d\n", "Hints", -b.HintPenalty)
	fmt.Fprintf(&sb, "%-22s %6d  (%d failed)\n", "Wrong root causes", -b.AttemptPenalty, b.FailedAttempts)
	fmt.Fprintf(&sb, "%-22s %6d\n", "Subtotal", b.Raw)
	fmt.Fprintf(&sb, "%-22s %6s\n", "Difficulty", fmt.Sprintf("x%g", b.Multiplier))
	fmt.Fprintf(&sb, "%-22s %s", "If solved now", theme.Score.Render(fmt.Sprint(b.Score)))
	return theme.Card.Render(sb.String())
}
