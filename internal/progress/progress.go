// Package progress tracks a player's investigation of each case and applies
// judged submissions to it.
package progress

import (
	"slices"
	"time"

	"github.com/abhisek/incidentlab/internal/scoring"
)

// InitialClues is how many clues a fresh record starts with.
const InitialClues = 2

// State is the lifecycle position of a case, derived from its record.
type State int

const (
	StateNotStarted State = iota
	StateInvestigating
	StateRootCausePending
	StateRootCauseCorrect
	StateSolutionPending
	StateSolved
	StateGaveUp
)

var stateNames = [...]string{
	StateNotStarted:       "not-started",
	StateInvestigating:    "investigating",
	StateRootCausePending: "root-cause-pending",
	StateRootCauseCorrect: "root-cause-correct",
	StateSolutionPending:  "solution-pending",
	StateSolved:           "solved",
	StateGaveUp:           "gave-up",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further submissions are accepted.
func (s State) Terminal() bool {
	return s == StateSolved || s == StateGaveUp
}

// CaseProgress is one player's record for one case.
//
// Invariants: InitialClues <= CluesRevealed <= the case's clue count and
// never decreases; Solved and GaveUp are never both set; Score is nil until
// Solved; RootCauseCorrect never reverts.
type CaseProgress struct {
	CluesRevealed      int
	RootCauseAttempts  int
	RootCauseCorrect   bool
	SubmittedRootCause string
	SolutionAttempts   int
	Solved             bool
	GaveUp             bool
	HintsViewed        []string
	StartTime          time.Time // zero until the investigation starts
	Score              *int
}

// New returns a fresh record.
func New() *CaseProgress {
	return &CaseProgress{CluesRevealed: InitialClues}
}

// State derives the lifecycle state.
func (p *CaseProgress) State() State {
	switch {
	case p.GaveUp:
		return StateGaveUp
	case p.Solved:
		return StateSolved
	case p.RootCauseCorrect && p.SolutionAttempts > 0:
		return StateSolutionPending
	case p.RootCauseCorrect:
		return StateRootCauseCorrect
	case p.RootCauseAttempts > 0:
		return StateRootCausePending
	case !p.StartTime.IsZero():
		return StateInvestigating
	default:
		return StateNotStarted
	}
}

// ScoreFactors extracts the values the score depends on.
func (p *CaseProgress) ScoreFactors() scoring.Factors {
	return scoring.Factors{
		StartTime:         p.StartTime,
		CluesRevealed:     p.CluesRevealed,
		HintsViewed:       len(p.HintsViewed),
		RootCauseAttempts: p.RootCauseAttempts,
		RootCauseCorrect:  p.RootCauseCorrect,
	}
}

// HasViewedHint reports whether hintID was already counted.
func (p *CaseProgress) HasViewedHint(hintID string) bool {
	return slices.Contains(p.HintsViewed, hintID)
}

// Clone returns a deep copy.
func (p *CaseProgress) Clone() *CaseProgress {
	c := *p
	c.HintsViewed = slices.Clone(p.HintsViewed)
	if p.Score != nil {
		s := *p.Score
		c.Score = &s
	}
	return &c
}
