// Package scoring computes the deterministic case score.
package scoring

import (
	"math"
	"strings"
	"time"
)

// Score constants.
const (
	Base     = 1000
	MinScore = 100

	TimePenaltyInterval = 5 * time.Second
	MaxTimePenalty      = 300

	FreeClues            = 2
	CluePenalty          = 50
	HintPenalty          = 25
	FailedAttemptPenalty = 100
)

// Difficulty is a case's difficulty tier.
type Difficulty string

const (
	Junior    Difficulty = "junior"
	Mid       Difficulty = "mid"
	Senior    Difficulty = "senior"
	Principal Difficulty = "principal"
)

var multipliers = map[Difficulty]float64{
	Junior:    1,
	Mid:       1.5,
	Senior:    2,
	Principal: 3,
}

// Multiplier returns the score multiplier for d; unknown tiers get 1.
func (d Difficulty) Multiplier() float64 {
	if m, ok := multipliers[d]; ok {
		return m
	}
	return 1
}

// Known reports whether d is one of the defined tiers.
func (d Difficulty) Known() bool {
	_, ok := multipliers[d]
	return ok
}

// ParseDifficulty normalizes a tier name. Unknown names are kept as-is so
// they still score with multiplier 1.
func ParseDifficulty(s string) Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(s)))
}

// Factors are the progress values the score depends on.
type Factors struct {
	StartTime         time.Time // zero = timer never started
	CluesRevealed     int
	HintsViewed       int
	RootCauseAttempts int
	RootCauseCorrect  bool
}

// Breakdown itemizes a score.
type Breakdown struct {
	Elapsed        time.Duration
	TimePenalty    int
	CluePenalty    int
	HintPenalty    int
	FailedAttempts int
	AttemptPenalty int
	Raw            int // after penalties, clamped at MinScore
	Multiplier     float64
	Score          int
}

// Calculate scores f at time now. final is set on the solving transition:
// the successful root-cause attempt is then excused. A live estimate
// (final == false) excuses it only once RootCauseCorrect is set.
func Calculate(f Factors, d Difficulty, now time.Time, final bool) Breakdown {
	var b Breakdown

	if !f.StartTime.IsZero() {
		b.Elapsed = max(now.Sub(f.StartTime), 0)
	}
	b.TimePenalty = min(int(b.Elapsed/TimePenaltyInterval), MaxTimePenalty)
	b.CluePenalty = CluePenalty * max(0, f.CluesRevealed-FreeClues)
	b.HintPenalty = HintPenalty * max(0, f.HintsViewed)

	b.FailedAttempts = max(0, f.RootCauseAttempts)
	if final || f.RootCauseCorrect {
		b.FailedAttempts = max(0, f.RootCauseAttempts-1)
	}
	b.AttemptPenalty = FailedAttemptPenalty * b.FailedAttempts

	b.Raw = max(MinScore, Base-b.TimePenalty-b.CluePenalty-b.HintPenalty-b.AttemptPenalty)
	b.Multiplier = d.Multiplier()
	b.Score = int(math.Round(float64(b.Raw) * b.Multiplier))
	return b
}

// Compute returns just the score from Calculate.
func Compute(f Factors, d Difficulty, now time.Time, final bool) int {
	return Calculate(f, d, now, final).Score
}
