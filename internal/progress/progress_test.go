package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    CaseProgress
		want State
	}{
		{"fresh", CaseProgress{CluesRevealed: 2}, StateNotStarted},
		{"started", CaseProgress{StartTime: started}, StateInvestigating},
		{"wrong root cause", CaseProgress{StartTime: started, RootCauseAttempts: 2}, StateRootCausePending},
		{"root cause found", CaseProgress{RootCauseAttempts: 1, RootCauseCorrect: true}, StateRootCauseCorrect},
		{"solution attempted", CaseProgress{RootCauseCorrect: true, SolutionAttempts: 1}, StateSolutionPending},
		{"solved", CaseProgress{RootCauseCorrect: true, Solved: true}, StateSolved},
		{"gave up", CaseProgress{RootCauseAttempts: 3, GaveUp: true}, StateGaveUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.State())
		})
	}
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateSolved.Terminal())
	assert.True(t, StateGaveUp.Terminal())
	assert.False(t, StateSolutionPending.Terminal())
	assert.Equal(t, "root-cause-pending", StateRootCausePending.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestClone_IsDeep(t *testing.T) {
	score := 700
	p := &CaseProgress{HintsViewed: []string{"a"}, Score: &score}
	c := p.Clone()
	c.HintsViewed[0] = "b"
	*c.Score = 1
	assert.Equal(t, "a", p.HintsViewed[0])
	assert.Equal(t, 700, *p.Score)
}

func TestScoreFactors(t *testing.T) {
	start := time.Unix(100, 0)
	p := &CaseProgress{
		StartTime:         start,
		CluesRevealed:     4,
		HintsViewed:       []string{"x", "y"},
		RootCauseAttempts: 3,
		RootCauseCorrect:  true,
	}
	f := p.ScoreFactors()
	assert.Equal(t, start, f.StartTime)
	assert.Equal(t, 4, f.CluesRevealed)
	assert.Equal(t, 2, f.HintsViewed)
	assert.Equal(t, 3, f.RootCauseAttempts)
	assert.True(t, f.RootCauseCorrect)
}
