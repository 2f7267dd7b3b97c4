package scoring

import (
	"testing"
	"time"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCalculate_ExampleScenario(t *testing.T) {
	f := Factors{
		StartTime:         now.Add(-125 * time.Second),
		CluesRevealed:     4,
		HintsViewed:       2,
		RootCauseAttempts: 3,
		RootCauseCorrect:  true,
	}
	b := Calculate(f, Senior, now, true)

	if b.TimePenalty != 25 {
		t.Errorf("TimePenalty = %d, want 25", b.TimePenalty)
	}
	if b.CluePenalty != 100 {
		t.Errorf("CluePenalty = %d, want 100", b.CluePenalty)
	}
	if b.HintPenalty != 50 {
		t.Errorf("HintPenalty = %d, want 50", b.HintPenalty)
	}
	if b.AttemptPenalty != 200 {
		t.Errorf("AttemptPenalty = %d, want 200", b.AttemptPenalty)
	}
	if b.Raw != 625 {
		t.Errorf("Raw = %d, want 625", b.Raw)
	}
	if b.Score != 1250 {
		t.Errorf("Score = %d, want 1250", b.Score)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	f := Factors{StartTime: now.Add(-77 * time.Second), CluesRevealed: 3, HintsViewed: 1, RootCauseAttempts: 2}
	first := Compute(f, Mid, now, false)
	for i := 0; i < 5; i++ {
		if got := Compute(f, Mid, now, false); got != first {
			t.Fatalf("Compute run %d = %d, want %d", i, got, first)
		}
	}
}

func TestCalculate_Monotonic(t *testing.T) {
	base := Factors{StartTime: now.Add(-60 * time.Second), CluesRevealed: 2, HintsViewed: 0, RootCauseAttempts: 1}

	bumps := map[string]func(Factors, int) Factors{
		"elapsed": func(f Factors, i int) Factors {
			f.StartTime = f.StartTime.Add(-time.Duration(i) * 7 * time.Second)
			return f
		},
		"clues": func(f Factors, i int) Factors { f.CluesRevealed += i; return f },
		"hints": func(f Factors, i int) Factors { f.HintsViewed += i; return f },
		"attempts": func(f Factors, i int) Factors {
			f.RootCauseAttempts += i
			return f
		},
	}

	for name, bump := range bumps {
		for _, final := range []bool{false, true} {
			prev := Compute(base, Principal, now, final)
			for i := 1; i <= 40; i++ {
				got := Compute(bump(base, i), Principal, now, final)
				if got > prev {
					t.Fatalf("%s (final=%v): score rose from %d to %d at step %d", name, final, prev, got, i)
				}
				prev = got
			}
		}
	}
}

func TestCalculate_Floor(t *testing.T) {
	f := Factors{
		StartTime:         now.Add(-24 * time.Hour),
		CluesRevealed:     10,
		HintsViewed:       8,
		RootCauseAttempts: 12,
	}
	for _, d := range []Difficulty{Junior, Mid, Senior, Principal, "unknown"} {
		b := Calculate(f, d, now, false)
		if b.Raw != MinScore {
			t.Errorf("%s: Raw = %d, want %d", d, b.Raw, MinScore)
		}
		if b.TimePenalty != MaxTimePenalty {
			t.Errorf("%s: TimePenalty = %d, want cap %d", d, b.TimePenalty, MaxTimePenalty)
		}
		want := int(float64(MinScore) * d.Multiplier())
		if b.Score != want {
			t.Errorf("%s: Score = %d, want %d", d, b.Score, want)
		}
	}
}

func TestCalculate_LiveVersusFinal(t *testing.T) {
	f := Factors{StartTime: now, CluesRevealed: 2, RootCauseAttempts: 2}

	if got := Calculate(f, Junior, now, false).FailedAttempts; got != 2 {
		t.Errorf("live before success: failed = %d, want 2", got)
	}
	if got := Calculate(f, Junior, now, true).FailedAttempts; got != 1 {
		t.Errorf("final: failed = %d, want 1", got)
	}

	f.RootCauseCorrect = true
	if got := Calculate(f, Junior, now, false).FailedAttempts; got != 1 {
		t.Errorf("live after success: failed = %d, want 1", got)
	}

	zero := Factors{StartTime: now}
	if got := Calculate(zero, Junior, now, true).FailedAttempts; got != 0 {
		t.Errorf("final with no attempts: failed = %d, want 0", got)
	}
}

func TestCalculate_TimeEdges(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"unset", time.Time{}, 0},
		{"in the future", now.Add(time.Minute), 0},
		{"just under interval", now.Add(-4999 * time.Millisecond), 0},
		{"exact interval", now.Add(-5 * time.Second), 1},
		{"cap", now.Add(-1500 * time.Second), 300},
		{"past cap", now.Add(-3 * time.Hour), 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(Factors{StartTime: tt.start, CluesRevealed: 2}, Junior, now, false)
			if b.TimePenalty != tt.want {
				t.Errorf("TimePenalty = %d, want %d", b.TimePenalty, tt.want)
			}
		})
	}
}

func TestCalculate_Rounding(t *testing.T) {
	// Raw 875 × 1.5 = 1312.5 rounds half away from zero.
	f := Factors{StartTime: now, CluesRevealed: 2, HintsViewed: 5}
	if got := Compute(f, Mid, now, false); got != 1313 {
		t.Errorf("Compute = %d, want 1313", got)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"junior", 1},
		{"Mid", 1.5},
		{" SENIOR ", 2},
		{"principal", 3},
		{"staff", 1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := ParseDifficulty(tt.in).Multiplier(); got != tt.want {
			t.Errorf("ParseDifficulty(%q).Multiplier() = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Difficulty("staff").Known() {
		t.Error("staff should not be a known tier")
	}
	if !Senior.Known() {
		t.Error("senior should be a known tier")
	}
}
