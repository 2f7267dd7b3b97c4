package evaluation

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var kafkaRubric = &Rubric{
	DiagnosisPhrase:     "consumer count exceeds partition count",
	Keywords:            []string{"partition", "consumer", "idle"},
	SolutionDescription: "Increase the partition count or reduce consumers to match.",
	ExampleFixes: []string{
		"Add partitions to the topic so every consumer gets one",
		"Scale the consumer group down to the partition count",
	},
}

func TestKeywordEvaluator_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		rubric      *Rubric
		wantVerdict Verdict
		wantMatched []string
	}{
		{
			name:        "all keywords",
			text:        "there are more consumers than partitions so some sit idle",
			rubric:      kafkaRubric,
			wantVerdict: VerdictCorrect,
			wantMatched: []string{"partition", "consumer", "idle"},
		},
		{
			name:        "single keyword",
			text:        "the consumer is slow",
			rubric:      kafkaRubric,
			wantVerdict: VerdictPartial,
			wantMatched: []string{"consumer"},
		},
		{
			name:        "phrase hit",
			text:        "Consumer count exceeds partition count!",
			rubric:      &Rubric{DiagnosisPhrase: "consumer count exceeds partition count", Keywords: []string{"rebalance", "lag", "offset", "broker"}},
			wantVerdict: VerdictCorrect,
			wantMatched: nil,
		},
		{
			name:        "half of keywords",
			text:        "lag keeps growing while the offset is stuck",
			rubric:      &Rubric{DiagnosisPhrase: "rebalance storm", Keywords: []string{"lag", "offset", "rebalance", "heartbeat"}},
			wantVerdict: VerdictCorrect,
			wantMatched: []string{"lag", "offset"},
		},
		{
			name:        "quarter of keywords",
			text:        "something about the heartbeat",
			rubric:      &Rubric{DiagnosisPhrase: "rebalance storm", Keywords: []string{"lag", "offset", "rebalance", "heartbeat", "session", "timeout", "poll", "commit"}},
			wantVerdict: VerdictPartial,
			wantMatched: []string{"heartbeat"},
		},
		{
			name:        "nothing",
			text:        "the disk filled up",
			rubric:      kafkaRubric,
			wantVerdict: VerdictIncorrect,
			wantMatched: nil,
		},
		{
			name:        "empty keyword set",
			text:        "the disk filled up",
			rubric:      &Rubric{DiagnosisPhrase: "expired certificate"},
			wantVerdict: VerdictIncorrect,
			wantMatched: nil,
		},
		{
			name:        "duplicate keywords count once",
			text:        "the consumer",
			rubric:      &Rubric{Keywords: []string{"consumer", "Consumer", "partition", "idle"}},
			wantVerdict: VerdictPartial,
			wantMatched: []string{"consumer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := KeywordEvaluator{}.Evaluate(context.Background(), tt.text, tt.rubric)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Verdict != tt.wantVerdict {
				t.Errorf("verdict = %q, want %q", res.Verdict, tt.wantVerdict)
			}
			if diff := cmp.Diff(tt.wantMatched, res.MatchedConcepts, cmpopts.EquateEmpty(), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
				t.Errorf("matched concepts (-want +got):\n%s", diff)
			}
			if res.Explanation == "" {
				t.Error("expected an explanation")
			}
		})
	}
}

func TestKeywordEvaluator_Deterministic(t *testing.T) {
	text := "more consumers than partitions"
	first := JudgeKeywords(text, kafkaRubric)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, JudgeKeywords(text, kafkaRubric)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestKeywordEvaluator_NilRubric(t *testing.T) {
	res, err := KeywordEvaluator{}.Evaluate(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verdict != VerdictIncorrect {
		t.Errorf("verdict = %q, want incorrect", res.Verdict)
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		in      string
		want    Verdict
		wantErr bool
	}{
		{"correct", VerdictCorrect, false},
		{" Partial ", VerdictPartial, false},
		{"INCORRECT", VerdictIncorrect, false},
		{"maybe", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVerdict(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerdict(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerdict(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhase(t *testing.T) {
	if PhaseRootCause.String() != "root-cause" || PhaseSolution.String() != "solution" {
		t.Errorf("unexpected phase names %q %q", PhaseRootCause, PhaseSolution)
	}
	if Phase(3).Valid() || Phase(0).Valid() {
		t.Error("phases other than 1 and 2 must be invalid")
	}
	if !PhaseRootCause.Valid() || !PhaseSolution.Valid() {
		t.Error("phases 1 and 2 must be valid")
	}
}
