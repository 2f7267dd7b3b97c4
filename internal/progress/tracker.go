package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/incidentlab/internal/evaluation"
	"github.com/abhisek/incidentlab/internal/scoring"
	"github.com/abhisek/incidentlab/internal/store"
)

// Catalog provides the per-case facts the tracker needs.
type Catalog interface {
	Rubric(caseID string) (*evaluation.Rubric, error)
	ClueCount(caseID string) (int, error)
	Difficulty(caseID string) (scoring.Difficulty, error)
	HasHint(caseID, hintID string) (bool, error)
}

// EventRecorder receives one event per judged submission.
type EventRecorder interface {
	AppendEvaluation(ctx context.Context, data store.EvaluationEventData) error
}

// Options configures a Tracker.
type Options struct {
	Store   Store
	Catalog Catalog

	// RootCause judges phase 1 submissions, Solution phase 2. Both default
	// to the keyword evaluator.
	RootCause evaluation.Evaluator
	Solution  evaluation.Evaluator

	Events EventRecorder    // optional
	Clock  func() time.Time // defaults to time.Now
	Logger *zap.Logger      // defaults to a no-op logger
}

// Outcome is the reply to a submission. Score is set only on the
// submission that solves the case.
type Outcome struct {
	Verdict         evaluation.Verdict
	Explanation     string
	MatchedConcepts []string
	Score           *int
}

// Estimate is a score for display. Final is set for solved and given-up
// cases, whose score no longer changes.
type Estimate struct {
	scoring.Breakdown
	Final bool
}

// Tracker applies player actions to progress records. Every operation loads
// the player's map, changes at most one case, and saves the whole map
// before returning. Operations for the same player are serialized; nothing
// is saved when an operation fails.
type Tracker struct {
	store     Store
	catalog   Catalog
	rootCause evaluation.Evaluator
	solution  evaluation.Evaluator
	events    EventRecorder
	now       func() time.Time
	logger    *zap.Logger
	locks     keyedMutex
}

// NewTracker validates opts and returns a Tracker.
func NewTracker(opts Options) (*Tracker, error) {
	if opts.Store == nil {
		return nil, errors.New("progress: store is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("progress: catalog is required")
	}
	t := &Tracker{
		store:     opts.Store,
		catalog:   opts.Catalog,
		rootCause: opts.RootCause,
		solution:  opts.Solution,
		events:    opts.Events,
		now:       opts.Clock,
		logger:    opts.Logger,
	}
	if t.rootCause == nil {
		t.rootCause = evaluation.KeywordEvaluator{}
	}
	if t.solution == nil {
		t.solution = evaluation.KeywordEvaluator{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t, nil
}

// update runs fn on the player's record for caseID under the player lock
// and saves the map when fn returns save == true and no error.
func (t *Tracker) update(ctx context.Context, playerID, caseID string, fn func(p *CaseProgress) (save bool, err error)) error {
	if _, err := t.catalog.ClueCount(caseID); err != nil {
		return err
	}

	unlock := t.locks.Lock(playerID)
	defer unlock()

	all, err := t.store.Load(ctx, playerID)
	if err != nil {
		return err
	}
	p, ok := all[caseID]
	if !ok {
		p = New()
	}
	save, err := fn(p)
	if err != nil || !save {
		return err
	}
	all[caseID] = p
	return t.store.Save(ctx, playerID, all)
}

// BeginInvestigation starts the timer for a case. Calling it again leaves
// the original start time in place.
func (t *Tracker) BeginInvestigation(ctx context.Context, playerID, caseID string) (*CaseProgress, error) {
	var out *CaseProgress
	err := t.update(ctx, playerID, caseID, func(p *CaseProgress) (bool, error) {
		started := p.StartTime.IsZero()
		if started {
			p.StartTime = t.now()
			t.logger.Debug("investigation started",
				zap.String("player", playerID), zap.String("case", caseID))
		}
		out = p.Clone()
		return started, nil
	})
	return out, err
}

// RevealClue shows one more clue, up to the case's total, and returns the
// number now revealed.
func (t *Tracker) RevealClue(ctx context.Context, playerID, caseID string) (int, error) {
	total, err := t.catalog.ClueCount(caseID)
	if err != nil {
		return 0, err
	}
	var n int
	err = t.update(ctx, playerID, caseID, func(p *CaseProgress) (bool, error) {
		if p.CluesRevealed >= total {
			n = p.CluesRevealed
			return false, nil
		}
		p.CluesRevealed++
		n = p.CluesRevealed
		return true, nil
	})
	return n, err
}

// RecordHintView counts a hint the first time it is viewed and returns the
// number of distinct hints viewed.
func (t *Tracker) RecordHintView(ctx context.Context, playerID, caseID, hintID string) (int, error) {
	ok, err := t.catalog.HasHint(caseID, hintID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q on case %q", ErrUnknownHint, hintID, caseID)
	}
	var n int
	err = t.update(ctx, playerID, caseID, func(p *CaseProgress) (bool, error) {
		if p.HasViewedHint(hintID) {
			n = len(p.HintsViewed)
			return false, nil
		}
		p.HintsViewed = append(p.HintsViewed, hintID)
		n = len(p.HintsViewed)
		return true, nil
	})
	return n, err
}

// SubmitRootCause judges a phase 1 answer. Each call counts as an attempt,
// whatever the verdict.
func (t *Tracker) SubmitRootCause(ctx context.Context, playerID, caseID, text string) (*evaluation.Result, error) {
	out, err := t.submit(ctx, playerID, caseID, evaluation.PhaseRootCause, text)
	if err != nil {
		return nil, err
	}
	return &evaluation.Result{
		Verdict:         out.Verdict,
		Explanation:     out.Explanation,
		MatchedConcepts: out.MatchedConcepts,
	}, nil
}

// SubmitSolution judges a phase 2 answer. It requires a correct root cause.
// A correct verdict solves the case and fixes its score.
func (t *Tracker) SubmitSolution(ctx context.Context, playerID, caseID, text string) (*Outcome, error) {
	return t.submit(ctx, playerID, caseID, evaluation.PhaseSolution, text)
}

// CheckSubmission validates text and phase, then dispatches to the phase's
// submit operation.
func (t *Tracker) CheckSubmission(ctx context.Context, playerID, caseID string, phase int, text string) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySubmission
	}
	ph := evaluation.Phase(phase)
	if !ph.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhase, phase)
	}
	return t.submit(ctx, playerID, caseID, ph, text)
}

func (t *Tracker) submit(ctx context.Context, playerID, caseID string, phase evaluation.Phase, text string) (*Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySubmission
	}
	rubric, err := t.catalog.Rubric(caseID)
	if err != nil {
		return nil, err
	}
	diff, err := t.catalog.Difficulty(caseID)
	if err != nil {
		return nil, err
	}

	var (
		out     *Outcome
		attempt int
	)
	err = t.update(ctx, playerID, caseID, func(p *CaseProgress) (bool, error) {
		if p.State().Terminal() {
			return false, ErrCaseClosed
		}

		var eval evaluation.Evaluator
		switch phase {
		case evaluation.PhaseRootCause:
			if p.RootCauseCorrect {
				return false, fmt.Errorf("%w: root cause already identified", ErrInvalidState)
			}
			eval = t.rootCause
		case evaluation.PhaseSolution:
			if !p.RootCauseCorrect {
				return false, fmt.Errorf("%w: identify the root cause first", ErrInvalidState)
			}
			eval = t.solution
		}

		res, err := eval.Evaluate(ctx, text, rubric)
		if err != nil {
			return false, fmt.Errorf("evaluate %s: %w", phase, err)
		}
		out = &Outcome{
			Verdict:         res.Verdict,
			Explanation:     res.Explanation,
			MatchedConcepts: res.MatchedConcepts,
		}

		switch phase {
		case evaluation.PhaseRootCause:
			p.RootCauseAttempts++
			attempt = p.RootCauseAttempts
			if res.Verdict == evaluation.VerdictCorrect {
				p.RootCauseCorrect = true
				p.SubmittedRootCause = text
			}
		case evaluation.PhaseSolution:
			p.SolutionAttempts++
			attempt = p.SolutionAttempts
			if res.Verdict == evaluation.VerdictCorrect {
				score := scoring.Compute(p.ScoreFactors(), diff, t.now(), true)
				p.Solved = true
				p.Score = &score
				out.Score = &score
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("submission judged",
		zap.String("player", playerID),
		zap.String("case", caseID),
		zap.Stringer("phase", phase),
		zap.Int("attempt", attempt),
		zap.String("verdict", string(out.Verdict)))
	t.record(ctx, playerID, caseID, phase, attempt, text, out)
	return out, nil
}

func (t *Tracker) record(ctx context.Context, playerID, caseID string, phase evaluation.Phase, attempt int, text string, out *Outcome) {
	if t.events == nil {
		return
	}
	err := t.events.AppendEvaluation(ctx, store.EvaluationEventData{
		PlayerID:        playerID,
		CaseID:          caseID,
		Phase:           int(phase),
		Attempt:         attempt,
		Submission:      text,
		Verdict:         string(out.Verdict),
		Explanation:     out.Explanation,
		MatchedConcepts: out.MatchedConcepts,
		Score:           out.Score,
	})
	if err != nil {
		t.logger.Warn("failed to record evaluation event", zap.Error(err))
	}
}

// GiveUp closes a case without a score. It does nothing on a solved case.
func (t *Tracker) GiveUp(ctx context.Context, playerID, caseID string) error {
	return t.update(ctx, playerID, caseID, func(p *CaseProgress) (bool, error) {
		if p.Solved || p.GaveUp {
			return false, nil
		}
		p.GaveUp = true
		return true, nil
	})
}

// ResetAll deletes every record of the player.
func (t *Tracker) ResetAll(ctx context.Context, playerID string) error {
	unlock := t.locks.Lock(playerID)
	defer unlock()
	return t.store.Save(ctx, playerID, map[string]*CaseProgress{})
}

// Progress returns a copy of the player's record for caseID, or a fresh
// record if the case was never touched. Nothing is saved.
func (t *Tracker) Progress(ctx context.Context, playerID, caseID string) (*CaseProgress, error) {
	if _, err := t.catalog.ClueCount(caseID); err != nil {
		return nil, err
	}
	unlock := t.locks.Lock(playerID)
	defer unlock()

	all, err := t.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p, ok := all[caseID]; ok {
		return p.Clone(), nil
	}
	return New(), nil
}

// AllProgress returns copies of every stored record of the player.
func (t *Tracker) AllProgress(ctx context.Context, playerID string) (map[string]*CaseProgress, error) {
	unlock := t.locks.Lock(playerID)
	defer unlock()

	all, err := t.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return cloneAll(all), nil
}

// LiveScore estimates the score the case would earn if solved now. Solved
// cases report their stored score and given-up cases zero.
func (t *Tracker) LiveScore(ctx context.Context, playerID, caseID string) (*Estimate, error) {
	diff, err := t.catalog.Difficulty(caseID)
	if err != nil {
		return nil, err
	}
	p, err := t.Progress(ctx, playerID, caseID)
	if err != nil {
		return nil, err
	}
	switch {
	case p.Solved && p.Score != nil:
		return &Estimate{
			Breakdown: scoring.Breakdown{Multiplier: diff.Multiplier(), Score: *p.Score},
			Final:     true,
		}, nil
	case p.GaveUp:
		return &Estimate{Final: true}, nil
	}
	return &Estimate{Breakdown: scoring.Calculate(p.ScoreFactors(), diff, t.now(), false)}, nil
}
