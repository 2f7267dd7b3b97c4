package progress

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/incidentlab/internal/store"
)

// Store loads and saves the complete progress map of one player.
type Store interface {
	Load(ctx context.Context, playerID string) (map[string]*CaseProgress, error)
	Save(ctx context.Context, playerID string, all map[string]*CaseProgress) error
}

// RepoStore adapts a store.ProgressRepo.
type RepoStore struct {
	repo store.ProgressRepo
	now  func() time.Time
}

// NewRepoStore returns a Store backed by repo.
func NewRepoStore(repo store.ProgressRepo) *RepoStore {
	return &RepoStore{repo: repo, now: time.Now}
}

func (s *RepoStore) Load(ctx context.Context, playerID string) (map[string]*CaseProgress, error) {
	recs, err := s.repo.Load(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	out := make(map[string]*CaseProgress, len(recs))
	for _, r := range recs {
		out[r.CaseID] = &CaseProgress{
			CluesRevealed:      r.CluesRevealed,
			RootCauseAttempts:  r.RootCauseAttempts,
			RootCauseCorrect:   r.RootCauseCorrect,
			SubmittedRootCause: r.SubmittedRootCause,
			SolutionAttempts:   r.SolutionAttempts,
			Solved:             r.Solved,
			GaveUp:             r.GaveUp,
			HintsViewed:        r.HintsViewed,
			StartTime:          r.StartTime,
			Score:              r.Score,
		}
	}
	return out, nil
}

func (s *RepoStore) Save(ctx context.Context, playerID string, all map[string]*CaseProgress) error {
	now := s.now()
	recs := make([]store.ProgressRecord, 0, len(all))
	for _, id := range sortedKeys(all) {
		p := all[id]
		recs = append(recs, store.ProgressRecord{
			CaseID:             id,
			CluesRevealed:      p.CluesRevealed,
			RootCauseAttempts:  p.RootCauseAttempts,
			RootCauseCorrect:   p.RootCauseCorrect,
			SubmittedRootCause: p.SubmittedRootCause,
			SolutionAttempts:   p.SolutionAttempts,
			Solved:             p.Solved,
			GaveUp:             p.GaveUp,
			HintsViewed:        p.HintsViewed,
			StartTime:          p.StartTime,
			Score:              p.Score,
			UpdatedAt:          now,
		})
	}
	if err := s.repo.Save(ctx, playerID, recs); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// MemoryStore keeps progress in memory. Records are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	players map[string]map[string]*CaseProgress
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]map[string]*CaseProgress)}
}

func (s *MemoryStore) Load(ctx context.Context, playerID string) (map[string]*CaseProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.players[playerID]), nil
}

func (s *MemoryStore) Save(ctx context.Context, playerID string, all map[string]*CaseProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[playerID] = cloneAll(all)
	return nil
}

func cloneAll(in map[string]*CaseProgress) map[string]*CaseProgress {
	out := make(map[string]*CaseProgress, len(in))
	for id, p := range in {
		out[id] = p.Clone()
	}
	return out
}

func sortedKeys(m map[string]*CaseProgress) []string {
	return slices.Sorted(maps.Keys(m))
}
