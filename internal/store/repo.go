package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ProgressRecord is the persisted form of one player's progress on one case.
type ProgressRecord struct {
	CaseID             string
	CluesRevealed      int
	RootCauseAttempts  int
	RootCauseCorrect   bool
	SubmittedRootCause string
	SolutionAttempts   int
	Solved             bool
	GaveUp             bool
	HintsViewed        []string
	StartTime          time.Time // zero = timer not started
	Score              *int
	UpdatedAt          time.Time
}

// ProgressRepo persists per-player case progress. The whole map for a player
// is read and written at once.
type ProgressRepo interface {
	// Load returns every record for the player, ordered by case id.
	Load(ctx context.Context, playerID string) ([]ProgressRecord, error)

	// Save replaces the player's records with recs in a single transaction.
	// Cases absent from recs are deleted.
	Save(ctx context.Context, playerID string, recs []ProgressRecord) error

	// Players lists every player id with stored progress.
	Players(ctx context.Context) ([]string, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EvaluationEventData captures one judged submission.
type EvaluationEventData struct {
	PlayerID        string
	CaseID          string
	Phase           int
	Attempt         int
	Submission      string
	Verdict         string
	Explanation     string
	MatchedConcepts []string
	Score           *int // set on the solving submission
}

// EvaluationEventRecord is a stored evaluation event.
type EvaluationEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	EvaluationEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	// AppendEvaluation records a judged submission.
	AppendEvaluation(ctx context.Context, data EvaluationEventData) error

	// QueryEvaluations returns a player's evaluations for a case, oldest
	// first. An empty caseID matches every case.
	QueryEvaluations(ctx context.Context, playerID, caseID string, opts QueryOpts) ([]EvaluationEventRecord, error)
}
