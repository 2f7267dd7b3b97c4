package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableProgress    = "case_progress"
	tableEvaluations = "evaluation_events"
	tableLLMRequests = "llm_request_events"

	colID                 = "id"
	colSequence           = "sequence"
	colTimestamp          = "timestamp"
	colPlayerID           = "player_id"
	colCaseID             = "case_id"
	colCluesRevealed      = "clues_revealed"
	colRootCauseAttempts  = "root_cause_attempts"
	colRootCauseCorrect   = "root_cause_correct"
	colSubmittedRootCause = "submitted_root_cause"
	colSolutionAttempts   = "solution_attempts"
	colSolved             = "solved"
	colGaveUp             = "gave_up"
	colHintsViewed        = "hints_viewed"
	colStartedAt          = "started_at"
	colScore              = "score"
	colUpdatedAt          = "updated_at"

	colPhase           = "phase"
	colAttempt         = "attempt"
	colSubmission      = "submission"
	colVerdict         = "verdict"
	colExplanation     = "explanation"
	colMatchedConcepts = "matched_concepts"

	colProvider     = "provider"
	colModel        = "model"
	colPurpose      = "purpose"
	colInputTokens  = "input_tokens"
	colOutputTokens = "output_tokens"
	colLatencyMs    = "latency_ms"
	colSuccess      = "success"
	colErrorMessage = "error_message"
	colRequestBody  = "request_body"
	colResponseBody = "response_body"
)

// Tables are declared by hand and handed to ent's migrator, so the store
// gets ent's schema diffing without a generated client.
var (
	progressColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colPlayerID, Type: field.TypeString},
		{Name: colCaseID, Type: field.TypeString},
		{Name: colCluesRevealed, Type: field.TypeInt, Default: 2},
		{Name: colRootCauseAttempts, Type: field.TypeInt, Default: 0},
		{Name: colRootCauseCorrect, Type: field.TypeBool, Default: false},
		{Name: colSubmittedRootCause, Type: field.TypeString, Default: ""},
		{Name: colSolutionAttempts, Type: field.TypeInt, Default: 0},
		{Name: colSolved, Type: field.TypeBool, Default: false},
		{Name: colGaveUp, Type: field.TypeBool, Default: false},
		{Name: colHintsViewed, Type: field.TypeString, Default: "[]"},
		{Name: colStartedAt, Type: field.TypeInt64, Default: 0},
		{Name: colScore, Type: field.TypeInt, Nullable: true},
		{Name: colUpdatedAt, Type: field.TypeInt64},
	}
	progressTable = &schema.Table{
		Name:       tableProgress,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "caseprogress_player_id_case_id",
				Unique:  true,
				Columns: []*schema.Column{progressColumns[1], progressColumns[2]},
			},
		},
	}

	evaluationColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeInt64},
		{Name: colPlayerID, Type: field.TypeString},
		{Name: colCaseID, Type: field.TypeString},
		{Name: colPhase, Type: field.TypeInt},
		{Name: colAttempt, Type: field.TypeInt},
		{Name: colSubmission, Type: field.TypeString},
		{Name: colVerdict, Type: field.TypeString},
		{Name: colExplanation, Type: field.TypeString, Default: ""},
		{Name: colMatchedConcepts, Type: field.TypeString, Default: "[]"},
		{Name: colScore, Type: field.TypeInt, Nullable: true},
	}
	evaluationTable = &schema.Table{
		Name:       tableEvaluations,
		Columns:    evaluationColumns,
		PrimaryKey: []*schema.Column{evaluationColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "evaluationevent_player_id_case_id",
				Columns: []*schema.Column{evaluationColumns[3], evaluationColumns[4]},
			},
		},
	}

	llmRequestColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeInt64},
		{Name: colProvider, Type: field.TypeString},
		{Name: colModel, Type: field.TypeString},
		{Name: colPurpose, Type: field.TypeString},
		{Name: colInputTokens, Type: field.TypeInt, Default: 0},
		{Name: colOutputTokens, Type: field.TypeInt, Default: 0},
		{Name: colLatencyMs, Type: field.TypeInt64, Default: 0},
		{Name: colSuccess, Type: field.TypeBool},
		{Name: colErrorMessage, Type: field.TypeString, Default: ""},
		{Name: colRequestBody, Type: field.TypeString, Default: ""},
		{Name: colResponseBody, Type: field.TypeString, Default: ""},
	}
	llmRequestTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Columns: []*schema.Column{llmRequestColumns[5]},
			},
		},
	}

	// tables lists everything the migrator manages.
	tables = []*schema.Table{progressTable, evaluationTable, llmRequestTable}
)
