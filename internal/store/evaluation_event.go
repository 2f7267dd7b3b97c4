package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendEvaluation(ctx context.Context, data EvaluationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	concepts, err := encodeStrings(data.MatchedConcepts)
	if err != nil {
		return fmt.Errorf("encode matched concepts: %w", err)
	}

	var score sql.NullInt64
	if data.Score != nil {
		score = sql.NullInt64{Int64: int64(*data.Score), Valid: true}
	}

	query, args := sqlite().Insert(tableEvaluations).
		Columns(
			colSequence, colTimestamp, colPlayerID, colCaseID, colPhase, colAttempt,
			colSubmission, colVerdict, colExplanation, colMatchedConcepts, colScore,
		).
		Values(
			seqNum, time.Now().UnixMilli(), data.PlayerID, data.CaseID, data.Phase, data.Attempt,
			data.Submission, data.Verdict, data.Explanation, concepts, score,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save evaluation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryEvaluations(ctx context.Context, playerID, caseID string, opts QueryOpts) ([]EvaluationEventRecord, error) {
	s := sqlite().Select(
		colID, colSequence, colTimestamp, colPlayerID, colCaseID, colPhase, colAttempt,
		colSubmission, colVerdict, colExplanation, colMatchedConcepts, colScore,
	).
		From(entsql.Table(tableEvaluations)).
		Where(entsql.EQ(colPlayerID, playerID)).
		OrderBy(entsql.Asc(colSequence))
	if caseID != "" {
		s.Where(entsql.EQ(colCaseID, caseID))
	}
	query, args := applyQueryOpts(s, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []EvaluationEventRecord
	for rows.Next() {
		var rec EvaluationEventRecord
		var ts int64
		var concepts string
		var score sql.NullInt64
		err := rows.Scan(
			&rec.ID, &rec.Sequence, &ts, &rec.PlayerID, &rec.CaseID, &rec.Phase, &rec.Attempt,
			&rec.Submission, &rec.Verdict, &rec.Explanation, &concepts, &score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		if rec.MatchedConcepts, err = decodeStrings(concepts); err != nil {
			return nil, fmt.Errorf("decode matched concepts: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			rec.Score = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// encodeStrings stores a string list as a JSON array; nil becomes "[]".
func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
