package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo over the case_progress table.
type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) Load(ctx context.Context, playerID string) ([]ProgressRecord, error) {
	query, args := sqlite().Select(
		colCaseID, colCluesRevealed, colRootCauseAttempts, colRootCauseCorrect,
		colSubmittedRootCause, colSolutionAttempts, colSolved, colGaveUp,
		colHintsViewed, colStartedAt, colScore, colUpdatedAt,
	).
		From(entsql.Table(tableProgress)).
		Where(entsql.EQ(colPlayerID, playerID)).
		OrderBy(colCaseID).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		var rec ProgressRecord
		var hints string
		var startedAt, updatedAt int64
		var score sql.NullInt64
		err := rows.Scan(
			&rec.CaseID, &rec.CluesRevealed, &rec.RootCauseAttempts, &rec.RootCauseCorrect,
			&rec.SubmittedRootCause, &rec.SolutionAttempts, &rec.Solved, &rec.GaveUp,
			&hints, &startedAt, &score, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		if rec.HintsViewed, err = decodeStrings(hints); err != nil {
			return nil, fmt.Errorf("decode hints for %s: %w", rec.CaseID, err)
		}
		if startedAt != 0 {
			rec.StartTime = time.UnixMilli(startedAt)
		}
		if score.Valid {
			v := int(score.Int64)
			rec.Score = &v
		}
		rec.UpdatedAt = time.UnixMilli(updatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *progressRepo) Save(ctx context.Context, playerID string, recs []ProgressRecord) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin progress tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query, args := sqlite().Delete(tableProgress).
		Where(entsql.EQ(colPlayerID, playerID)).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}

	now := time.Now()
	for _, rec := range recs {
		updated := rec.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		hints, encErr := encodeStrings(rec.HintsViewed)
		if encErr != nil {
			err = fmt.Errorf("encode hints for %s: %w", rec.CaseID, encErr)
			return err
		}
		var startedAt int64
		if !rec.StartTime.IsZero() {
			startedAt = rec.StartTime.UnixMilli()
		}
		var score sql.NullInt64
		if rec.Score != nil {
			score = sql.NullInt64{Int64: int64(*rec.Score), Valid: true}
		}

		query, args := sqlite().Insert(tableProgress).
			Columns(
				colPlayerID, colCaseID, colCluesRevealed, colRootCauseAttempts,
				colRootCauseCorrect, colSubmittedRootCause, colSolutionAttempts,
				colSolved, colGaveUp, colHintsViewed, colStartedAt, colScore, colUpdatedAt,
			).
			Values(
				playerID, rec.CaseID, rec.CluesRevealed, rec.RootCauseAttempts,
				rec.RootCauseCorrect, rec.SubmittedRootCause, rec.SolutionAttempts,
				rec.Solved, rec.GaveUp, hints, startedAt, score, updated.UnixMilli(),
			).
			Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save progress for %s: %w", rec.CaseID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit progress: %w", err)
	}
	return nil
}

func (r *progressRepo) Players(ctx context.Context) ([]string, error) {
	query, args := sqlite().Select(colPlayerID).
		From(entsql.Table(tableProgress)).
		GroupBy(colPlayerID).
		OrderBy(colPlayerID).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
