package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/jackc/pgx/v5"
)

const interviewColumns = `i.id, i.position_id, i.type::text, i.place::text, i.scheduled_date,
	i.duration_minutes, COALESCE(i.notes, ''), i.outcome::text, i.created_at, i.updated_at`

func scanInterview(row pgx.Row) (*types.Interview, error) {
	var iv types.Interview
	var typ, place, outcome string
	err := row.Scan(&iv.ID, &iv.PositionID, &typ, &place, &iv.ScheduledDate,
		&iv.DurationMinutes, &iv.Notes, &outcome, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	iv.Type = types.InterviewType(typ)
	iv.Place = types.InterviewPlace(place)
	iv.Outcome = types.InterviewOutcome(outcome)
	return &iv, nil
}

func collectInterviews(rows pgx.Rows) ([]types.Interview, error) {
	defer rows.Close()

	interviews := []types.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}
	return interviews, nil
}

// CreateInterview adds an interview to positionID, which must belong to userID.
// It returns nil when the position is not the user's.
func (db *DB) CreateInterview(ctx context.Context, userID, positionID uuid.UUID, req *types.CreateInterviewRequest) (*types.Interview, error) {
	outcome := req.Outcome
	if outcome == "" {
		outcome = types.OutcomePending
	}

	iv, err := scanInterview(db.pool.QueryRow(ctx,
		`WITH owned AS (SELECT id FROM positions WHERE id = $1 AND user_id = $2)
		 INSERT INTO interviews AS i (position_id, type, place, scheduled_date, duration_minutes, notes, outcome)
		 SELECT owned.id, $3::interview_type, $4::interview_place, $5, $6, NULLIF($7, ''), $8::interview_outcome
		 FROM owned
		 RETURNING `+interviewColumns,
		positionID, userID, string(req.Type), string(req.Place), req.ScheduledDate, req.DurationMinutes,
		req.Notes, string(outcome),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return iv, nil
}

// GetInterview retrieves an interview whose position belongs to userID; nil otherwise
func (db *DB) GetInterview(ctx context.Context, userID, id uuid.UUID) (*types.Interview, error) {
	iv, err := scanInterview(db.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews i JOIN positions p ON p.id = i.position_id
		 WHERE i.id = $1 AND p.user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return iv, nil
}

// UpdateInterview writes every editable field of iv; nil when iv is not userID's
func (db *DB) UpdateInterview(ctx context.Context, userID uuid.UUID, iv *types.Interview) (*types.Interview, error) {
	updated, err := scanInterview(db.pool.QueryRow(ctx,
		`UPDATE interviews AS i
		 SET type = $1::interview_type, place = $2::interview_place, scheduled_date = $3,
		     duration_minutes = $4, notes = NULLIF($5, ''), outcome = $6::interview_outcome
		 FROM positions p
		 WHERE i.id = $7 AND p.id = i.position_id AND p.user_id = $8
		 RETURNING `+interviewColumns,
		string(iv.Type), string(iv.Place), iv.ScheduledDate, iv.DurationMinutes, iv.Notes, string(iv.Outcome),
		iv.ID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}
	return updated, nil
}

// DeleteInterview removes an interview owned (through its position) by userID
func (db *DB) DeleteInterview(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM interviews i USING positions p
		 WHERE i.id = $1 AND p.id = i.position_id AND p.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInterviewsByPosition returns a position's interviews in schedule order
func (db *DB) ListInterviewsByPosition(ctx context.Context, userID, positionID uuid.UUID) ([]types.Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews i JOIN positions p ON p.id = i.position_id
		 WHERE i.position_id = $1 AND p.user_id = $2
		 ORDER BY i.scheduled_date ASC, i.id ASC`,
		positionID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return collectInterviews(rows)
}

// ListInterviewsByUser returns every interview across userID's positions, soonest first
func (db *DB) ListInterviewsByUser(ctx context.Context, userID uuid.UUID) ([]types.Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews i JOIN positions p ON p.id = i.position_id
		 WHERE p.user_id = $1
		 ORDER BY i.scheduled_date ASC, i.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return collectInterviews(rows)
}

// ListInterviewsForPositions returns the interviews of the given positions.
// An empty id list returns an empty result without querying.
func (db *DB) ListInterviewsForPositions(ctx context.Context, positionIDs []uuid.UUID) ([]types.Interview, error) {
	if len(positionIDs) == 0 {
		return []types.Interview{}, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews i
		 WHERE i.position_id = ANY($1)
		 ORDER BY i.scheduled_date ASC, i.id ASC`,
		positionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return collectInterviews(rows)
}
