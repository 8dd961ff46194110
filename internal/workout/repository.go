package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymops/internal/db"

	"github.com/jmoiron/sqlx"
)

const sessionColumns = `id, member_id, trainer_id, subscription_id, booking_id, session_datetime, duration_minutes,
	exercise_plan, status, trainer_notes, evaluation_score, evaluation_comments, goal_completion_status,
	suggestions, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) (*Session, error) {
	query := `
		INSERT INTO workout_sessions (
			member_id, trainer_id, subscription_id, booking_id, session_datetime,
			duration_minutes, exercise_plan, status, trainer_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + sessionColumns

	var created Session
	err := r.db.GetContext(ctx, &created, query,
		s.MemberID, s.TrainerID, s.SubscriptionID, s.BookingID, s.SessionDatetime,
		s.DurationMinutes, s.ExercisePlan, s.Status, s.TrainerNotes,
	)
	if db.IsForeignKeyViolation(err) {
		return nil, ErrBadReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert workout session: %w", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM workout_sessions WHERE id = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workout session %d: %w", id, err)
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdateRequest) (*Session, error) {
	query := `
		UPDATE workout_sessions
		SET exercise_plan          = COALESCE($2, exercise_plan),
		    duration_minutes       = COALESCE($3, duration_minutes),
		    status                 = COALESCE($4, status),
		    trainer_notes          = COALESCE($5, trainer_notes),
		    evaluation_score       = COALESCE($6, evaluation_score),
		    evaluation_comments    = COALESCE($7, evaluation_comments),
		    goal_completion_status = COALESCE($8, goal_completion_status),
		    suggestions            = COALESCE($9, suggestions),
		    updated_at             = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns

	var s Session
	err := r.db.GetContext(ctx, &s, query, id,
		req.ExercisePlan, req.DurationMinutes, req.Status, req.TrainerNotes,
		req.EvaluationScore, req.EvaluationComments, req.GoalCompletionStatus, req.Suggestions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update workout session %d: %w", id, err)
	}

	return &s, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM workout_sessions
		WHERE member_id = $1
		ORDER BY session_datetime DESC, id DESC
	`

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, memberID); err != nil {
		return nil, fmt.Errorf("list workout sessions for member %d: %w", memberID, err)
	}

	return sessions, nil
}
