package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymops/internal/db"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, member_id, trainer_id, subscription_id, session_datetime, duration_minutes,
	status, notes_member, notes_trainer, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (member_id, trainer_id, subscription_id, session_datetime, duration_minutes, notes_member)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.MemberID, b.TrainerID, b.SubscriptionID, b.SessionDatetime, b.DurationMinutes, b.NotesMember)
	if db.IsForeignKeyViolation(err) {
		return nil, ErrBadReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}

	return &b, nil
}

func (r *repository) Transition(ctx context.Context, id int, to Status, notesTrainer *string) (*Booking, bool, error) {
	query := `
		UPDATE bookings
		SET status = $2,
		    notes_trainer = COALESCE($3, notes_trainer),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id, to, notesTrainer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("transition booking %d: %w", id, err)
	}

	return &b, true, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]BookingWithTrainer, error) {
	query := `
		SELECT b.id, b.member_id, b.trainer_id, b.subscription_id, b.session_datetime, b.duration_minutes,
		       b.status, b.notes_member, b.notes_trainer, b.created_at, b.updated_at,
		       COALESCE(tp.full_name, t.email) AS trainer_name
		FROM bookings b
		JOIN users t ON t.id = b.trainer_id
		LEFT JOIN profiles tp ON tp.user_id = t.id
		WHERE b.member_id = $1
		ORDER BY b.session_datetime DESC, b.id DESC
	`

	bookings := []BookingWithTrainer{}
	if err := r.db.SelectContext(ctx, &bookings, query, memberID); err != nil {
		return nil, fmt.Errorf("list bookings for member %d: %w", memberID, err)
	}

	return bookings, nil
}

const memberSummaryColumns = `u.id AS user_id,
	COALESCE(p.full_name, '') AS full_name,
	u.email,
	COALESCE(p.phone_number, '') AS phone_number`

// AssignedMembers returns each member with at least one booking for the
// trainer once, however many bookings they share.
func (r *repository) AssignedMembers(ctx context.Context, trainerID int) ([]MemberSummary, error) {
	query := `
		SELECT ` + memberSummaryColumns + `, latest.package_name, latest.end_date
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		LEFT JOIN LATERAL (
			SELECT s.package_name, s.end_date
			FROM member_subscriptions s
			WHERE s.member_id = u.id AND s.payment_status = 'completed'
			ORDER BY s.end_date DESC, s.created_at DESC
			LIMIT 1
		) latest ON TRUE
		WHERE u.id IN (SELECT member_id FROM bookings WHERE trainer_id = $1)
		ORDER BY full_name ASC, u.id ASC
	`

	members := []MemberSummary{}
	if err := r.db.SelectContext(ctx, &members, query, trainerID); err != nil {
		return nil, fmt.Errorf("assigned members for trainer %d: %w", trainerID, err)
	}

	return members, nil
}

// UnassignedMembers returns members that appear in no booking at all,
// whatever its trainer or status.
func (r *repository) UnassignedMembers(ctx context.Context) ([]MemberSummary, error) {
	query := `
		SELECT ` + memberSummaryColumns + `
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.role = 'member'
		  AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.member_id = u.id)
		ORDER BY full_name ASC, u.id ASC
	`

	members := []MemberSummary{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("unassigned members: %w", err)
	}

	return members, nil
}

func (r *repository) IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE trainer_id = $1 AND member_id = $2)`

	ok, err := db.Exists(ctx, r.db, query, trainerID, memberID)
	if err != nil {
		return false, fmt.Errorf("check assignment of member %d to trainer %d: %w", memberID, trainerID, err)
	}
	return ok, nil
}
