package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymops/internal/civil"
	"gymops/internal/db"

	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, member_id, package_id, package_name, package_kind, price_minor, duration_days,
	start_date, end_date, sessions_total, sessions_remaining, payment_status, payment_method, transaction_id, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM member_subscriptions WHERE id = $1`

	var s Subscription
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %d: %w", id, err)
	}

	return &s, nil
}

func (r *repository) Current(ctx context.Context, memberID int, today civil.Date) (*Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM member_subscriptions
		WHERE member_id = $1
		  AND payment_status = 'completed'
		  AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC
		LIMIT 1
	`

	var s Subscription
	err := r.db.GetContext(ctx, &s, query, memberID, today)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current subscription for member %d: %w", memberID, err)
	}

	return &s, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM member_subscriptions
		WHERE member_id = $1
		ORDER BY end_date DESC, created_at DESC
	`

	subs := []Subscription{}
	if err := r.db.SelectContext(ctx, &subs, query, memberID); err != nil {
		return nil, fmt.Errorf("list subscriptions for member %d: %w", memberID, err)
	}

	return subs, nil
}

func (r *repository) ConsumeSession(ctx context.Context, id int, today civil.Date) (*Subscription, bool, error) {
	query := `
		UPDATE member_subscriptions
		SET sessions_remaining = sessions_remaining - 1
		WHERE id = $1
		  AND payment_status = 'completed'
		  AND sessions_remaining > 0
		  AND start_date <= $2 AND end_date >= $2
		RETURNING ` + subscriptionColumns

	var s Subscription
	err := r.db.GetContext(ctx, &s, query, id, today)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("consume session on subscription %d: %w", id, err)
	}

	return &s, true, nil
}

func (r *repository) CountActiveByKind(ctx context.Context, today civil.Date) (map[string]int, error) {
	query := `
		SELECT package_kind, COUNT(*) AS active
		FROM member_subscriptions
		WHERE payment_status = 'completed'
		  AND start_date <= $1 AND end_date >= $1
		GROUP BY package_kind
	`

	var rows []struct {
		Kind   string `db:"package_kind"`
		Active int    `db:"active"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, today); err != nil {
		return nil, fmt.Errorf("count active subscriptions: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Active
	}
	return counts, nil
}

type txRepository struct {
	tx *sqlx.Tx
}

func (t *txRepository) LockMember(ctx context.Context, memberID int) (*Member, error) {
	query := `
		SELECT u.id, u.role, u.email, COALESCE(p.full_name, '') AS full_name
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
		FOR UPDATE OF u
	`

	var m Member
	err := t.tx.GetContext(ctx, &m, query, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock member %d: %w", memberID, err)
	}

	return &m, nil
}

func (t *txRepository) LatestCompleted(ctx context.Context, memberID int) (*Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM member_subscriptions
		WHERE member_id = $1 AND payment_status = 'completed'
		ORDER BY end_date DESC, created_at DESC
		LIMIT 1
	`

	var s Subscription
	err := t.tx.GetContext(ctx, &s, query, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest subscription for member %d: %w", memberID, err)
	}

	return &s, nil
}

func (t *txRepository) Insert(ctx context.Context, s *Subscription) (*Subscription, error) {
	query := `
		INSERT INTO member_subscriptions (
			member_id, package_id, package_name, package_kind, price_minor, duration_days,
			start_date, end_date, sessions_total, sessions_remaining,
			payment_status, payment_method, transaction_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + subscriptionColumns

	var created Subscription
	err := t.tx.GetContext(ctx, &created, query,
		s.MemberID, s.PackageID, s.PackageName, s.PackageKind, s.PriceMinor, s.DurationDays,
		s.StartDate, s.EndDate, s.SessionsTotal, s.SessionsRemaining,
		s.PaymentStatus, s.PaymentMethod, s.TransactionID,
	)
	if db.IsExclusionViolation(err) {
		return nil, ErrOverlap
	}
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	return &created, nil
}
