package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymops/internal/auth"
	"gymops/internal/db"

	"github.com/jmoiron/sqlx"
)

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.role, u.created_at,
	       COALESCE(p.full_name, '') AS full_name, p.phone_number, p.date_of_birth, p.member_code
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a NewAccount) (*User, error) {
	var created User

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &created, `
			INSERT INTO users (email, password_hash, role)
			VALUES ($1, $2, $3)
			RETURNING id, email, password_hash, role, created_at
		`, a.Email, a.PasswordHash, a.Role)
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, full_name, phone_number, date_of_birth, member_code)
			VALUES ($1, $2, $3, $4, $5)
		`, created.ID, a.FullName, a.PhoneNumber, a.DateOfBirth, a.MemberCode)
		if db.IsUniqueViolation(err) {
			return errMemberCodeTaken
		}
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created.FullName = a.FullName
	created.PhoneNumber = a.PhoneNumber
	created.DateOfBirth = a.DateOfBirth
	created.MemberCode = a.MemberCode
	return &created, nil
}

func (r *repository) findOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, userSelect+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `WHERE u.email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	return r.findOne(ctx, `WHERE u.id = $1`, id)
}

func (r *repository) FindByMemberCode(ctx context.Context, code string) (*User, error) {
	return r.findOne(ctx, `WHERE p.member_code = $1`, code)
}

func (r *repository) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	users := []User{}
	err := r.db.SelectContext(ctx, &users, userSelect+`WHERE u.role = $1 ORDER BY full_name ASC, u.id ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	return users, nil
}

func (r *repository) SaveResetToken(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

func (r *repository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	reset := false

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID int
		err := tx.GetContext(ctx, &userID, `
			SELECT user_id FROM password_reset_tokens
			WHERE token_hash = $1 AND expires_at > $2
			FOR UPDATE
		`, tokenHash, now)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("look up reset token: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("drop reset tokens: %w", err)
		}

		reset = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return reset, nil
}

func (r *repository) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return result.RowsAffected()
}
