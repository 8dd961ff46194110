package user

import (
	"context"
	"time"

	"gymops/internal/auth"
)

type Repository interface {
	// Create inserts the user and its profile in one transaction.
	Create(ctx context.Context, a NewAccount) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByMemberCode(ctx context.Context, code string) (*User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]User, error)

	SaveResetToken(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error
	// ResetPassword swaps the password of the token's owner and drops all of
	// that user's tokens. It reports false if the token is unknown or expired.
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error)
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
