package subscription

import (
	"context"

	"gymops/internal/civil"
)

type Repository interface {
	// InTx runs fn in one transaction; nothing fn wrote survives an error.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetByID(ctx context.Context, id int) (*Subscription, error)
	// Current returns nil, nil when no completed subscription contains today.
	Current(ctx context.Context, memberID int, today civil.Date) (*Subscription, error)
	ListByMember(ctx context.Context, memberID int) ([]Subscription, error)
	// ConsumeSession decrements the balance of a current completed
	// subscription with sessions left; ok is false when nothing matched.
	ConsumeSession(ctx context.Context, id int, today civil.Date) (sub *Subscription, ok bool, err error)
	CountActiveByKind(ctx context.Context, today civil.Date) (map[string]int, error)
}

// Tx is the write side of the ledger, only reachable inside InTx.
type Tx interface {
	// LockMember row-locks the user so concurrent ledger writes for one
	// member serialize, even before the member has any subscription.
	LockMember(ctx context.Context, memberID int) (*Member, error)
	// LatestCompleted returns nil, nil when the member has no completed row.
	LatestCompleted(ctx context.Context, memberID int) (*Subscription, error)
	Insert(ctx context.Context, s *Subscription) (*Subscription, error)
}
