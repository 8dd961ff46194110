package catalog

import "time"

type Kind string

const (
	KindTimeBased    Kind = "time-based"
	KindSessionBased Kind = "session-based"
)

func (k Kind) Valid() bool {
	return k == KindTimeBased || k == KindSessionBased
}

// Package is a purchasable membership offering. Rows are never edited once
// created; an owner can only deactivate them.
type Package struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	PriceMinor   int64     `db:"price_minor" json:"priceMinor"`
	DurationDays int       `db:"duration_days" json:"durationDays"`
	Kind         Kind      `db:"kind" json:"kind"`
	SessionCount int       `db:"session_count" json:"sessionCount"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// GrantedSessions is the session allotment a new subscription receives.
func (p *Package) GrantedSessions() int {
	if p.Kind == KindSessionBased {
		return p.SessionCount
	}
	return 0
}

type CreatePackageRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Description  string `json:"description"`
	PriceMinor   int64  `json:"priceMinor" binding:"gte=0"`
	DurationDays int    `json:"durationDays" binding:"required,gte=1"`
	Kind         Kind   `json:"kind" binding:"required,oneof=time-based session-based"`
	SessionCount int    `json:"sessionCount" binding:"gte=0"`
}
