// Package payment is a deterministic stand-in for a card gateway. The caller
// decides the outcome; nothing leaves the process.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const MethodSimulatedCard = "simulated_card"

var ErrInvalidAmount = errors.New("payment amount must not be negative")

type Charge struct {
	MemberID    int
	AmountMinor int64
	// Succeed selects the simulated outcome.
	Succeed bool
}

type Result struct {
	Status        Status `json:"status"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

type Gateway interface {
	Charge(ctx context.Context, charge Charge) (*Result, error)
}

type Simulator struct {
	newID func() string
}

func NewSimulator() *Simulator {
	return &Simulator{newID: uuid.NewString}
}

func (s *Simulator) Charge(ctx context.Context, charge Charge) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if charge.AmountMinor < 0 {
		return nil, ErrInvalidAmount
	}

	if charge.Succeed {
		return &Result{
			Status:        StatusCompleted,
			Method:        MethodSimulatedCard,
			TransactionID: "sim_" + s.newID(),
		}, nil
	}

	return &Result{
		Status:        StatusFailed,
		Method:        MethodSimulatedCard,
		TransactionID: "sim_fail_" + s.newID(),
	}, nil
}
