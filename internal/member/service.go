package member

import (
	"context"
	"errors"

	"gymops/internal/api"
	"gymops/internal/auth"
	"gymops/internal/subscription"
	"gymops/internal/user"
)

var (
	ErrMemberNotFound = api.NotFound("MEMBER_NOT_FOUND", "member not found")
	ErrNotAssigned    = api.Forbidden("NOT_ASSIGNED", "member is not assigned to this trainer")
)

type Directory interface {
	GetByID(ctx context.Context, userID int) (*user.User, error)
	FindMemberByCode(ctx context.Context, code string) (*user.User, error)
}

type Ledger interface {
	Current(ctx context.Context, memberID int) (*subscription.Subscription, error)
	History(ctx context.Context, memberID int) ([]subscription.Subscription, error)
}

type Assignments interface {
	IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error)
}

type Service interface {
	LookupByCode(ctx context.Context, code string) (*CodeLookup, error)
	// Details returns a member with their ledger. Trainers only see members
	// they have a booking with.
	Details(ctx context.Context, actor auth.Identity, memberID int) (*Details, error)
}

type service struct {
	users       Directory
	ledger      Ledger
	assignments Assignments
}

func NewService(users Directory, ledger Ledger, assignments Assignments) Service {
	return &service{users: users, ledger: ledger, assignments: assignments}
}

func (s *service) LookupByCode(ctx context.Context, code string) (*CodeLookup, error) {
	m, err := s.users.FindMemberByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	current, err := s.ledger.Current(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &CodeLookup{Member: m, Current: current}, nil
}

func (s *service) Details(ctx context.Context, actor auth.Identity, memberID int) (*Details, error) {
	if actor.Is(auth.RoleTrainer) {
		ok, err := s.assignments.IsAssigned(ctx, actor.UserID, memberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotAssigned
		}
	}

	m, err := s.users.GetByID(ctx, memberID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.Role != auth.RoleMember {
		return nil, ErrMemberNotFound
	}

	history, err := s.ledger.History(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return &Details{Member: m, Subscriptions: history}, nil
}
