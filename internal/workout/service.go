package workout

import (
	"context"

	"gymops/internal/api"
	"gymops/internal/auth"
	"gymops/internal/logger"
)

var (
	ErrSessionNotFound      = api.NotFound("WORKOUT_NOT_FOUND", "workout session not found")
	ErrTrainerRequired      = api.InvalidInput("TRAINER_ID_REQUIRED", "trainerId is required")
	ErrNotAssigned          = api.Forbidden("NOT_ASSIGNED", "trainer is not assigned to this member")
	ErrNotYourSession       = api.Forbidden("FORBIDDEN", "trainers may only update their own sessions")
	ErrSubscriptionMismatch = api.InvalidInput("SUBSCRIPTION_MISMATCH", "subscription does not belong to the member")
	ErrBadReference         = api.InvalidInput("INVALID_REFERENCE", "workout references a missing user, booking or subscription")
)

// Assignments answers whether a trainer has the member on their list.
type Assignments interface {
	IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error)
}

type SubscriptionOwnership interface {
	BelongsTo(ctx context.Context, subscriptionID, memberID int) (bool, error)
}

type Service interface {
	Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Session, error)
	Update(ctx context.Context, actor auth.Identity, sessionID int, req UpdateRequest) (*Session, error)
	ListByMember(ctx context.Context, memberID int) ([]Session, error)
}

type service struct {
	repo          Repository
	assignments   Assignments
	subscriptions SubscriptionOwnership
}

func NewService(repo Repository, assignments Assignments, subscriptions SubscriptionOwnership) Service {
	return &service{
		repo:          repo,
		assignments:   assignments,
		subscriptions: subscriptions,
	}
}

func (s *service) Create(ctx context.Context, actor auth.Identity, req CreateRequest) (*Session, error) {
	trainerID := req.TrainerID
	if actor.Is(auth.RoleTrainer) {
		trainerID = actor.UserID
	}
	if trainerID <= 0 {
		return nil, ErrTrainerRequired
	}

	assigned, err := s.assignments.IsAssigned(ctx, trainerID, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	if req.SubscriptionID != nil {
		ok, err := s.subscriptions.BelongsTo(ctx, *req.SubscriptionID, req.MemberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSubscriptionMismatch
		}
	}

	created, err := s.repo.Create(ctx, &Session{
		MemberID:        req.MemberID,
		TrainerID:       trainerID,
		SubscriptionID:  req.SubscriptionID,
		BookingID:       req.BookingID,
		SessionDatetime: req.SessionDatetime,
		DurationMinutes: req.DurationMinutes,
		ExercisePlan:    req.ExercisePlan,
		Status:          StatusPlanned,
		TrainerNotes:    req.TrainerNotes,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("workout session planned",
		"session_id", created.ID,
		"member_id", created.MemberID,
		"trainer_id", created.TrainerID,
	)
	return created, nil
}

func (s *service) Update(ctx context.Context, actor auth.Identity, sessionID int, req UpdateRequest) (*Session, error) {
	current, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if actor.Is(auth.RoleTrainer) && current.TrainerID != actor.UserID {
		return nil, ErrNotYourSession
	}

	updated, err := s.repo.Update(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	logger.Info("workout session updated", "session_id", updated.ID, "status", updated.Status)
	return updated, nil
}

func (s *service) ListByMember(ctx context.Context, memberID int) ([]Session, error) {
	return s.repo.ListByMember(ctx, memberID)
}
