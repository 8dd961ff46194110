package booking

import (
	"context"
	"errors"
	"time"

	"gymops/internal/api"
	"gymops/internal/auth"
	"gymops/internal/logger"
	"gymops/internal/metrics"
	"gymops/internal/user"
)

var (
	ErrBookingNotFound      = api.NotFound("BOOKING_NOT_FOUND", "booking not found")
	ErrMemberNotFound       = api.NotFound("MEMBER_NOT_FOUND", "member not found")
	ErrTrainerNotFound      = api.NotFound("TRAINER_NOT_FOUND", "trainer not found")
	ErrInvalidTrainer       = api.InvalidInput("INVALID_TRAINER", "trainerId does not belong to a trainer")
	ErrTrainerRequired      = api.InvalidInput("TRAINER_ID_REQUIRED", "trainerId is required")
	ErrInvalidTransition    = api.InvalidInput("INVALID_TRANSITION", "only scheduled bookings can be completed or cancelled")
	ErrSubscriptionMismatch = api.InvalidInput("SUBSCRIPTION_MISMATCH", "subscription does not belong to the member")
	ErrBadReference         = api.InvalidInput("INVALID_REFERENCE", "booking references a missing user or subscription")
	ErrNotYourBooking       = api.Forbidden("FORBIDDEN", "trainers may only update their own bookings")
	ErrOtherTrainer         = api.Forbidden("FORBIDDEN", "trainers may only list their own members")
)

// UserLookup resolves booking participants.
type UserLookup interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

// SubscriptionOwnership checks that a referenced subscription is the member's.
type SubscriptionOwnership interface {
	BelongsTo(ctx context.Context, subscriptionID, memberID int) (bool, error)
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, email, name, trainerName string, when time.Time) error
	SendBookingCancellation(ctx context.Context, email, name, trainerName string, when time.Time) error
}

type Service interface {
	Create(ctx context.Context, actor auth.Identity, req CreateBookingRequest) (*Booking, error)
	Transition(ctx context.Context, actor auth.Identity, bookingID int, req TransitionRequest) (*Booking, error)
	ListMine(ctx context.Context, memberID int) ([]BookingWithTrainer, error)
	// AssignedMembers lists the trainer's members. A zero trainerID means the
	// calling trainer.
	AssignedMembers(ctx context.Context, actor auth.Identity, trainerID int) ([]MemberSummary, error)
	UnassignedMembers(ctx context.Context) ([]MemberSummary, error)
	IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error)
}

type service struct {
	repo          Repository
	users         UserLookup
	subscriptions SubscriptionOwnership
	notifier      Notifier
}

func NewService(repo Repository, users UserLookup, subscriptions SubscriptionOwnership, notifier Notifier) Service {
	return &service{
		repo:          repo,
		users:         users,
		subscriptions: subscriptions,
		notifier:      notifier,
	}
}

// participant loads a user and checks it holds the wanted role.
func (s *service) participant(ctx context.Context, id int, role auth.Role, missing, wrongRole error) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, missing
	}
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, wrongRole
	}
	return u, nil
}

func (s *service) Create(ctx context.Context, actor auth.Identity, req CreateBookingRequest) (*Booking, error) {
	memberID, err := actor.ScopeMember(req.MemberID)
	if err != nil {
		return nil, err
	}

	member, err := s.participant(ctx, memberID, auth.RoleMember, ErrMemberNotFound, ErrMemberNotFound)
	if err != nil {
		return nil, err
	}
	trainer, err := s.participant(ctx, req.TrainerID, auth.RoleTrainer, ErrTrainerNotFound, ErrInvalidTrainer)
	if err != nil {
		return nil, err
	}

	if req.SubscriptionID != nil {
		ok, err := s.subscriptions.BelongsTo(ctx, *req.SubscriptionID, memberID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSubscriptionMismatch
		}
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}

	created, err := s.repo.Create(ctx, &Booking{
		MemberID:        memberID,
		TrainerID:       trainer.ID,
		SubscriptionID:  req.SubscriptionID,
		SessionDatetime: req.SessionDatetime,
		DurationMinutes: duration,
		NotesMember:     req.NotesMember,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(actor.Role))
	logger.Info("booking created",
		"booking_id", created.ID,
		"member_id", created.MemberID,
		"trainer_id", created.TrainerID,
		"actor_role", actor.Role,
	)

	if s.notifier != nil {
		if err := s.notifier.SendBookingConfirmation(ctx, member.Email, member.FullName, trainer.FullName, created.SessionDatetime); err != nil {
			logger.WithError(err).Warn("booking confirmation not queued", "booking_id", created.ID)
		}
	}

	return created, nil
}

func (s *service) Transition(ctx context.Context, actor auth.Identity, bookingID int, req TransitionRequest) (*Booking, error) {
	if req.Status != StatusCompleted && req.Status != StatusCancelled {
		return nil, ErrInvalidTransition
	}

	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case auth.RoleTrainer:
		if current.TrainerID != actor.UserID {
			return nil, ErrNotYourBooking
		}
	case auth.RoleStaff, auth.RoleOwner:
	default:
		return nil, api.Forbidden("FORBIDDEN", "members cannot change booking status")
	}

	updated, ok, err := s.repo.Transition(ctx, bookingID, req.Status, req.NotesTrainer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	metrics.RecordBookingTransition(string(updated.Status))
	logger.Info("booking transitioned",
		"booking_id", updated.ID,
		"from", current.Status,
		"to", updated.Status,
		"actor_id", actor.UserID,
	)

	if updated.Status == StatusCancelled {
		s.notifyCancelled(ctx, updated)
	}
	return updated, nil
}

func (s *service) notifyCancelled(ctx context.Context, b *Booking) {
	if s.notifier == nil {
		return
	}
	member, err := s.users.FindByID(ctx, b.MemberID)
	if err != nil {
		logger.WithError(err).Warn("cancellation notice skipped", "booking_id", b.ID)
		return
	}
	trainerName := ""
	if trainer, err := s.users.FindByID(ctx, b.TrainerID); err == nil {
		trainerName = trainer.FullName
	}
	if err := s.notifier.SendBookingCancellation(ctx, member.Email, member.FullName, trainerName, b.SessionDatetime); err != nil {
		logger.WithError(err).Warn("cancellation notice not queued", "booking_id", b.ID)
	}
}

func (s *service) ListMine(ctx context.Context, memberID int) ([]BookingWithTrainer, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func (s *service) AssignedMembers(ctx context.Context, actor auth.Identity, trainerID int) ([]MemberSummary, error) {
	if actor.Is(auth.RoleTrainer) {
		if trainerID != 0 && trainerID != actor.UserID {
			return nil, ErrOtherTrainer
		}
		trainerID = actor.UserID
	}
	if trainerID <= 0 {
		return nil, ErrTrainerRequired
	}
	return s.repo.AssignedMembers(ctx, trainerID)
}

func (s *service) UnassignedMembers(ctx context.Context) ([]MemberSummary, error) {
	return s.repo.UnassignedMembers(ctx)
}

func (s *service) IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error) {
	return s.repo.IsAssigned(ctx, trainerID, memberID)
}
