package booking

import "context"

type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	// Transition moves a scheduled booking to a terminal status. It reports
	// false when the booking is not scheduled anymore.
	Transition(ctx context.Context, id int, to Status, notesTrainer *string) (*Booking, bool, error)
	ListByMember(ctx context.Context, memberID int) ([]BookingWithTrainer, error)
	AssignedMembers(ctx context.Context, trainerID int) ([]MemberSummary, error)
	UnassignedMembers(ctx context.Context) ([]MemberSummary, error)
	IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error)
}
