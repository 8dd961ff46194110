package booking

import (
	"time"

	"gymops/internal/civil"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	DefaultDurationMinutes = 60
	MaxDurationMinutes     = 480
)

type Booking struct {
	ID              int       `db:"id" json:"id"`
	MemberID        int       `db:"member_id" json:"memberId"`
	TrainerID       int       `db:"trainer_id" json:"trainerId"`
	SubscriptionID  *int      `db:"subscription_id" json:"subscriptionId,omitempty"`
	SessionDatetime time.Time `db:"session_datetime" json:"sessionDatetime"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Status          Status    `db:"status" json:"status"`
	NotesMember     string    `db:"notes_member" json:"notesMember"`
	NotesTrainer    string    `db:"notes_trainer" json:"notesTrainer"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// BookingWithTrainer is a member-facing booking row.
type BookingWithTrainer struct {
	Booking
	TrainerName string `db:"trainer_name" json:"trainerName"`
}

// MemberSummary is the display row returned by the assignment queries.
// PackageName and EndDate describe the member's latest completed
// subscription and are only filled for assigned members.
type MemberSummary struct {
	UserID      int         `db:"user_id" json:"userId"`
	FullName    string      `db:"full_name" json:"fullName"`
	Email       string      `db:"email" json:"email"`
	PhoneNumber string      `db:"phone_number" json:"phoneNumber"`
	PackageName *string     `db:"package_name" json:"packageName,omitempty"`
	EndDate     *civil.Date `db:"end_date" json:"endDate,omitempty"`
}

type CreateBookingRequest struct {
	MemberID        int       `json:"memberId" binding:"omitempty,gte=1"`
	TrainerID       int       `json:"trainerId" binding:"required,gte=1"`
	SubscriptionID  *int      `json:"subscriptionId" binding:"omitempty,gte=1"`
	SessionDatetime time.Time `json:"sessionDatetime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,gte=1,lte=480"`
	NotesMember     string    `json:"notesMember" binding:"max=2000"`
}

type TransitionRequest struct {
	Status       Status  `json:"status" binding:"required,oneof=completed cancelled"`
	NotesTrainer *string `json:"notesTrainer" binding:"omitempty,max=2000"`
}

type Response struct {
	Booking *Booking `json:"booking"`
}
