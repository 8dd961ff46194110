package workout

import "time"

const StatusPlanned = "Planned"

type Session struct {
	ID                   int       `db:"id" json:"id"`
	MemberID             int       `db:"member_id" json:"memberId"`
	TrainerID            int       `db:"trainer_id" json:"trainerId"`
	SubscriptionID       *int      `db:"subscription_id" json:"subscriptionId,omitempty"`
	BookingID            *int      `db:"booking_id" json:"bookingId,omitempty"`
	SessionDatetime      time.Time `db:"session_datetime" json:"sessionDatetime"`
	DurationMinutes      int       `db:"duration_minutes" json:"durationMinutes"`
	ExercisePlan         string    `db:"exercise_plan" json:"exercisePlan"`
	Status               string    `db:"status" json:"status"`
	TrainerNotes         string    `db:"trainer_notes" json:"trainerNotes"`
	EvaluationScore      *int      `db:"evaluation_score" json:"evaluationScore,omitempty"`
	EvaluationComments   string    `db:"evaluation_comments" json:"evaluationComments"`
	GoalCompletionStatus string    `db:"goal_completion_status" json:"goalCompletionStatus"`
	Suggestions          string    `db:"suggestions" json:"suggestions"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// CreateRequest plans a session. TrainerID is taken from the caller when
// a trainer plans it and is required otherwise.
type CreateRequest struct {
	MemberID        int       `json:"memberId" binding:"required,gte=1"`
	TrainerID       int       `json:"trainerId" binding:"omitempty,gte=1"`
	SubscriptionID  *int      `json:"subscriptionId" binding:"omitempty,gte=1"`
	BookingID       *int      `json:"bookingId" binding:"omitempty,gte=1"`
	SessionDatetime time.Time `json:"sessionDatetime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,gte=1,lte=480"`
	ExercisePlan    string    `json:"exercisePlan" binding:"required,max=10000"`
	TrainerNotes    string    `json:"trainerNotes" binding:"max=5000"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	ExercisePlan         *string `json:"exercisePlan" binding:"omitempty,max=10000"`
	DurationMinutes      *int    `json:"durationMinutes" binding:"omitempty,gte=1,lte=480"`
	Status               *string `json:"status" binding:"omitempty,oneof=Planned Completed Missed Cancelled"`
	TrainerNotes         *string `json:"trainerNotes" binding:"omitempty,max=5000"`
	EvaluationScore      *int    `json:"evaluationScore" binding:"omitempty,gte=0,lte=10"`
	EvaluationComments   *string `json:"evaluationComments" binding:"omitempty,max=5000"`
	GoalCompletionStatus *string `json:"goalCompletionStatus" binding:"omitempty,max=100"`
	Suggestions          *string `json:"suggestions" binding:"omitempty,max=5000"`
}
