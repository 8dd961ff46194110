package subscription

import (
	"time"

	"gymops/internal/catalog"
	"gymops/internal/civil"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// MethodStaffRecorded marks subscriptions entered by staff at the desk.
const MethodStaffRecorded = "staff_recorded"

type Flow string

const (
	FlowInitial  Flow = "initial"
	FlowExtend   Flow = "extend"
	FlowPurchase Flow = "purchase"
)

// Subscription is one entry in a member's ledger. Package fields are copied
// at creation and never re-read from the catalog.
type Subscription struct {
	ID                int           `db:"id" json:"id"`
	MemberID          int           `db:"member_id" json:"memberId"`
	PackageID         int           `db:"package_id" json:"packageId"`
	PackageName       string        `db:"package_name" json:"packageName"`
	PackageKind       catalog.Kind  `db:"package_kind" json:"packageKind"`
	PriceMinor        int64         `db:"price_minor" json:"priceMinor"`
	DurationDays      int           `db:"duration_days" json:"durationDays"`
	StartDate         civil.Date    `db:"start_date" json:"startDate"`
	EndDate           civil.Date    `db:"end_date" json:"endDate"`
	SessionsTotal     int           `db:"sessions_total" json:"sessionsTotal"`
	SessionsRemaining int           `db:"sessions_remaining" json:"sessionsRemaining"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaymentMethod     string        `db:"payment_method" json:"paymentMethod"`
	TransactionID     *string       `db:"transaction_id" json:"transactionId,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
}

// Contains reports whether day falls inside the inclusive [start, end] window.
func (s *Subscription) Contains(day civil.Date) bool {
	return !day.Before(s.StartDate) && !day.After(s.EndDate)
}

// Member is the ledger's view of the subscription owner, read under lock.
type Member struct {
	ID       int    `db:"id"`
	Role     string `db:"role"`
	Email    string `db:"email"`
	FullName string `db:"full_name"`
}

type InitialRequest struct {
	MemberID  int `json:"memberId" binding:"required,gte=1"`
	PackageID int `json:"packageId" binding:"required,gte=1"`
}

type ExtendRequest struct {
	MemberID     int `json:"memberId" binding:"required,gte=1"`
	NewPackageID int `json:"newPackageId" binding:"required,gte=1"`
}

type SimulatePaymentRequest struct {
	PackageID     int  `json:"packageId" binding:"required,gte=1"`
	ShouldSucceed bool `json:"shouldSucceed"`
}

type Response struct {
	Subscription *Subscription `json:"subscription"`
}
