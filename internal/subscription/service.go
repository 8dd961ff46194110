package subscription

import (
	"context"
	"errors"
	"time"

	"gymops/internal/api"
	"gymops/internal/auth"
	"gymops/internal/catalog"
	"gymops/internal/civil"
	"gymops/internal/logger"
	"gymops/internal/metrics"
	"gymops/internal/payment"
)

var (
	ErrPackageNotFound      = catalog.ErrPackageNotFound
	ErrMemberNotFound       = api.NotFound("MEMBER_NOT_FOUND", "member not found")
	ErrDuplicateMember      = api.Conflict("DUPLICATE_MEMBER", "member already has a subscription; use extend instead")
	ErrSubscriptionNotFound = api.NotFound("SUBSCRIPTION_NOT_FOUND", "subscription not found")
	ErrNoSessionsRemaining  = api.Conflict("NO_SESSIONS_REMAINING", "subscription has no usable sessions today")
	ErrOverlap              = api.Conflict("SUBSCRIPTION_OVERLAP", "subscription window overlaps an existing one")
	ErrPaymentFailed        = api.PaymentFailed("PAYMENT_FAILED", "payment failed")
)

// PackageLookup is the read-only view of the catalog the ledger needs.
type PackageLookup interface {
	GetActive(ctx context.Context, id int) (*catalog.Package, error)
}

type Notifier interface {
	SendSubscriptionReceipt(ctx context.Context, email, name, packageName string, start, end civil.Date) error
}

type Service interface {
	CreateInitial(ctx context.Context, memberID, packageID int) (*Subscription, error)
	Extend(ctx context.Context, memberID, packageID int) (*Subscription, error)
	// Purchase charges the member through the payment gateway and appends the
	// result. A declined charge is recorded as a failed row and reported as
	// ErrPaymentFailed alongside it.
	Purchase(ctx context.Context, memberID, packageID int, succeed bool) (*Subscription, error)
	Current(ctx context.Context, memberID int) (*Subscription, error)
	History(ctx context.Context, memberID int) ([]Subscription, error)
	ConsumeSession(ctx context.Context, subscriptionID int) (*Subscription, error)
	BelongsTo(ctx context.Context, subscriptionID, memberID int) (bool, error)
	RefreshActiveGauge(ctx context.Context) error
	Today() civil.Date
}

type service struct {
	repo     Repository
	packages PackageLookup
	payments payment.Gateway
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, packages PackageLookup, payments payment.Gateway, notifier Notifier, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     repo,
		packages: packages,
		payments: payments,
		notifier: notifier,
		now:      now,
	}
}

func (s *service) Today() civil.Date {
	return civil.DateOf(s.now())
}

// entry describes the row a ledger write appends.
type entry struct {
	flow          Flow
	status        PaymentStatus
	method        string
	transactionID *string
}

// nextWindow places a new subscription of durationDays after prior. A prior
// window still running today (its end date is today or later) pushes the
// new start to the day after it ends, so two completed windows never share
// a calendar day.
func nextWindow(prior *Subscription, today civil.Date, durationDays int) (start, end civil.Date) {
	start = today
	if prior != nil && !prior.EndDate.Before(today) {
		start = prior.EndDate.AddDays(1)
	}
	return start, start.AddDays(durationDays)
}

func (s *service) CreateInitial(ctx context.Context, memberID, packageID int) (*Subscription, error) {
	return s.append(ctx, memberID, packageID, entry{
		flow:   FlowInitial,
		status: PaymentCompleted,
		method: MethodStaffRecorded,
	})
}

func (s *service) Extend(ctx context.Context, memberID, packageID int) (*Subscription, error) {
	return s.append(ctx, memberID, packageID, entry{
		flow:   FlowExtend,
		status: PaymentCompleted,
		method: MethodStaffRecorded,
	})
}

func (s *service) Purchase(ctx context.Context, memberID, packageID int, succeed bool) (*Subscription, error) {
	pkg, err := s.packages.GetActive(ctx, packageID)
	if err != nil {
		return nil, err
	}

	result, err := s.payments.Charge(ctx, payment.Charge{
		MemberID:    memberID,
		AmountMinor: pkg.PriceMinor,
		Succeed:     succeed,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPayment(string(result.Status))

	e := entry{
		flow:          FlowPurchase,
		status:        PaymentCompleted,
		method:        result.Method,
		transactionID: &result.TransactionID,
	}
	if result.Status != payment.StatusCompleted {
		e.status = PaymentFailed
	}

	sub, err := s.appendPackage(ctx, memberID, pkg, e)
	if err != nil {
		return nil, err
	}

	if sub.PaymentStatus != PaymentCompleted {
		logger.Warn("simulated payment declined",
			"member_id", memberID,
			"package_id", packageID,
			"transaction_id", result.TransactionID,
		)
		return sub, ErrPaymentFailed
	}
	return sub, nil
}

func (s *service) append(ctx context.Context, memberID, packageID int, e entry) (*Subscription, error) {
	pkg, err := s.packages.GetActive(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return s.appendPackage(ctx, memberID, pkg, e)
}

// appendPackage reads the member's latest completed subscription and inserts
// the new one in a single transaction, holding the member's row lock so that
// concurrent writers cannot both see the same prior.
func (s *service) appendPackage(ctx context.Context, memberID int, pkg *catalog.Package, e entry) (*Subscription, error) {
	var (
		created *Subscription
		member  *Member
	)

	err := s.repo.InTx(ctx, func(tx Tx) error {
		var err error
		member, err = tx.LockMember(ctx, memberID)
		if err != nil {
			return err
		}
		if member.Role != string(auth.RoleMember) {
			return ErrMemberNotFound
		}

		prior, err := tx.LatestCompleted(ctx, memberID)
		if err != nil {
			return err
		}
		if e.flow == FlowInitial && prior != nil {
			return ErrDuplicateMember
		}

		start, end := nextWindow(prior, s.Today(), pkg.DurationDays)
		sessions := pkg.GrantedSessions()

		created, err = tx.Insert(ctx, &Subscription{
			MemberID:          memberID,
			PackageID:         pkg.ID,
			PackageName:       pkg.Name,
			PackageKind:       pkg.Kind,
			PriceMinor:        pkg.PriceMinor,
			DurationDays:      pkg.DurationDays,
			StartDate:         start,
			EndDate:           end,
			SessionsTotal:     sessions,
			SessionsRemaining: sessions,
			PaymentStatus:     e.status,
			PaymentMethod:     e.method,
			TransactionID:     e.transactionID,
		})
		return err
	})
	if err != nil {
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			logger.WithError(err).Error("ledger write aborted", "member_id", memberID, "flow", e.flow)
		}
		return nil, err
	}

	if created.PaymentStatus == PaymentCompleted {
		metrics.RecordSubscription(string(e.flow))
		logger.Info("subscription appended",
			"member_id", memberID,
			"subscription_id", created.ID,
			"flow", e.flow,
			"start_date", created.StartDate.String(),
			"end_date", created.EndDate.String(),
			"sessions_total", created.SessionsTotal,
		)
		s.sendReceipt(ctx, member, created)
	}

	return created, nil
}

func (s *service) sendReceipt(ctx context.Context, member *Member, sub *Subscription) {
	if s.notifier == nil || member == nil || member.Email == "" {
		return
	}
	if err := s.notifier.SendSubscriptionReceipt(ctx, member.Email, member.FullName, sub.PackageName, sub.StartDate, sub.EndDate); err != nil {
		logger.WithError(err).Warn("subscription receipt not queued", "subscription_id", sub.ID)
	}
}

func (s *service) Current(ctx context.Context, memberID int) (*Subscription, error) {
	return s.repo.Current(ctx, memberID, s.Today())
}

func (s *service) History(ctx context.Context, memberID int) ([]Subscription, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func (s *service) ConsumeSession(ctx context.Context, subscriptionID int) (*Subscription, error) {
	sub, ok, err := s.repo.ConsumeSession(ctx, subscriptionID, s.Today())
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.repo.GetByID(ctx, subscriptionID); err != nil {
			return nil, err
		}
		return nil, ErrNoSessionsRemaining
	}

	metrics.RecordSessionConsumed()
	logger.Info("session consumed",
		"subscription_id", sub.ID,
		"member_id", sub.MemberID,
		"sessions_remaining", sub.SessionsRemaining,
	)
	return sub, nil
}

func (s *service) BelongsTo(ctx context.Context, subscriptionID, memberID int) (bool, error) {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.MemberID == memberID, nil
}

func (s *service) RefreshActiveGauge(ctx context.Context) error {
	counts, err := s.repo.CountActiveByKind(ctx, s.Today())
	if err != nil {
		return err
	}
	metrics.SetActiveSubscriptions(counts)
	return nil
}
