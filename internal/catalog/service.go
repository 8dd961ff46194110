package catalog

import (
	"context"

	"gymops/internal/api"
	"gymops/internal/logger"
)

var (
	ErrPackageNotFound     = api.NotFound("PACKAGE_NOT_FOUND", "package not found")
	ErrInvalidSessionCount = api.InvalidInput("INVALID_SESSION_COUNT", "session-based packages need a positive session count")
)

type Service interface {
	ListActive(ctx context.Context) ([]Package, error)
	Get(ctx context.Context, id int) (*Package, error)
	// GetActive returns the package only if it can still be sold.
	GetActive(ctx context.Context, id int) (*Package, error)
	Create(ctx context.Context, req CreatePackageRequest) (*Package, error)
	Deactivate(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListActive(ctx context.Context) ([]Package, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Package, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetActive(ctx context.Context, id int) (*Package, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrPackageNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, req CreatePackageRequest) (*Package, error) {
	p := &Package{
		Name:         req.Name,
		Description:  req.Description,
		PriceMinor:   req.PriceMinor,
		DurationDays: req.DurationDays,
		Kind:         req.Kind,
		SessionCount: req.SessionCount,
	}

	switch p.Kind {
	case KindSessionBased:
		if p.SessionCount < 1 {
			return nil, ErrInvalidSessionCount
		}
	case KindTimeBased:
		p.SessionCount = 0
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	logger.Info("package created", "package_id", created.ID, "kind", created.Kind, "duration_days", created.DurationDays)
	return created, nil
}

func (s *service) Deactivate(ctx context.Context, id int) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	logger.Info("package deactivated", "package_id", id)
	return nil
}
