package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, p *Package) (*Package, error)
	GetByID(ctx context.Context, id int) (*Package, error)
	ListActive(ctx context.Context) ([]Package, error)
	Deactivate(ctx context.Context, id int) error
}
