package workout

import "context"

type Repository interface {
	Create(ctx context.Context, s *Session) (*Session, error)
	GetByID(ctx context.Context, id int) (*Session, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Session, error)
	ListByMember(ctx context.Context, memberID int) ([]Session, error)
}
