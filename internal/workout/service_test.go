package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymops/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, s *Session) (*Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int, req UpdateRequest) (*Session, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) ListByMember(ctx context.Context, memberID int) ([]Session, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Session), args.Error(1)
}

type MockAssignments struct {
	mock.Mock
}

func (m *MockAssignments) IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error) {
	args := m.Called(ctx, trainerID, memberID)
	return args.Bool(0), args.Error(1)
}

type MockOwnership struct {
	mock.Mock
}

func (m *MockOwnership) BelongsTo(ctx context.Context, subscriptionID, memberID int) (bool, error) {
	args := m.Called(ctx, subscriptionID, memberID)
	return args.Bool(0), args.Error(1)
}

var (
	trainer = auth.Identity{UserID: 10, Role: auth.RoleTrainer}
	staff   = auth.Identity{UserID: 20, Role: auth.RoleStaff}
	at      = time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
)

func TestCreate(t *testing.T) {
	subID := 7

	tests := []struct {
		name      string
		actor     auth.Identity
		req       CreateRequest
		setupMock func(*MockRepository, *MockAssignments, *MockOwnership)
		wantErr   error
	}{
		{
			name:  "trainer plans for assigned member",
			actor: trainer,
			req:   CreateRequest{MemberID: 1, TrainerID: 99, SessionDatetime: at, DurationMinutes: 45, ExercisePlan: "squats"},
			setupMock: func(r *MockRepository, a *MockAssignments, o *MockOwnership) {
				a.On("IsAssigned", mock.Anything, 10, 1).Return(true, nil)
				r.On("Create", mock.Anything, mock.MatchedBy(func(s *Session) bool {
					return s.TrainerID == 10 && s.Status == StatusPlanned
				})).Return(&Session{ID: 1, TrainerID: 10, Status: StatusPlanned}, nil)
			},
		},
		{
			name:  "trainer not assigned",
			actor: trainer,
			req:   CreateRequest{MemberID: 2, SessionDatetime: at, DurationMinutes: 45, ExercisePlan: "squats"},
			setupMock: func(r *MockRepository, a *MockAssignments, o *MockOwnership) {
				a.On("IsAssigned", mock.Anything, 10, 2).Return(false, nil)
			},
			wantErr: ErrNotAssigned,
		},
		{
			name:      "staff must name the trainer",
			actor:     staff,
			req:       CreateRequest{MemberID: 1, SessionDatetime: at, DurationMinutes: 45, ExercisePlan: "squats"},
			setupMock: func(r *MockRepository, a *MockAssignments, o *MockOwnership) {},
			wantErr:   ErrTrainerRequired,
		},
		{
			name:  "subscription of another member",
			actor: staff,
			req:   CreateRequest{MemberID: 1, TrainerID: 10, SubscriptionID: &subID, SessionDatetime: at, DurationMinutes: 45, ExercisePlan: "squats"},
			setupMock: func(r *MockRepository, a *MockAssignments, o *MockOwnership) {
				a.On("IsAssigned", mock.Anything, 10, 1).Return(true, nil)
				o.On("BelongsTo", mock.Anything, 7, 1).Return(false, nil)
			},
			wantErr: ErrSubscriptionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, assignments, ownership := new(MockRepository), new(MockAssignments), new(MockOwnership)
			tt.setupMock(repo, assignments, ownership)
			svc := NewService(repo, assignments, ownership)

			session, err := svc.Create(context.Background(), tt.actor, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPlanned, session.Status)
			repo.AssertExpectations(t)
		})
	}
}

func TestUpdate(t *testing.T) {
	score := 8
	req := UpdateRequest{EvaluationScore: &score}

	t.Run("own session", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(&Session{ID: 3, TrainerID: 10}, nil)
		repo.On("Update", mock.Anything, 3, req).Return(&Session{ID: 3, EvaluationScore: &score}, nil)

		got, err := NewService(repo, nil, nil).Update(context.Background(), trainer, 3, req)
		require.NoError(t, err)
		assert.Equal(t, 8, *got.EvaluationScore)
	})

	t.Run("another trainer's session", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(&Session{ID: 3, TrainerID: 11}, nil)

		_, err := NewService(repo, nil, nil).Update(context.Background(), trainer, 3, req)
		assert.ErrorIs(t, err, ErrNotYourSession)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("staff may update any", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(&Session{ID: 3, TrainerID: 11}, nil)
		repo.On("Update", mock.Anything, 3, req).Return(&Session{ID: 3}, nil)

		_, err := NewService(repo, nil, nil).Update(context.Background(), staff, 3, req)
		assert.NoError(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(nil, ErrSessionNotFound)

		_, err := NewService(repo, nil, nil).Update(context.Background(), staff, 3, req)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestListByMember(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByMember", mock.Anything, 1).Return(nil, errors.New("db down"))

	_, err := NewService(repo, nil, nil).ListByMember(context.Background(), 1)
	assert.Error(t, err)
}
