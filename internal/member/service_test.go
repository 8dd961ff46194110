package member

import (
	"context"
	"errors"
	"testing"

	"gymops/internal/auth"
	"gymops/internal/civil"
	"gymops/internal/subscription"
	"gymops/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	staffActor   = auth.Identity{UserID: 2, Role: auth.RoleStaff}
	trainerActor = auth.Identity{UserID: 10, Role: auth.RoleTrainer}
	ownerActor   = auth.Identity{UserID: 1, Role: auth.RoleOwner}
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetByID(ctx context.Context, userID int) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockDirectory) FindMemberByCode(ctx context.Context, code string) (*user.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Current(ctx context.Context, memberID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockLedger) History(ctx context.Context, memberID int) ([]subscription.Subscription, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

type MockAssignments struct {
	mock.Mock
}

func (m *MockAssignments) IsAssigned(ctx context.Context, trainerID, memberID int) (bool, error) {
	args := m.Called(ctx, trainerID, memberID)
	return args.Bool(0), args.Error(1)
}

func mia() *user.User {
	code := "HV000042"
	return &user.User{ID: 4, Role: auth.RoleMember, FullName: "Mia", MemberCode: &code}
}

func TestService_LookupByCode(t *testing.T) {
	t.Run("member with a current window", func(t *testing.T) {
		users, ledger := new(MockDirectory), new(MockLedger)
		users.On("FindMemberByCode", mock.Anything, "HV000042").Return(mia(), nil)
		ledger.On("Current", mock.Anything, 4).Return(&subscription.Subscription{
			ID: 7, PackageName: "Monthly", EndDate: civil.NewDate(2025, 7, 15),
		}, nil)

		got, err := NewService(users, ledger, nil).LookupByCode(context.Background(), "HV000042")
		require.NoError(t, err)
		assert.Equal(t, "Mia", got.Member.FullName)
		require.NotNil(t, got.Current)
		assert.Equal(t, "Monthly", got.Current.PackageName)
		assert.Equal(t, "2025-07-15", got.Current.EndDate.String())
	})

	t.Run("member without a current window", func(t *testing.T) {
		users, ledger := new(MockDirectory), new(MockLedger)
		users.On("FindMemberByCode", mock.Anything, "HV000042").Return(mia(), nil)
		ledger.On("Current", mock.Anything, 4).Return(nil, nil)

		got, err := NewService(users, ledger, nil).LookupByCode(context.Background(), "HV000042")
		require.NoError(t, err)
		assert.Nil(t, got.Current)
	})

	t.Run("unknown code", func(t *testing.T) {
		users, ledger := new(MockDirectory), new(MockLedger)
		users.On("FindMemberByCode", mock.Anything, "HV000000").Return(nil, user.ErrMemberCodeNotFound)

		_, err := NewService(users, ledger, nil).LookupByCode(context.Background(), "HV000000")
		assert.ErrorIs(t, err, user.ErrMemberCodeNotFound)
		ledger.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
	})
}

func TestService_Details(t *testing.T) {
	history := []subscription.Subscription{{ID: 8, MemberID: 4}, {ID: 7, MemberID: 4}}

	tests := []struct {
		name          string
		actor         auth.Identity
		memberID      int
		setupMock     func(*MockDirectory, *MockLedger, *MockAssignments)
		expectedError error
	}{
		{
			name:     "assigned trainer",
			actor:    trainerActor,
			memberID: 4,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				a.On("IsAssigned", mock.Anything, 10, 4).Return(true, nil)
				u.On("GetByID", mock.Anything, 4).Return(mia(), nil)
				l.On("History", mock.Anything, 4).Return(history, nil)
			},
		},
		{
			name:     "unassigned trainer",
			actor:    trainerActor,
			memberID: 4,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				a.On("IsAssigned", mock.Anything, 10, 4).Return(false, nil)
			},
			expectedError: ErrNotAssigned,
		},
		{
			name:     "assignment check fails",
			actor:    trainerActor,
			memberID: 4,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				a.On("IsAssigned", mock.Anything, 10, 4).Return(false, errors.New("db down"))
			},
			expectedError: errors.New("db down"),
		},
		{
			name:     "staff skips the assignment check",
			actor:    staffActor,
			memberID: 4,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				u.On("GetByID", mock.Anything, 4).Return(mia(), nil)
				l.On("History", mock.Anything, 4).Return(history, nil)
			},
		},
		{
			name:     "missing user",
			actor:    ownerActor,
			memberID: 99,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				u.On("GetByID", mock.Anything, 99).Return(nil, user.ErrUserNotFound)
			},
			expectedError: ErrMemberNotFound,
		},
		{
			name:     "not a member",
			actor:    ownerActor,
			memberID: 10,
			setupMock: func(u *MockDirectory, l *MockLedger, a *MockAssignments) {
				u.On("GetByID", mock.Anything, 10).Return(&user.User{ID: 10, Role: auth.RoleTrainer}, nil)
			},
			expectedError: ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, ledger, assignments := new(MockDirectory), new(MockLedger), new(MockAssignments)
			tt.setupMock(users, ledger, assignments)

			got, err := NewService(users, ledger, assignments).Details(context.Background(), tt.actor, tt.memberID)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				ledger.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, got.Member.ID)
			assert.Len(t, got.Subscriptions, 2)
			assignments.AssertExpectations(t)
		})
	}
}
