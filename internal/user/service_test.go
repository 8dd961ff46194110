package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gymops/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, a NewAccount) (*User, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByMemberCode(ctx context.Context, code string) (*User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) SaveResetToken(ctx context.Context, tokenHash string, userID int, expiresAt time.Time) error {
	return m.Called(ctx, tokenHash, userID, expiresAt).Error(0)
}

func (m *MockRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, tokenHash, passwordHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockResetNotifier struct {
	mock.Mock
}

func (m *MockResetNotifier) SendPasswordReset(ctx context.Context, email, name, link string) error {
	return m.Called(ctx, email, name, link).Error(0)
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, notifier ResetNotifier) Service {
	return NewService(repo, notifier, Options{
		JWTSecret:     testSecret,
		ResetTokenTTL: 10 * time.Minute,
		ResetURLBase:  "https://gym.example/reset/",
		Now:           func() time.Time { return fixedNow },
		MemberCode:    sequentialCodes("HV000001", "HV000002", "HV000003", "HV000004", "HV000005", "HV000006"),
	})
}

func sequentialCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           RegisterRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			req:  RegisterRequest{FullName: "Test User", Email: " Test@Example.com ", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(a NewAccount) bool {
					return a.Email == "test@example.com" && a.Role == auth.RoleMember &&
						a.FullName == "Test User" && auth.CheckPassword(a.PasswordHash, "password123")
				})).Return(&User{ID: 1, Email: "test@example.com", Role: auth.RoleMember}, nil)
			},
		},
		{
			name: "email already exists",
			req:  RegisterRequest{FullName: "Test User", Email: "test@example.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)
			},
			expectedError: ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			resp, err := newTestService(repo, nil).Register(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)

			claims, err := auth.ValidateToken(resp.AccessToken, testSecret)
			require.NoError(t, err)
			assert.Equal(t, auth.RoleMember, claims.Role)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	tests := []struct {
		name          string
		password      string
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			password: "password123",
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").
					Return(&User{ID: 1, Email: "test@example.com", PasswordHash: hash, Role: auth.RoleStaff}, nil)
			},
		},
		{
			name:     "wrong password",
			password: "wrong",
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").
					Return(&User{ID: 1, PasswordHash: hash, Role: auth.RoleStaff}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "password123",
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, ErrUserNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "store failure is not masked",
			password: "password123",
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			resp, err := newTestService(repo, nil).Login(context.Background(), LoginRequest{Email: "test@example.com", Password: tt.password})

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.name == "store failure is not masked":
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, resp.AccessToken)
			}
		})
	}
}

func TestService_Refresh(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, 1).Return(&User{ID: 1, Email: "t@example.com", Role: auth.RoleTrainer}, nil)

	refresh, err := auth.GenerateRefreshToken(1, "t@example.com", auth.RoleMember, testSecret)
	require.NoError(t, err)

	resp, err := newTestService(repo, nil).Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(resp.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTrainer, claims.Role, "role is re-read from the store")

	_, err = newTestService(repo, nil).Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_RegisterMember(t *testing.T) {
	repo := new(MockRepository)
	var stored NewAccount
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(NewAccount) }).
		Return(&User{ID: 5, Role: auth.RoleMember}, nil)

	resp, err := newTestService(repo, nil).RegisterMember(context.Background(), RegisterMemberRequest{FullName: "New Member", Email: "n@example.com"})
	require.NoError(t, err)

	assert.Len(t, resp.TemporaryPassword, 18)
	assert.Equal(t, "HV000001", resp.MemberCode)
	assert.Equal(t, auth.RoleMember, stored.Role)
	require.NotNil(t, stored.MemberCode)
	assert.Equal(t, "HV000001", *stored.MemberCode)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, resp.TemporaryPassword))
}

func TestService_RegisterMember_CodeCollision(t *testing.T) {
	t.Run("retries with a fresh code", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a NewAccount) bool { return *a.MemberCode == "HV000001" })).
			Return(nil, errMemberCodeTaken).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a NewAccount) bool { return *a.MemberCode == "HV000002" })).
			Return(&User{ID: 6, Role: auth.RoleMember}, nil).Once()

		resp, err := newTestService(repo, nil).RegisterMember(context.Background(), RegisterMemberRequest{FullName: "Mia", Email: "m@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "HV000002", resp.MemberCode)
		repo.AssertExpectations(t)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, errMemberCodeTaken)

		_, err := newTestService(repo, nil).RegisterMember(context.Background(), RegisterMemberRequest{FullName: "Mia", Email: "m@example.com"})
		assert.ErrorIs(t, err, errMemberCodeTaken)
		repo.AssertNumberOfCalls(t, "Create", memberCodeAttempts)
	})

	t.Run("duplicate email is not retried", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, ErrEmailExists)

		_, err := newTestService(repo, nil).RegisterMember(context.Background(), RegisterMemberRequest{FullName: "Mia", Email: "m@example.com"})
		assert.ErrorIs(t, err, ErrEmailExists)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestService_FindMemberByCode(t *testing.T) {
	code := "HV000042"
	tests := []struct {
		name          string
		input         string
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name:  "normalizes input",
			input: "  hv000042 ",
			setupMock: func(m *MockRepository) {
				m.On("FindByMemberCode", mock.Anything, code).Return(&User{ID: 4, Role: auth.RoleMember, MemberCode: &code}, nil)
			},
		},
		{
			name:  "unknown code",
			input: "HV000042",
			setupMock: func(m *MockRepository) {
				m.On("FindByMemberCode", mock.Anything, code).Return(nil, ErrUserNotFound)
			},
			expectedError: ErrMemberCodeNotFound,
		},
		{
			name:  "code held by a non-member",
			input: "HV000042",
			setupMock: func(m *MockRepository) {
				m.On("FindByMemberCode", mock.Anything, code).Return(&User{ID: 9, Role: auth.RoleTrainer}, nil)
			},
			expectedError: ErrMemberCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			u, err := newTestService(repo, nil).FindMemberByCode(context.Background(), tt.input)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, u.ID)
		})
	}
}

func TestNewMemberCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := NewMemberCode()
		require.NoError(t, err)
		assert.Regexp(t, `^HV\d{6}$`, code)
	}
}

func TestService_CreateUser(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a NewAccount) bool { return a.Role == auth.RoleTrainer })).
		Return(&User{ID: 9, Role: auth.RoleTrainer}, nil)

	u, err := newTestService(repo, nil).CreateUser(context.Background(), CreateUserRequest{
		FullName: "Tara", Email: "tara@example.com", Password: "password123", Role: auth.RoleTrainer,
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTrainer, u.Role)

	_, err = newTestService(repo, nil).CreateUser(context.Background(), CreateUserRequest{Role: "admin", Password: "password123"})
	assert.Error(t, err)
}

func TestService_ForgotPassword(t *testing.T) {
	t.Run("known email stores a hash and mails the token", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := new(MockResetNotifier)
		repo.On("FindByEmail", mock.Anything, "a@example.com").Return(&User{ID: 3, Email: "a@example.com", FullName: "Ann"}, nil)

		var storedHash string
		repo.On("SaveResetToken", mock.Anything, mock.Anything, 3, fixedNow.Add(10*time.Minute)).
			Run(func(args mock.Arguments) { storedHash = args.String(1) }).
			Return(nil)

		var link string
		notifier.On("SendPasswordReset", mock.Anything, "a@example.com", "Ann", mock.Anything).
			Run(func(args mock.Arguments) { link = args.String(3) }).
			Return(nil)

		err := newTestService(repo, notifier).ForgotPassword(context.Background(), "A@example.com")
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(link, "https://gym.example/reset/"))
		token := strings.TrimPrefix(link, "https://gym.example/reset/")
		assert.Equal(t, auth.HashResetToken(token), storedHash)
		assert.NotEqual(t, token, storedHash)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := new(MockResetNotifier)
		repo.On("FindByEmail", mock.Anything, "x@example.com").Return(nil, ErrUserNotFound)

		err := newTestService(repo, notifier).ForgotPassword(context.Background(), "x@example.com")
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "SaveResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ResetPassword(t *testing.T) {
	token := "deadbeef"

	t.Run("valid", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ResetPassword", mock.Anything, auth.HashResetToken(token), mock.Anything, fixedNow).Return(true, nil)

		assert.NoError(t, newTestService(repo, nil).ResetPassword(context.Background(), token, "newpassword1"))
	})

	t.Run("expired or reused", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ResetPassword", mock.Anything, auth.HashResetToken(token), mock.Anything, fixedNow).Return(false, nil)

		err := newTestService(repo, nil).ResetPassword(context.Background(), token, "newpassword1")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestService_PurgeExpiredResetTokens(t *testing.T) {
	repo := new(MockRepository)
	repo.On("DeleteExpiredResetTokens", mock.Anything, fixedNow).Return(int64(4), nil)

	n, err := newTestService(repo, nil).PurgeExpiredResetTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
