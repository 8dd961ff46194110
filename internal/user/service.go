package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gymops/internal/api"
	"gymops/internal/auth"
	"gymops/internal/logger"
	"gymops/internal/metrics"
)

var (
	ErrUserNotFound        = api.NotFound("USER_NOT_FOUND", "user not found")
	ErrEmailExists         = api.Conflict("EMAIL_EXISTS", "email already registered")
	ErrInvalidCredentials  = api.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidRefreshToken = api.Unauthorized("INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
	ErrInvalidResetToken   = api.InvalidInput("INVALID_RESET_TOKEN", "reset token is invalid or expired")
	ErrMemberCodeNotFound  = api.NotFound("MEMBER_NOT_FOUND", "no member with that code")

	errMemberCodeTaken = errors.New("member code already in use")
)

const (
	memberCodePrefix   = "HV"
	memberCodeAttempts = 5
)

// NewMemberCode returns a desk code such as HV042917.
func NewMemberCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate member code: %w", err)
	}
	return fmt.Sprintf("%s%06d", memberCodePrefix, n.Int64()), nil
}

type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, name, link string) error
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	ListTrainers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResponse, error)
	// FindMemberByCode resolves a desk code to a member. Codes of non-members
	// are reported as not found.
	FindMemberByCode(ctx context.Context, code string) (*User, error)
	// ForgotPassword never reveals whether the address is registered.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

type Options struct {
	JWTSecret     string
	ResetTokenTTL time.Duration
	ResetURLBase  string
	Now           func() time.Time
	MemberCode    func() (string, error)
}

type service struct {
	repo     Repository
	notifier ResetNotifier
	opts     Options
}

func NewService(repo Repository, notifier ResetNotifier, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 10 * time.Minute
	}
	if opts.MemberCode == nil {
		opts.MemberCode = NewMemberCode
	}
	return &service{repo: repo, notifier: notifier, opts: opts}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) issue(u *User) (*AuthResponse, error) {
	accessToken, refreshToken, err := auth.GenerateTokens(u.ID, u.Email, u.Role, s.opts.JWTSecret, s.opts.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: u, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) create(ctx context.Context, a NewAccount, password string) (*User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a.Email = normalizeEmail(a.Email)
	a.PasswordHash = hash

	u, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u, err := s.create(ctx, NewAccount{
		Email:       req.Email,
		Role:        auth.RoleMember,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.opts.JWTSecret, s.opts.JWTSecret)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// Re-read the user so a role change takes effect on the next refresh.
	u, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	accessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.opts.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{AccessToken: accessToken, User: u}, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) ListTrainers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, auth.RoleTrainer)
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	role, err := auth.ParseRole(string(req.Role))
	if err != nil {
		return nil, api.InvalidInput("INVALID_ROLE", err.Error())
	}
	return s.create(ctx, NewAccount{
		Email:       req.Email,
		Role:        role,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	}, req.Password)
}

func (s *service) RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResponse, error) {
	password, err := auth.NewTemporaryPassword()
	if err != nil {
		return nil, err
	}

	// A clashing code fails only the profile insert, so a fresh code is tried
	// in a new transaction.
	for attempt := 1; ; attempt++ {
		code, err := s.opts.MemberCode()
		if err != nil {
			return nil, err
		}

		u, err := s.create(ctx, NewAccount{
			Email:       req.Email,
			Role:        auth.RoleMember,
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			DateOfBirth: req.DateOfBirth,
			MemberCode:  &code,
		}, password)
		if errors.Is(err, errMemberCodeTaken) && attempt < memberCodeAttempts {
			logger.Warn("member code collision, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		return &RegisterMemberResponse{User: u, MemberCode: code, TemporaryPassword: password}, nil
	}
}

func (s *service) FindMemberByCode(ctx context.Context, code string) (*User, error) {
	u, err := s.repo.FindByMemberCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrMemberCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleMember {
		return nil, ErrMemberCodeNotFound
	}
	return u, nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		logger.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.repo.SaveResetToken(ctx, hash, u.ID, s.opts.Now().Add(s.opts.ResetTokenTTL)); err != nil {
		return err
	}

	if s.notifier != nil {
		link := strings.TrimRight(s.opts.ResetURLBase, "/") + "/" + token
		if err := s.notifier.SendPasswordReset(ctx, u.Email, u.FullName, link); err != nil {
			logger.WithError(err).Warn("password reset email not queued", "user_id", u.ID)
		}
	}

	logger.Info("password reset token issued", "user_id", u.ID)
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	ok, err := s.repo.ResetPassword(ctx, auth.HashResetToken(token), hash, s.opts.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}

	logger.Info("password reset completed")
	return nil
}

func (s *service) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredResetTokens(ctx, s.opts.Now())
	if err != nil {
		return 0, err
	}
	metrics.RecordResetTokensPurged(n)
	if n > 0 {
		logger.Info("expired reset tokens purged", "count", n)
	}
	return n, nil
}
