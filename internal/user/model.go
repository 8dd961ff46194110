package user

import (
	"time"

	"gymops/internal/auth"
	"gymops/internal/civil"
)

// User is an account joined with its profile.
type User struct {
	ID           int         `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         auth.Role   `db:"role" json:"role"`
	FullName     string      `db:"full_name" json:"fullName"`
	PhoneNumber  *string     `db:"phone_number" json:"phoneNumber,omitempty"`
	DateOfBirth  *civil.Date `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	MemberCode   *string     `db:"member_code" json:"memberCode,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
}

type RegisterRequest struct {
	FullName    string  `json:"fullName" binding:"required,min=2,max=255"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=32"`
}

type CreateUserRequest struct {
	FullName    string    `json:"fullName" binding:"required,min=2,max=255"`
	Email       string    `json:"email" binding:"required,email"`
	Password    string    `json:"password" binding:"required,min=8"`
	Role        auth.Role `json:"role" binding:"required,oneof=member staff trainer owner"`
	PhoneNumber *string   `json:"phoneNumber" binding:"omitempty,max=32"`
}

type RegisterMemberRequest struct {
	FullName    string      `json:"fullName" binding:"required,min=2,max=255"`
	Email       string      `json:"email" binding:"required,email"`
	PhoneNumber *string     `json:"phoneNumber" binding:"omitempty,max=32"`
	DateOfBirth *civil.Date `json:"dateOfBirth"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

// RegisterMemberResponse carries the generated password. It is shown once
// and never stored in clear.
type RegisterMemberResponse struct {
	User              *User  `json:"user"`
	MemberCode        string `json:"memberCode"`
	TemporaryPassword string `json:"temporaryPassword"`
}

// NewAccount is what the repository persists for a new user.
type NewAccount struct {
	Email        string
	PasswordHash string
	Role         auth.Role
	FullName     string
	PhoneNumber  *string
	DateOfBirth  *civil.Date
	// MemberCode is set only for desk registrations.
	MemberCode *string
}
