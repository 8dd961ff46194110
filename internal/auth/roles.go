package auth

import (
	"fmt"
	"strings"

	"gymops/internal/api"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleMember  Role = "member"
	RoleStaff   Role = "staff"
	RoleTrainer Role = "trainer"
	RoleOwner   Role = "owner"
)

var Roles = []Role{RoleMember, RoleStaff, RoleTrainer, RoleOwner}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleTrainer, RoleOwner:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Capability names an operation gated by role.
type Capability string

const (
	CapSubscriptionWrite   Capability = "subscription:write"
	CapSubscriptionRead    Capability = "subscription:read"
	CapSubscriptionConsume Capability = "subscription:consume"
	CapPaymentSimulate     Capability = "payment:simulate"
	CapBookingCreate       Capability = "booking:create"
	CapBookingTransition   Capability = "booking:transition"
	CapBookingReadOwn      Capability = "booking:read-own"
	CapAssignmentRead      Capability = "assignment:read"
	CapWorkoutWrite        Capability = "workout:write"
	CapWorkoutRead         Capability = "workout:read"
	CapPackageManage       Capability = "package:manage"
	CapMemberRegister      Capability = "member:register"
	CapMemberLookup        Capability = "member:lookup"
	CapMemberDetail        Capability = "member:detail"
	CapUserManage          Capability = "user:manage"
)

// capabilities is the single source of truth for role gating. Ownership rules
// (a member acting only on themselves, a trainer only on their own bookings)
// are enforced by the services on top of this table.
var capabilities = map[Capability][]Role{
	CapSubscriptionWrite:   {RoleStaff, RoleOwner},
	CapSubscriptionRead:    {RoleMember, RoleTrainer, RoleStaff, RoleOwner},
	CapSubscriptionConsume: {RoleTrainer, RoleStaff, RoleOwner},
	CapPaymentSimulate:     {RoleMember},
	CapBookingCreate:       {RoleMember, RoleTrainer, RoleStaff, RoleOwner},
	CapBookingTransition:   {RoleTrainer, RoleStaff, RoleOwner},
	CapBookingReadOwn:      {RoleMember},
	CapAssignmentRead:      {RoleTrainer, RoleStaff, RoleOwner},
	CapWorkoutWrite:        {RoleTrainer, RoleStaff, RoleOwner},
	CapWorkoutRead:         {RoleMember, RoleTrainer, RoleStaff, RoleOwner},
	CapPackageManage:       {RoleOwner},
	CapMemberRegister:      {RoleStaff, RoleOwner},
	CapMemberLookup:        {RoleStaff, RoleOwner},
	CapMemberDetail:        {RoleTrainer, RoleStaff, RoleOwner},
	CapUserManage:          {RoleOwner},
}

// Allowed reports whether role holds capability. Unknown capabilities are
// denied.
func Allowed(role Role, capability Capability) bool {
	for _, r := range capabilities[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID int
	Role   Role
}

func (id Identity) Is(role Role) bool {
	return id.Role == role
}

var (
	ErrMemberRequired = api.InvalidInput("MEMBER_ID_REQUIRED", "memberId is required")
	ErrOtherMember    = api.Forbidden("FORBIDDEN", "members may only access their own records")
)

// ScopeMember resolves which member a request targets. Members always target
// themselves; requested may be zero to mean "me". Other roles must name one.
func (id Identity) ScopeMember(requested int) (int, error) {
	if id.Role == RoleMember {
		if requested != 0 && requested != id.UserID {
			return 0, ErrOtherMember
		}
		return id.UserID, nil
	}
	if requested <= 0 {
		return 0, ErrMemberRequired
	}
	return requested, nil
}
