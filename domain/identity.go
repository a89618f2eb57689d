package domain

import (
	"strings"
	"time"
)

// Role is drawn from a closed set; unknown values resolve to RoleUser.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RolePremium    Role = "premium"
	RoleEnterprise Role = "enterprise"
)

// ParseRole maps a backend role string onto the closed role set.
func ParseRole(value string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(value))); r {
	case RoleAdmin, RoleUser, RolePremium, RoleEnterprise:
		return r
	default:
		return RoleUser
	}
}

// Identity is the canonical in-memory record of the authenticated user.
// Empty optional strings mean the backend did not supply the field.
type Identity struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName,omitempty"`
	Avatar           string           `json:"avatar,omitempty"`
	Bio              string           `json:"bio,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Location         string           `json:"location,omitempty"`
	Role             Role             `json:"role"`
	SubscriptionPlan SubscriptionPlan `json:"subscriptionPlan"`
	CreatedAt        *time.Time       `json:"createdAt"`
	LastLoginAt      time.Time        `json:"lastLoginAt"`
}

// FullName joins first and last name with a single space.
func (i *Identity) FullName() string {
	if i == nil {
		return ""
	}
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Clone returns a deep copy so callers cannot mutate session state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	cp := *i
	cp.SubscriptionPlan = clonePlan(i.SubscriptionPlan)
	if i.CreatedAt != nil {
		t := *i.CreatedAt
		cp.CreatedAt = &t
	}
	return &cp
}
