package domain

import (
	"strings"
	"time"
)

// Account is a server-side login record.
type Account struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash []byte            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	LastLoginAt  *time.Time        `json:"last_login_at,omitempty"`
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is the server-side profile row provisioned for each account.
type Profile struct {
	AccountID     int64      `json:"user_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Avatar        string     `json:"avatar_url,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Location      string     `json:"location,omitempty"`
	Role          Role       `json:"role"`
	Plan          PlanName   `json:"subscription_plan"`
	PlanExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProfileChanges lists the editable profile fields. Nil means unchanged.
type ProfileChanges struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Bio       *string
	Phone     *string
	Location  *string
}

// Empty reports whether no field is set.
func (c ProfileChanges) Empty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Avatar == nil &&
		c.Bio == nil && c.Phone == nil && c.Location == nil
}

// Apply copies the set fields onto the profile.
func (c ProfileChanges) Apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.FirstName, c.FirstName)
	set(&p.LastName, c.LastName)
	set(&p.Avatar, c.Avatar)
	set(&p.Bio, c.Bio)
	set(&p.Phone, c.Phone)
	set(&p.Location, c.Location)
}

// RoleForPlan returns the role granted by a subscription plan. Admins keep their role.
func RoleForPlan(current Role, plan PlanName) Role {
	if current == RoleAdmin {
		return RoleAdmin
	}
	switch plan {
	case PlanPremium:
		return RolePremium
	case PlanEnterprise:
		return RoleEnterprise
	default:
		return RoleUser
	}
}
