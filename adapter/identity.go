package adapter

import (
	"strings"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// SplitName splits a full name at the first whitespace run. The remaining tokens
// are joined by single spaces; a single token yields an empty last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// NormalizeIdentity builds the canonical identity from a raw user payload.
//
// Fields are read from the flat level first, then from a nested profile object,
// then from user metadata. Role and plan prefer the profile. A missing lastLoginAt
// defaults to now; a missing createdAt stays nil.
func NormalizeIdentity(raw Record, now time.Time) (*domain.Identity, error) {
	if raw == nil {
		return nil, domain.ErrInvalidPayload
	}
	profile := raw.Child("profile")
	meta := raw.Child("user_metadata", "userMetadata")
	sources := []Record{raw, profile, meta}

	pick := func(keys ...string) string {
		for _, src := range sources {
			if v := src.String(keys...); v != "" {
				return v
			}
		}
		return ""
	}
	pickTime := func(keys ...string) *time.Time {
		for _, src := range sources[:2] {
			if t := src.TimePtr(keys...); t != nil {
				return t
			}
		}
		return nil
	}

	id := raw.String("id")
	if id == "" {
		id = profile.String("user_id", "userId")
	}
	if id == "" {
		return nil, domain.ErrInvalidPayload.WithFields(map[string][]string{"id": {"identity payload carries no id"}})
	}

	identity := &domain.Identity{
		ID:       id,
		Email:    pick("email"),
		Avatar:   pick("avatar_url", "avatarUrl", "avatar"),
		Bio:      pick("bio"),
		Phone:    pick("phone"),
		Location: pick("location"),
	}

	identity.FirstName = pick("first_name", "firstName")
	identity.LastName = pick("last_name", "lastName")
	if identity.FirstName == "" || identity.LastName == "" {
		first, last := SplitName(pick("name", "full_name", "fullName"))
		if identity.FirstName == "" {
			identity.FirstName = first
		}
		if identity.LastName == "" {
			identity.LastName = last
		}
	}

	role := profile.String("role")
	if role == "" {
		role = pick("role")
	}
	identity.Role = domain.ParseRole(role)
	identity.SubscriptionPlan = resolvePlan(profile, raw)

	identity.CreatedAt = pickTime("created_at", "createdAt")
	if t := pickTime("last_login_at", "lastLoginAt", "last_sign_in_at"); t != nil {
		identity.LastLoginAt = *t
	} else {
		identity.LastLoginAt = now
	}
	return identity, nil
}

// resolvePlan reads a plan given as a name or as an object, profile first.
func resolvePlan(sources ...Record) domain.SubscriptionPlan {
	for _, src := range sources {
		if obj := src.Child("subscription_plan", "subscriptionPlan", "plan"); obj != nil {
			plan := domain.LookupPlan(obj.String("name"))
			plan.ExpiresAt = obj.TimePtr("expiresAt", "expires_at")
			return plan
		}
		if name := src.String("subscription_plan", "subscriptionPlan", "plan"); name != "" {
			plan := domain.LookupPlan(name)
			plan.ExpiresAt = src.TimePtr("subscription_expires_at", "subscriptionExpiresAt")
			return plan
		}
	}
	return domain.LookupPlan(string(domain.PlanFree))
}
