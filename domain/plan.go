package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlanName identifies an entry of the fixed plan catalog.
type PlanName string

const (
	PlanFree       PlanName = "free"
	PlanBasic      PlanName = "basic"
	PlanPremium    PlanName = "premium"
	PlanEnterprise PlanName = "enterprise"
)

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

// SubscriptionPlan is the value type resolved from a plan name.
type SubscriptionPlan struct {
	ID          string          `json:"id"`
	Name        PlanName        `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Features    []string        `json:"features"`
	MaxSearches int             `json:"maxSearches"`
	MaxExports  int             `json:"maxExports"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

var planOrder = []PlanName{PlanFree, PlanBasic, PlanPremium, PlanEnterprise}

var planCatalog = map[PlanName]SubscriptionPlan{
	PlanFree: {
		ID:          "1",
		Name:        PlanFree,
		Price:       decimal.Zero,
		Currency:    "USD",
		Features:    []string{"Basic search", "Limited exports"},
		MaxSearches: 10,
		MaxExports:  5,
	},
	PlanBasic: {
		ID:          "2",
		Name:        PlanBasic,
		Price:       decimal.RequireFromString("9.99"),
		Currency:    "USD",
		Features:    []string{"Advanced search", "More exports", "Email support"},
		MaxSearches: 100,
		MaxExports:  25,
	},
	PlanPremium: {
		ID:          "3",
		Name:        PlanPremium,
		Price:       decimal.RequireFromString("29.99"),
		Currency:    "USD",
		Features:    []string{"Unlimited searches", "Advanced filters", "Export to multiple formats", "Priority support"},
		MaxSearches: Unlimited,
		MaxExports:  100,
	},
	PlanEnterprise: {
		ID:          "4",
		Name:        PlanEnterprise,
		Price:       decimal.RequireFromString("99.99"),
		Currency:    "USD",
		Features:    []string{"Everything in Premium", "API access", "Custom integrations", "Dedicated support"},
		MaxSearches: Unlimited,
		MaxExports:  Unlimited,
	},
}

// ParsePlanName reports whether name is a catalog entry.
func ParsePlanName(name string) (PlanName, bool) {
	key := PlanName(strings.ToLower(strings.TrimSpace(name)))
	_, ok := planCatalog[key]
	return key, ok
}

// LookupPlan resolves a plan name against the catalog. Unknown names fall back to free.
func LookupPlan(name string) SubscriptionPlan {
	key, ok := ParsePlanName(name)
	if !ok {
		key = PlanFree
	}
	return clonePlan(planCatalog[key])
}

// Plans returns the whole catalog ordered from cheapest to most expensive.
func Plans() []SubscriptionPlan {
	out := make([]SubscriptionPlan, 0, len(planOrder))
	for _, name := range planOrder {
		out = append(out, clonePlan(planCatalog[name]))
	}
	return out
}

func clonePlan(p SubscriptionPlan) SubscriptionPlan {
	p.Features = append([]string(nil), p.Features...)
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		p.ExpiresAt = &t
	}
	return p
}

// IsPaid reports whether the plan costs money.
func (p SubscriptionPlan) IsPaid() bool {
	return p.Price.IsPositive()
}

// Active reports whether the plan has not expired at the reference instant.
func (p SubscriptionPlan) Active(reference time.Time) bool {
	if p.ExpiresAt == nil {
		return true
	}
	return p.ExpiresAt.After(reference)
}

// CanSearch reports whether another search fits into the quota given the searches already used.
func (p SubscriptionPlan) CanSearch(used int) bool {
	return withinQuota(p.MaxSearches, used)
}

// CanExport reports whether another export fits into the quota given the exports already used.
func (p SubscriptionPlan) CanExport(used int) bool {
	return withinQuota(p.MaxExports, used)
}

// SearchesRemaining returns the searches left in the quota, or Unlimited.
func (p SubscriptionPlan) SearchesRemaining(used int) int {
	return remaining(p.MaxSearches, used)
}

// ExportsRemaining returns the exports left in the quota, or Unlimited.
func (p SubscriptionPlan) ExportsRemaining(used int) int {
	return remaining(p.MaxExports, used)
}

func withinQuota(limit, used int) bool {
	return limit == Unlimited || used < limit
}

func remaining(limit, used int) int {
	if limit == Unlimited {
		return Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
