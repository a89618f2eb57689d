// Package analytics serves the dashboard figures and plan usage of the logged-in user.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
)

// Session is the part of the session store the use case needs.
type Session interface {
	Do(ctx context.Context, fn func(ctx context.Context, token string) error) error
	Identity() *domain.Identity
}

// Usage compares this month's activity with the plan limits. Remaining values
// are domain.Unlimited for unbounded quotas.
type Usage struct {
	Plan              domain.SubscriptionPlan `json:"plan"`
	Active            bool                    `json:"active"`
	SearchesUsed      int                     `json:"searchesUsed"`
	SearchesRemaining int                     `json:"searchesRemaining"`
	ExportsUsed       int                     `json:"exportsUsed"`
	ExportsRemaining  int                     `json:"exportsRemaining"`
	CanSearch         bool                    `json:"canSearch"`
	CanExport         bool                    `json:"canExport"`
}

type UseCase struct {
	session Session
	reports driver.Reports
	logger  *zap.Logger
	now     func() time.Time
}

func New(session Session, reports driver.Reports, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{session: session, reports: reports, logger: logger, now: time.Now}
}

// Dashboard returns the analytics figures; missing ones default to zero.
func (uc *UseCase) Dashboard(ctx context.Context) (domain.Analytics, error) {
	var raw adapter.Record
	err := uc.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		raw, err = uc.reports.Analytics(ctx, token)
		return err
	})
	if err != nil {
		return domain.Analytics{}, err
	}
	return adapter.NormalizeAnalytics(raw, uc.now()), nil
}

func (uc *UseCase) Usage(ctx context.Context) (Usage, error) {
	a, err := uc.Dashboard(ctx)
	if err != nil {
		return Usage{}, err
	}
	identity := uc.session.Identity()
	if identity == nil {
		return Usage{}, domain.ErrNotAuthenticated
	}

	plan := identity.SubscriptionPlan
	active := plan.Active(uc.now())
	if !active {
		uc.logger.Debug("plan expired, applying free limits", zap.String("plan", string(plan.Name)))
		plan = domain.LookupPlan(string(domain.PlanFree))
	}
	return Usage{
		Plan:              plan,
		Active:            active,
		SearchesUsed:      a.SearchesThisMonth,
		SearchesRemaining: plan.SearchesRemaining(a.SearchesThisMonth),
		ExportsUsed:       a.ExportsThisMonth,
		ExportsRemaining:  plan.ExportsRemaining(a.ExportsThisMonth),
		CanSearch:         plan.CanSearch(a.SearchesThisMonth),
		CanExport:         plan.CanExport(a.ExportsThisMonth),
	}, nil
}
