package backend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/domain"
)

// paidPeriod is how long a paid plan stays active after a change.
const paidPeriod = 30 * 24 * time.Hour

// Profile returns the account with its profile. Returns domain.ErrProfileNotFound
// while provisioning has not completed.
func (s *Service) Profile(ctx context.Context, accountID int64) (*domain.Account, *domain.Profile, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.Get(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	return account, profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, accountID int64, changes domain.ProfileChanges) (*domain.Account, *domain.Profile, error) {
	if changes.Empty() {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "The given data was invalid.").WithFields(map[string][]string{
			"profile": {"At least one field must be provided."},
		})
	}
	account, profile, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	changes.Apply(profile)
	profile.UpdatedAt = s.now()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, nil, err
	}
	s.logger.Debug("profile updated", zap.Int64("account_id", accountID))
	return account, profile, nil
}

// UpdateSubscription switches the plan. Paid plans expire after thirty days; the role follows the plan.
func (s *Service) UpdateSubscription(ctx context.Context, accountID int64, plan string) (*domain.Account, *domain.Profile, error) {
	name, ok := domain.ParsePlanName(plan)
	if !ok {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "The given data was invalid.").WithFields(map[string][]string{
			"plan": {"The selected plan is invalid."},
		})
	}
	account, profile, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	profile.Plan = name
	profile.Role = domain.RoleForPlan(profile.Role, name)
	profile.PlanExpiresAt = nil
	if domain.LookupPlan(string(name)).IsPaid() {
		expires := now.Add(paidPeriod)
		profile.PlanExpiresAt = &expires
	}
	profile.UpdatedAt = now
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, nil, err
	}
	s.logger.Info("subscription changed", zap.Int64("account_id", accountID), zap.String("plan", string(name)))
	return account, profile, nil
}
