package backend

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
)

// Grant is the result of a successful login or registration.
// Profile is nil while the account is still being provisioned.
type Grant struct {
	Token   string
	Session *domain.Session
	Account *domain.Account
	Profile *domain.Profile
}

func (s *Service) Register(ctx context.Context, reg adapter.Registration) (*Grant, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.opts.HashCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	now := s.now()
	account := &domain.Account{
		Name:         reg.DisplayName(),
		Email:        domain.NormalizeEmail(reg.Email),
		PasswordHash: hash,
		Metadata:     map[string]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}
	if v := strings.TrimSpace(reg.FirstName); v != "" {
		account.Metadata["first_name"] = v
	}
	if v := strings.TrimSpace(reg.LastName); v != "" {
		account.Metadata["last_name"] = v
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, domain.ErrEmailTaken.WithFields(map[string][]string{
				"email": {"The email has already been taken."},
			})
		}
		return nil, err
	}

	if err := s.provision(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", zap.Int64("account_id", account.ID))
	return s.grant(ctx, account)
}

func (s *Service) Login(ctx context.Context, creds adapter.Credentials) (*Grant, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.accounts.TouchLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to record login", zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		account.LastLoginAt = &now
	}
	return s.grant(ctx, account)
}

// Logout revokes the session referenced by the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a bearer token to its live session. Sessions past half of
// their lifetime are extended.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	accountID, sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	now := s.now()
	if session.IsExpired(now) || session.AccountID != userKey(accountID) {
		return nil, domain.ErrUnauthorized
	}
	if session.TTL(now) < s.opts.SessionTTL/2 {
		if err := s.sessions.Extend(ctx, session.ID, int(s.opts.SessionTTL.Seconds())); err != nil {
			s.logger.Warn("failed to extend session", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	return session, nil
}

// AccountID parses the account id carried by an authenticated session.
func AccountID(session *domain.Session) (int64, error) {
	if session == nil {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(session.AccountID, 10, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeUnauthorized, "malformed session", err)
	}
	return id, nil
}

func (s *Service) grant(ctx context.Context, account *domain.Account) (*Grant, error) {
	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(session)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}

	profile, err := s.profiles.Get(ctx, account.ID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	return &Grant{Token: token, Session: session, Account: account, Profile: profile}, nil
}

func (s *Service) createSession(ctx context.Context, accountID int64) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: userKey(accountID),
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) provision(ctx context.Context, account *domain.Account) error {
	switch s.opts.Provision {
	case ProvisionTrigger:
		return nil
	case ProvisionDeferred:
		profile := s.newProfile(account)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			timer := time.NewTimer(s.opts.ProvisionDelay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-s.stop:
				return
			}
			if err := s.profiles.Create(context.Background(), profile); err != nil {
				s.logger.Error("deferred provisioning failed", zap.Int64("account_id", account.ID), zap.Error(err))
			}
		}()
		return nil
	default:
		return s.profiles.Create(ctx, s.newProfile(account))
	}
}

// newProfile mirrors the provisioning trigger: names come from the registration
// metadata, else from splitting the display name.
func (s *Service) newProfile(account *domain.Account) *domain.Profile {
	first, last := account.Metadata["first_name"], account.Metadata["last_name"]
	if first == "" && last == "" {
		first, last = adapter.SplitName(account.Name)
	}
	now := s.now()
	return &domain.Profile{
		AccountID: account.ID,
		FirstName: first,
		LastName:  last,
		Role:      domain.RoleUser,
		Plan:      domain.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
