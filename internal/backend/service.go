package backend

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/peoplesearch/repository"
)

// ProvisionMode selects who creates the profile row of a new account.
type ProvisionMode int

const (
	// ProvisionInline creates the profile during registration.
	ProvisionInline ProvisionMode = iota
	// ProvisionTrigger leaves it to the database trigger on auth_users.
	ProvisionTrigger
	// ProvisionDeferred creates it after Options.ProvisionDelay.
	ProvisionDeferred
)

type Options struct {
	Provision      ProvisionMode
	ProvisionDelay time.Duration
	SessionTTL     time.Duration
	HashCost       int
	Clock          func() time.Time
}

type Repositories struct {
	Accounts repository.AccountRepository
	Profiles repository.ProfileRepository
	People   repository.PersonRepository
	History  repository.HistoryRepository
	Sessions repository.SessionRepository
}

// Service implements the people-search backend: accounts, sessions, profiles,
// the people directory, saved searches and analytics.
type Service struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	people   repository.PersonRepository
	history  repository.HistoryRepository
	sessions repository.SessionRepository
	tokens   *TokenIssuer
	opts     Options
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(repos Repositories, tokens *TokenIssuer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		accounts: repos.Accounts,
		profiles: repos.Profiles,
		people:   repos.People,
		history:  repos.History,
		sessions: repos.Sessions,
		tokens:   tokens,
		opts:     opts,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Close cancels pending deferred provisioning and waits for it to return.
func (s *Service) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return nil
}

func (s *Service) now() time.Time {
	return s.opts.Clock().UTC()
}

func userKey(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}
