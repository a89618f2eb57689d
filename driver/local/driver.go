// Package local serves the driver contract from an in-process backend.Service,
// rendering replies in the wire shape of the backend it stands in for.
package local

import (
	"context"
	"errors"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
	"github.com/fastygo/peoplesearch/internal/backend"
)

type Driver struct {
	kind    driver.Kind
	svc     *backend.Service
	shape   backend.Shape
	closers []func() error
}

var _ driver.Driver = (*Driver)(nil)

// New wraps svc. Closers run after the service is closed, in order.
func New(kind driver.Kind, svc *backend.Service, shape backend.Shape, closers ...func() error) *Driver {
	return &Driver{kind: kind, svc: svc, shape: shape, closers: closers}
}

func (d *Driver) Kind() driver.Kind { return d.kind }

// Service exposes the backing service, e.g. for seeding.
func (d *Driver) Service() *backend.Service { return d.svc }

func (d *Driver) Close() error {
	errs := []error{d.svc.Close()}
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (d *Driver) Login(ctx context.Context, creds adapter.Credentials) (*driver.Grant, error) {
	grant, err := d.svc.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return d.grant(grant)
}

func (d *Driver) Register(ctx context.Context, reg adapter.Registration) (*driver.Grant, error) {
	grant, err := d.svc.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return d.grant(grant)
}

func (d *Driver) Logout(ctx context.Context, token string) error {
	return d.svc.Logout(ctx, token)
}

func (d *Driver) Profile(ctx context.Context, token string) (adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return d.user(d.svc.Profile(ctx, id))
}

func (d *Driver) UpdateProfile(ctx context.Context, token string, update adapter.ProfileUpdate) (adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	body, err := adapter.FromValue(update.Wire())
	if err != nil {
		return nil, err
	}
	return d.user(d.svc.UpdateProfile(ctx, id, adapter.ProfileChangesFromRecord(body)))
}

func (d *Driver) UpdateSubscription(ctx context.Context, token string, plan domain.PlanName) (adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return d.user(d.svc.UpdateSubscription(ctx, id, string(plan)))
}

// Search returns ranked hits in the REST shape and bare directory rows otherwise.
func (d *Driver) Search(ctx context.Context, token string, filter domain.SearchFilter) ([]adapter.Record, error) {
	if _, err := d.authenticate(ctx, token); err != nil {
		return nil, err
	}
	if d.shape == backend.ShapeLaravel {
		results, err := d.svc.Search(ctx, filter)
		if err != nil {
			return nil, err
		}
		return adapter.FromValues(backend.ResultsWire(d.shape, results))
	}

	people, err := d.svc.Candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]any, 0, len(people))
	for _, p := range people {
		rows = append(rows, backend.PersonWire(d.shape, p))
	}
	return adapter.FromValues(rows)
}

func (d *Driver) Person(ctx context.Context, token, id string) (adapter.Record, error) {
	if _, err := d.authenticate(ctx, token); err != nil {
		return nil, err
	}
	p, err := d.svc.Person(ctx, id)
	if err != nil {
		return nil, err
	}
	return adapter.FromValue(backend.PersonWire(d.shape, *p))
}

func (d *Driver) ListHistory(ctx context.Context, token string, limit int) ([]adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	entries, err := d.svc.History(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, backend.HistoryWire(d.shape, e))
	}
	return adapter.FromValues(rows)
}

func (d *Driver) SaveHistory(ctx context.Context, token string, entry adapter.HistoryEntry) (adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	saved, err := d.svc.SaveHistory(ctx, id, entry)
	if err != nil {
		return nil, err
	}
	return adapter.FromValue(backend.HistoryWire(d.shape, *saved))
}

func (d *Driver) DeleteHistory(ctx context.Context, token, historyID string) error {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return err
	}
	return d.svc.DeleteHistory(ctx, id, historyID)
}

func (d *Driver) ClearHistory(ctx context.Context, token string) error {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return err
	}
	_, err = d.svc.ClearHistory(ctx, id)
	return err
}

func (d *Driver) Analytics(ctx context.Context, token string) (adapter.Record, error) {
	id, err := d.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	a, err := d.svc.Analytics(ctx, id)
	if err != nil {
		return nil, err
	}
	return adapter.FromValue(backend.AnalyticsWire(a))
}

func (d *Driver) authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrNotAuthenticated
	}
	session, err := d.svc.Authenticate(ctx, token)
	if err != nil {
		return 0, err
	}
	return backend.AccountID(session)
}

func (d *Driver) grant(g *backend.Grant) (*driver.Grant, error) {
	out := &driver.Grant{Token: g.Token}
	if g.Profile == nil {
		return out, nil
	}
	user, err := adapter.FromValue(backend.UserWire(d.shape, g.Account, g.Profile))
	if err != nil {
		return nil, err
	}
	out.User = user
	return out, nil
}

func (d *Driver) user(account *domain.Account, profile *domain.Profile, err error) (adapter.Record, error) {
	if err != nil {
		return nil, err
	}
	return adapter.FromValue(backend.UserWire(d.shape, account, profile))
}
