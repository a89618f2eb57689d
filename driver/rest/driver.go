// Package rest is the driver for the Laravel-style REST backend.
package rest

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/driver"
)

// Route names used as metric labels.
const (
	routeLogin         = "login"
	routeRegister      = "register"
	routeLogout        = "logout"
	routeProfile       = "profile"
	routeUpdateProfile = "profile_update"
	routeSubscription  = "subscription"
	routeSearch        = "people_search"
	routePerson        = "people_get"
	routeHistoryList   = "history_list"
	routeHistorySave   = "history_save"
	routeHistoryDelete = "history_delete"
	routeHistoryClear  = "history_clear"
	routeAnalytics     = "analytics"
)

type Option func(*Driver)

// WithHTTPClient replaces the fasthttp client, e.g. to dial an in-memory listener.
func WithHTTPClient(client *fasthttp.Client) Option {
	return func(d *Driver) { d.client = client }
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver talks to the REST API. It applies no timeout of its own; context
// deadlines are honoured.
type Driver struct {
	baseURL string
	client  *fasthttp.Client
	logger  *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

func New(baseURL string, opts ...Option) *Driver {
	d := &Driver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			Name: "peoplesearch",
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Kind() driver.Kind { return driver.KindREST }

func (d *Driver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

func (d *Driver) Login(ctx context.Context, creds adapter.Credentials) (*driver.Grant, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	body, err := d.do(ctx, routeLogin, fasthttp.MethodPost, "/login", "", creds.Wire())
	if err != nil {
		return nil, err
	}
	return grantFrom(body)
}

func (d *Driver) Register(ctx context.Context, reg adapter.Registration) (*driver.Grant, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	body, err := d.do(ctx, routeRegister, fasthttp.MethodPost, "/register", "", reg.Wire())
	if err != nil {
		return nil, err
	}
	return grantFrom(body)
}

func (d *Driver) Logout(ctx context.Context, token string) error {
	_, err := d.do(ctx, routeLogout, fasthttp.MethodPost, "/logout", token, nil)
	return err
}

func (d *Driver) Profile(ctx context.Context, token string) (adapter.Record, error) {
	body, err := d.do(ctx, routeProfile, fasthttp.MethodGet, "/user/profile", token, nil)
	if err != nil {
		return nil, err
	}
	return userFrom(body)
}

func (d *Driver) UpdateProfile(ctx context.Context, token string, update adapter.ProfileUpdate) (adapter.Record, error) {
	body, err := d.do(ctx, routeUpdateProfile, fasthttp.MethodPut, "/user/profile", token, update.Wire())
	if err != nil {
		return nil, err
	}
	return userFrom(body)
}

func (d *Driver) UpdateSubscription(ctx context.Context, token string, plan domain.PlanName) (adapter.Record, error) {
	body, err := d.do(ctx, routeSubscription, fasthttp.MethodPut, "/user/subscription", token, adapter.SubscriptionWire(plan))
	if err != nil {
		return nil, err
	}
	return userFrom(body)
}

func (d *Driver) Search(ctx context.Context, token string, filter domain.SearchFilter) ([]adapter.Record, error) {
	body, err := d.do(ctx, routeSearch, fasthttp.MethodPost, "/people/search", token, adapter.FilterWire(filter))
	if err != nil {
		return nil, err
	}
	return adapter.DecodeRecords(body)
}

func (d *Driver) Person(ctx context.Context, token, id string) (adapter.Record, error) {
	body, err := d.do(ctx, routePerson, fasthttp.MethodGet, "/people/"+url.PathEscape(id), token, nil)
	if err != nil {
		return nil, err
	}
	return adapter.DecodeRecord(body)
}

func (d *Driver) ListHistory(ctx context.Context, token string, limit int) ([]adapter.Record, error) {
	path := "/search/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	body, err := d.do(ctx, routeHistoryList, fasthttp.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return adapter.DecodeRecords(body)
}

func (d *Driver) SaveHistory(ctx context.Context, token string, entry adapter.HistoryEntry) (adapter.Record, error) {
	body, err := d.do(ctx, routeHistorySave, fasthttp.MethodPost, "/search/history", token, entry.Wire())
	if err != nil {
		return nil, err
	}
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		return nil, err
	}
	return rec.Unwrap("data"), nil
}

func (d *Driver) DeleteHistory(ctx context.Context, token, id string) error {
	_, err := d.do(ctx, routeHistoryDelete, fasthttp.MethodDelete, "/search/history/"+url.PathEscape(id), token, nil)
	return err
}

func (d *Driver) ClearHistory(ctx context.Context, token string) error {
	_, err := d.do(ctx, routeHistoryClear, fasthttp.MethodDelete, "/search/history", token, nil)
	return err
}

func (d *Driver) Analytics(ctx context.Context, token string) (adapter.Record, error) {
	body, err := d.do(ctx, routeAnalytics, fasthttp.MethodGet, "/analytics", token, nil)
	if err != nil {
		return nil, err
	}
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		return nil, err
	}
	return rec.Unwrap("data"), nil
}

// do sends one request and returns the response body of a 2xx reply.
func (d *Driver) do(ctx context.Context, route, method, path, token string, payload any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "failed to encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(data)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = d.client.DoDeadline(req, resp, deadline)
	} else {
		err = d.client.Do(req, resp)
	}
	requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(route, "network").Inc()
		d.logger.Warn("backend request failed", zap.String("route", route), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeUnavailable, domain.ErrBackendUnavailable.Message, err)
	}

	status := resp.StatusCode()
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	body := append([]byte(nil), resp.Body()...)
	if status >= fasthttp.StatusBadRequest {
		d.logger.Debug("backend rejected request", zap.String("route", route), zap.Int("status", status))
		return nil, statusError(route, status, body)
	}
	return body, nil
}

// grantFrom reads {token|access_token, user} from a login or register reply.
func grantFrom(body []byte) (*driver.Grant, error) {
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		return nil, err
	}
	rec = rec.Unwrap("data")
	token := rec.String("token", "access_token", "accessToken")
	if token == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "authentication reply carries no token")
	}

	grant := &driver.Grant{Token: token}
	if user := rec.Child("user"); user != nil {
		if p, ok := user["profile"]; !ok || p != nil {
			grant.User = user
		}
	}
	return grant, nil
}

// userFrom reads a user reply that may be wrapped in data or user.
func userFrom(body []byte) (adapter.Record, error) {
	rec, err := adapter.DecodeRecord(body)
	if err != nil {
		return nil, err
	}
	return rec.Unwrap("data", "user"), nil
}
