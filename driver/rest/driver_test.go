package rest

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/peoplesearch/adapter"
	"github.com/fastygo/peoplesearch/domain"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(ctx *fasthttp.RequestCtx)
}

func (f *fakeBackend) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestDriver(t *testing.T, handler func(ctx *fasthttp.RequestCtx)) (*Driver, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{handler: handler}
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		rec := recorded{
			method: string(ctx.Method()),
			path:   string(ctx.RequestURI()),
			auth:   string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)),
		}
		if len(ctx.PostBody()) > 0 {
			_ = json.Unmarshal(ctx.PostBody(), &rec.body)
		}
		fake.mu.Lock()
		fake.requests = append(fake.requests, rec)
		fake.mu.Unlock()
		fake.handler(ctx)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	return New("http://backend.test/api/", WithHTTPClient(client)), fake
}

func reply(status int, body string) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(body)
	}
}

func TestDriver_Login(t *testing.T) {
	d, fake := newTestDriver(t, reply(fasthttp.StatusOK,
		`{"data":{"token":"tok-1","user":{"id":7,"email":"a@b.co","profile":{"first_name":"Ann"}}}}`))

	grant, err := d.Login(context.Background(), adapter.Credentials{Email: " a@b.co ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", grant.Token)
	require.NotNil(t, grant.User)
	assert.Equal(t, "7", grant.User.String("id"))

	req := fake.last()
	assert.Equal(t, fasthttp.MethodPost, req.method)
	assert.Equal(t, "/api/login", req.path)
	assert.Empty(t, req.auth)
	assert.Equal(t, map[string]any{"email": "a@b.co", "password": "secret"}, req.body)
}

func TestDriver_RegisterWithoutProfileYieldsPendingGrant(t *testing.T) {
	d, fake := newTestDriver(t, reply(fasthttp.StatusCreated,
		`{"token":"tok-2","user":{"id":8,"email":"new@b.co","profile":null}}`))

	grant, err := d.Register(context.Background(), adapter.Registration{Email: "new@b.co", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", grant.Token)
	assert.Nil(t, grant.User)

	req := fake.last()
	assert.Equal(t, "/api/register", req.path)
	assert.Equal(t, "new", req.body["name"])
	assert.Equal(t, "password123", req.body["password_confirmation"])
}

func TestDriver_RegisterValidatesLocally(t *testing.T) {
	d, fake := newTestDriver(t, reply(fasthttp.StatusOK, `{}`))

	_, err := d.Register(context.Background(), adapter.Registration{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalid, domain.CodeOf(err))
	assert.Empty(t, fake.requests)
}

func TestDriver_SendsBearerAndUnwrapsUser(t *testing.T) {
	d, fake := newTestDriver(t, reply(fasthttp.StatusOK, `{"user":{"id":3,"email":"c@d.co"}}`))

	user, err := d.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "c@d.co", user.String("email"))
	assert.Equal(t, "Bearer tok", fake.last().auth)
	assert.Equal(t, "/api/user/profile", fake.last().path)

	bio := "hi"
	_, err = d.UpdateProfile(context.Background(), "tok", adapter.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, fasthttp.MethodPut, fake.last().method)
	assert.Equal(t, map[string]any{"bio": "hi"}, fake.last().body)

	_, err = d.UpdateSubscription(context.Background(), "tok", domain.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, "/api/user/subscription", fake.last().path)
	assert.Equal(t, map[string]any{"plan": "premium"}, fake.last().body)
}

func TestDriver_SearchAndHistory(t *testing.T) {
	d, fake := newTestDriver(t, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/api/people/search":
			reply(fasthttp.StatusOK, `{"results":[{"id":"r1","person":{"id":1,"first_name":"A"}},{"id":"r2","person":{"id":2}}]}`)(ctx)
		case "/api/people/p-1":
			reply(fasthttp.StatusOK, `{"person":{"id":"p-1"}}`)(ctx)
		case "/api/search/history":
			if string(ctx.Method()) == fasthttp.MethodPost {
				reply(fasthttp.StatusCreated, `{"data":{"id":"h1","query":"q","results_count":2}}`)(ctx)
				return
			}
			reply(fasthttp.StatusOK, `[{"id":"h1"},{"id":"h2"}]`)(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNoContent)
		}
	})
	ctx := context.Background()

	minSalary := 120000
	hits, err := d.Search(ctx, "tok", domain.SearchFilter{
		Company:     "Goog",
		Skills:      []string{"go"},
		SalaryRange: &domain.Range{Min: &minSalary},
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "r1", hits[0].String("id"))
	assert.Equal(t, "Goog", fake.last().body["company"])
	assert.Equal(t, map[string]any{"min": float64(120000)}, fake.last().body["salary_range"])
	assert.NotContains(t, fake.last().body, "salaryRange")

	person, err := d.Person(ctx, "tok", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", person.Child("person").String("id"))

	list, err := d.ListHistory(ctx, "tok", 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "/api/search/history?limit=10", fake.last().path)

	saved, err := d.SaveHistory(ctx, "tok", adapter.HistoryEntry{Query: "q", ResultsCount: 2})
	require.NoError(t, err)
	assert.Equal(t, "h1", saved.String("id"))
	assert.EqualValues(t, 2, fake.last().body["results_count"])

	require.NoError(t, d.DeleteHistory(ctx, "tok", "h1"))
	assert.Equal(t, fasthttp.MethodDelete, fake.last().method)
	assert.Equal(t, "/api/search/history/h1", fake.last().path)

	require.NoError(t, d.ClearHistory(ctx, "tok"))
	assert.Equal(t, "/api/search/history", fake.last().path)
}

func TestDriver_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    domain.ErrorCode
		message string
	}{
		{"unauthorized", fasthttp.StatusUnauthorized, `{"message":"Unauthenticated."}`, domain.ErrCodeUnauthorized, "Unauthenticated."},
		{"forbidden", fasthttp.StatusForbidden, ``, domain.ErrCodeForbidden, "request failed with status 403"},
		{"not found", fasthttp.StatusNotFound, `{"error":"missing"}`, domain.ErrCodeNotFound, "missing"},
		{"validation", fasthttp.StatusUnprocessableEntity, `{"message":"The given data was invalid.","errors":{"email":["taken"]}}`, domain.ErrCodeInvalid, "The given data was invalid."},
		{"conflict", fasthttp.StatusConflict, `{"message":"dup"}`, domain.ErrCodeConflict, "dup"},
		{"server", fasthttp.StatusBadGateway, `<html>`, domain.ErrCodeUnavailable, "request failed with status 502"},
		{"envelope", fasthttp.StatusBadRequest, `{"status":"error","error":{"message":"bad filter","errors":{"skills":"too many"}}}`, domain.ErrCodeInvalid, "bad filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDriver(t, reply(tt.status, tt.body))
			_, err := d.Person(context.Background(), "tok", "1")
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.CodeOf(err))
			assert.Equal(t, tt.message, domain.MessageOf(err, ""))
		})
	}
}

func TestDriver_ValidationFields(t *testing.T) {
	d, _ := newTestDriver(t, reply(fasthttp.StatusBadRequest, `{"error":{"message":"bad filter","errors":{"skills":"too many","name":["a","b"]}}}`))
	_, err := d.Search(context.Background(), "tok", domain.SearchFilter{})
	assert.Equal(t, map[string][]string{"skills": {"too many"}, "name": {"a", "b"}}, domain.FieldsOf(err))
}

func TestDriver_ProfileNotFoundIsProvisioningSignal(t *testing.T) {
	d, _ := newTestDriver(t, reply(fasthttp.StatusNotFound, `{"message":"Profile not found"}`))
	_, err := d.Profile(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestDriver_HonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	d, _ := newTestDriver(t, func(ctx *fasthttp.RequestCtx) {
		<-release
		ctx.SetStatusCode(fasthttp.StatusOK)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := d.Analytics(ctx, "tok")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeUnavailable, domain.CodeOf(err))
}

func TestDriver_CancelledContext(t *testing.T) {
	d, fake := newTestDriver(t, reply(fasthttp.StatusOK, `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Logout(ctx, "tok")
	assert.Equal(t, domain.ErrCodeUnavailable, domain.CodeOf(err))
	assert.Empty(t, fake.requests)
}

func TestDriver_NetworkFailure(t *testing.T) {
	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return nil, net.ErrClosed }}
	d := New("http://backend.test", WithHTTPClient(client))

	_, err := d.Profile(context.Background(), "tok")
	assert.Equal(t, domain.ErrCodeUnavailable, domain.CodeOf(err))
	assert.Equal(t, domain.ErrBackendUnavailable.Message, domain.MessageOf(err, ""))
}
