package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apiHandler "github.com/fastygo/peoplesearch/api/handler"
	"github.com/fastygo/peoplesearch/internal/middleware"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Profile   *apiHandler.ProfileHandler
	People    *apiHandler.PeopleHandler
	History   *apiHandler.HistoryHandler
	Analytics *apiHandler.AnalyticsHandler
	Health    *apiHandler.HealthHandler
}

type Options struct {
	// Prefix mounts the API; defaults to "/api".
	Prefix        string
	EnableMetrics bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	r.GET("/health/live", handlers.Health.Live)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}

	if opts.Prefix == "" {
		opts.Prefix = "/api"
	}
	api := r.Group(opts.Prefix)
	public := func(route string, h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Instrument(route, h)
	}
	protected := func(route string, h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Instrument(route, authMiddleware(h))
	}

	// Auth routes
	api.POST("/login", public("login", handlers.Auth.Login))
	api.POST("/register", public("register", handlers.Auth.Register))
	api.POST("/logout", protected("logout", handlers.Auth.Logout))
	api.GET("/plans", public("plans", handlers.Profile.Plans))

	// Protected routes
	api.GET("/user/profile", protected("profile_get", handlers.Profile.GetProfile))
	api.PUT("/user/profile", protected("profile_update", handlers.Profile.UpdateProfile))
	api.PUT("/user/subscription", protected("subscription", handlers.Profile.UpdateSubscription))

	api.POST("/people/search", protected("search", handlers.People.Search))
	api.GET("/people/{id}", protected("person", handlers.People.Person))

	for _, base := range []string{"/search/history", "/search-history"} {
		api.GET(base, protected("history_list", handlers.History.List))
		api.POST(base, protected("history_save", handlers.History.Create))
		api.DELETE(base, protected("history_clear", handlers.History.Clear))
		api.DELETE(base+"/{id}", protected("history_delete", handlers.History.Delete))
	}

	api.GET("/analytics", protected("analytics", handlers.Analytics.Get))

	return r
}
