package router

import (
	"net/http"

	"toolrent/config"
	"toolrent/infras/metrics"
	"toolrent/internal/handlers/booking"
	"toolrent/internal/handlers/report"
	"toolrent/internal/handlers/tool"
	"toolrent/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "toolrent/docs"
)

type DomainHandlers struct {
	Tool    tool.Handler
	Booking booking.Handler
	Report  report.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	app            middleware.AppMiddleware
	authRole       middleware.AuthRole
	config         *config.Config
	metrics        *metrics.Registry
}

func New(
	domainHandlers DomainHandlers,
	app middleware.AppMiddleware,
	authRole middleware.AuthRole,
	config *config.Config,
	metrics *metrics.Registry,
) Router {
	return Router{
		DomainHandlers: domainHandlers,
		app:            app,
		authRole:       authRole,
		config:         config,
		metrics:        metrics,
	}
}

// SetupRoutes mounts the ops endpoints and the authenticated /v1 API on router.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(middleware.RequestID, middleware.Recover)

	if r.config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   r.config.App.CORS.AllowedOrigins,
			AllowedMethods:   r.config.App.CORS.AllowedMethods,
			AllowedHeaders:   r.config.App.CORS.AllowedHeaders,
			AllowCredentials: r.config.App.CORS.AllowCredentials,
			MaxAge:           r.config.App.CORS.MaxAgeSeconds,
		}))
	}

	if r.config.Metrics.Enable && r.metrics != nil {
		router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(
			r.app.Tracing,
			r.app.RateLimit(),
			r.authRole.APIKey,
			r.authRole.Auth,
			r.authRole.RBAC,
		)

		r.DomainHandlers.Tool.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Report.Router(routerGroup)
	})
}
