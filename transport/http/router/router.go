package router

import (
	"inncore/config"
	"inncore/infras/metrics"
	"inncore/internal/handlers/availability"
	"inncore/internal/handlers/booking"
	"inncore/internal/handlers/occupancy"
	"inncore/internal/handlers/room"
	"inncore/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Room         room.Handler
	Booking      booking.Handler
	Availability availability.Handler
	Occupancy    occupancy.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
	Metrics        *metrics.Metrics
	Config         *config.Config
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(chiMiddleware.RequestID, chiMiddleware.Recoverer)

	if r.Config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   r.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   r.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   r.Config.App.CORS.AllowedHeaders,
			AllowCredentials: r.Config.App.CORS.AllowCredentials,
			MaxAge:           r.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Method("GET", r.Config.App.MetricsPath, r.Metrics.Handler())

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.App.Tracing, r.App.RateLimit())

		routerGroup.Route("/hotels/{hotelID}", func(hotel chi.Router) {
			hotel.Use(r.AuthRole.APIKey, r.AuthRole.Auth, r.AuthRole.RBAC, r.AuthRole.HotelScope)

			r.DomainHandlers.Room.Router(hotel)
			r.DomainHandlers.Booking.Router(hotel)
			r.DomainHandlers.Availability.Router(hotel)
			r.DomainHandlers.Occupancy.Router(hotel)
		})
	})
}

func New(
	domainHandlers DomainHandlers,
	app middleware.AppMiddleware,
	authRole middleware.AuthRole,
	metrics *metrics.Metrics,
	cfg *config.Config,
) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
		Metrics:        metrics,
		Config:         cfg,
	}
}
