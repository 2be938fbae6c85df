//go:build wireinject
// +build wireinject

package di

import (
	"inncore/config"
	"inncore/infras/jwt"
	"inncore/infras/kafka"
	"inncore/infras/metrics"
	"inncore/infras/otel"
	"inncore/infras/postgres"
	"inncore/infras/redis"
	"inncore/infras/s3"
	"inncore/internal/events"
	"inncore/permissions"
	"inncore/shared/cache"
	"inncore/transport/http"
	"inncore/transport/http/middleware"
	"inncore/transport/http/router"

	availabilityService "inncore/internal/domains/availability/service"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/domains/booking/overlap"
	bookingRepository "inncore/internal/domains/booking/repository"
	bookingService "inncore/internal/domains/booking/service"
	occupancyService "inncore/internal/domains/occupancy/service"
	roomRepository "inncore/internal/domains/room/repository"
	roomService "inncore/internal/domains/room/service"

	availabilityHandler "inncore/internal/handlers/availability"
	bookingHandler "inncore/internal/handlers/booking"
	occupancyHandler "inncore/internal/handlers/occupancy"
	"inncore/internal/handlers/payment"
	roomHandler "inncore/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewKafkaPublisher,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	hold.NewPolicy,
	hold.NewSweeper,
	overlap.New,
	wire.Bind(new(overlap.Finder), new(bookingRepository.Booking)),
	wire.Bind(new(hold.Store), new(bookingRepository.Booking)),
)

var projectionDomain = wire.NewSet(
	availabilityService.New,
	occupancyService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	projectionDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	availabilityHandler.New,
	occupancyHandler.New,
	router.New,
)

var consumers = wire.NewSet(
	payment.New,
)

func InitializeService() *Service {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		consumers,
		http.New,
		wire.Struct(new(Service), "*"),
	)

	return &Service{}
}
