package components

import (
	"rogu-booking/internal/handler"
	"rogu-booking/internal/handler/api"
	"rogu-booking/internal/handler/middleware"
	"rogu-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewVenueHandler,
		api.NewReservationHandler,
		api.NewPaymentHandler,
		api.NewAccessHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.Access)
		},
		func(v *api.VenueHandler, r *api.ReservationHandler, p *api.PaymentHandler, a *api.AccessHandler) handler.Handlers {
			return handler.Handlers{Venue: v, Reservation: r, Payment: p, Access: a}
		},
	),
	fx.Invoke(handler.NewRouter),
)
