package components

import (
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/infra/payment"
	"rogu-booking/internal/infra/qr"
	"rogu-booking/internal/infra/token"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/config"
	"rogu-booking/internal/usecase"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		reservation.NewHourlyPriceCalculator,
		fx.As(new(reservation.PriceCalculator)),
	),
	NewBookingPolicy,
	reservation.NewFactory,
	fx.Annotate(
		token.NewRandomGenerator,
		fx.As(new(commands.TokenGenerator)),
	),
	func(cfg config.Config) commands.PaymentGateway {
		return payment.NewDemoGateway(cfg.Payment)
	},
	func() queries.QRRenderer {
		return qr.NewRenderer(qr.DefaultSize)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(generator commands.TokenGenerator, cfg config.Config) *commands.TokenIssuer {
			return commands.NewTokenIssuer(generator, cfg.Booking.TokenIssueAttempts)
		},
		commands.NewReservationCommands,
		commands.NewAccessCommands,
		commands.NewLifecycleSweeper,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewVenueQueries,
		queries.NewAvailabilityQueries,
		queries.NewReservationQueries,
		queries.NewAccessQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewBookingPolicy(cfg config.Config, loc *time.Location) reservation.Policy {
	return reservation.Policy{
		Location:           loc,
		CancellationNotice: cfg.Booking.CancellationNotice,
		PendingHoldTTL:     cfg.Booking.PendingHoldTTL,
	}
}
