package payment

import (
	"context"
	"log/slog"
	"strings"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/pkg/config"
	"rogu-booking/internal/usecase/commands"
)

// DemoGateway settles charges from configuration alone. Methods listed as
// deferred wait for a callback, declined ones always fail and everything else
// is approved on the spot.
type DemoGateway struct {
	deferred map[reservation.PaymentMethod]struct{}
	declined map[reservation.PaymentMethod]struct{}
}

func NewDemoGateway(cfg config.PaymentConfig) *DemoGateway {
	return &DemoGateway{
		deferred: methodSet(cfg.DeferredMethods),
		declined: methodSet(cfg.DeclinedMethods),
	}
}

func (g *DemoGateway) Charge(_ context.Context, reference string, res *reservation.Reservation) (commands.PaymentOutcome, error) {
	method := res.PaymentMethod()
	outcome := commands.PaymentApproved
	switch {
	case has(g.declined, method):
		outcome = commands.PaymentDeclined
	case has(g.deferred, method):
		outcome = commands.PaymentDeferred
	}

	slog.Debug("demo payment settled",
		"reference", reference,
		"reservation_id", res.ID(),
		"method", method.String(),
		"amount", res.TotalPrice().Amount(),
		"outcome", outcome.String())
	return outcome, nil
}

func methodSet(methods []string) map[reservation.PaymentMethod]struct{} {
	set := make(map[reservation.PaymentMethod]struct{}, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		set[reservation.PaymentMethod(m)] = struct{}{}
	}
	return set
}

func has(set map[reservation.PaymentMethod]struct{}, m reservation.PaymentMethod) bool {
	_, ok := set[m]
	return ok
}
