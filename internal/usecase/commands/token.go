package commands

import (
	"context"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/shared"
)

var ErrTokenIssueExhausted = errs.Mark(errs.New("could not issue a unique access token"), errs.ErrDatabaseOperationFailed)

type TokenIssuer struct {
	generator TokenGenerator
	attempts  int
}

func NewTokenIssuer(generator TokenGenerator, attempts int) *TokenIssuer {
	if attempts < 1 {
		attempts = 1
	}
	return &TokenIssuer{generator: generator, attempts: attempts}
}

// Issue returns a token no stored reservation carries. It must run inside the
// transaction that attaches the token so the unique index backs the check.
func (i *TokenIssuer) Issue(ctx context.Context, repo shared.ReservationRepository) (reservation.AccessToken, error) {
	for attempt := 0; attempt < i.attempts; attempt++ {
		candidate, err := i.generator.Generate()
		if err != nil {
			return reservation.AccessToken{}, errs.Wrap(err, "generate access token")
		}
		token, err := reservation.NewAccessToken(candidate)
		if err != nil {
			continue
		}
		exists, err := repo.TokenExists(ctx, token.String())
		if err != nil {
			return reservation.AccessToken{}, shared.StoreError(err, ErrTokenIssueExhausted)
		}
		if !exists {
			return token, nil
		}
	}
	return reservation.AccessToken{}, ErrTokenIssueExhausted
}
