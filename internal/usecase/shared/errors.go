package shared

import (
	"rogu-booking/internal/infra"
	"rogu-booking/internal/pkg/errs"
)

// StoreError turns missing-row errors into notFound and marks everything
// else as a database failure.
func StoreError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.WithCause(notFound, err)
	}
	if errs.Is(err, errs.ErrValidation) || errs.Is(err, errs.ErrDatabaseOperationFailed) {
		return err
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
