package mongo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"cateringhub/internal/app/uow"
)

const transientTransactionLabel = "TransientTransactionError"

var (
	ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")
	errReadOnly                = errors.New("mongo: write attempted in read-only unit")
)

// conflict tags transaction write conflicts so the command can be re-run.
func conflict(err error) error {
	if err == nil {
		return nil
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(transientTransactionLabel) {
		return fmt.Errorf("%w: %w", uow.ErrConflict, err)
	}
	return err
}
