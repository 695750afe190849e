package uow

import (
	"context"

	"cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	"cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/vendors"
)

// UnitOfWork groups repositories behind one transaction boundary. Every
// read made through a unit reflects the writes made through it.
type UnitOfWork interface {
	Bookings() booking.Repository
	Vendors() vendors.Repository
	Packages() vendors.PackageRepository
	Events() domainevents.Repository
	PaymentMethods() payments.Repository
	Reviews() reviews.Repository
	Notifications() notifications.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
