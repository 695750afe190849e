package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/vendors"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database
}

// Begin starts a session. Write units also start a snapshot transaction;
// read-only units read outside a transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	if !opts.ReadOnly {
		txnOpts := options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority())
		if err := session.StartTransaction(txnOpts); err != nil {
			session.EndSession(ctx)
			return nil, err
		}
	}
	return &Unit{db: f.DB, session: session, readOnly: opts.ReadOnly}, nil
}

type Unit struct {
	db       *mongo.Database
	session  mongo.Session
	readOnly bool
}

func (u *Unit) Bookings() domainbooking.Repository {
	return bookingRepository{unit: u, col: u.db.Collection(colBookings)}
}

func (u *Unit) Vendors() vendors.Repository {
	return vendorRepository{unit: u, col: u.db.Collection(colVendors)}
}

func (u *Unit) Packages() vendors.PackageRepository {
	return packageRepository{col: u.db.Collection(colPackages)}
}

func (u *Unit) Events() domainevents.Repository {
	return eventRepository{col: u.db.Collection(colEvents)}
}

func (u *Unit) PaymentMethods() payments.Repository {
	return methodRepository{col: u.db.Collection(colPaymentMethods)}
}

func (u *Unit) Reviews() domainreviews.Repository {
	return reviewRepository{unit: u, col: u.db.Collection(colReviews)}
}

func (u *Unit) Notifications() notifications.Repository {
	return notificationRepository{unit: u, col: u.db.Collection(colNotifications)}
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return conflict(u.session.CommitTransaction(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func (u *Unit) writable() error {
	if u.readOnly {
		return errReadOnly
	}
	return nil
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
