package memory

import (
	"context"
	"errors"
	"sync"

	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/shared/events"
	"cateringhub/internal/domain/vendors"
	"cateringhub/internal/infra/fixtures"
)

var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Store keeps every aggregate in process memory. A writing unit of work holds
// the store lock from Begin until Commit or Rollback, so read-validate-write
// sequences never interleave; read-only units share a read lock.
type Store struct {
	mu sync.RWMutex

	bookings      map[domainbooking.BookingID]*domainbooking.Booking
	references    map[string]domainbooking.BookingID
	vendors       map[vendors.VendorID]*vendors.Vendor
	packages      map[vendors.PackageID]*vendors.Package
	events        map[domainevents.EventID]*domainevents.Event
	methods       map[payments.MethodID]*payments.Method
	reviews       map[domainreviews.ReviewID]*domainreviews.Review
	reviewByBook  map[domainbooking.BookingID]domainreviews.ReviewID
	notifications map[notifications.NotificationID]*notifications.Notification

	outbox *Outbox
}

func NewStore() *Store {
	s := &Store{
		bookings:      make(map[domainbooking.BookingID]*domainbooking.Booking),
		references:    make(map[string]domainbooking.BookingID),
		vendors:       make(map[vendors.VendorID]*vendors.Vendor),
		packages:      make(map[vendors.PackageID]*vendors.Package),
		events:        make(map[domainevents.EventID]*domainevents.Event),
		methods:       make(map[payments.MethodID]*payments.Method),
		reviews:       make(map[domainreviews.ReviewID]*domainreviews.Review),
		reviewByBook:  make(map[domainbooking.BookingID]domainreviews.ReviewID),
		notifications: make(map[notifications.NotificationID]*notifications.Notification),
	}
	s.outbox = &Outbox{}
	return s
}

// Outbox returns the store's event log; records added inside a unit only
// become visible after it commits.
func (s *Store) Outbox() *Outbox {
	return s.outbox
}

// Begin blocks until the unit can run. ctx is only consulted before the wait.
func (s *Store) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.ReadOnly {
		s.mu.RLock()
	} else {
		s.mu.Lock()
	}
	return newUnit(s, opts.ReadOnly), nil
}

// SeedCatalog replaces or adds the catalog records.
func (s *Store) SeedCatalog(ctx context.Context, catalog fixtures.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range catalog.Vendors {
		s.vendors[v.ID] = cloneVendor(v)
	}
	for _, p := range catalog.Packages {
		s.packages[p.ID] = clonePackage(p)
	}
	for _, e := range catalog.Events {
		cp := *e
		s.events[e.ID] = &cp
	}
	for _, m := range catalog.PaymentMethods {
		cp := *m
		s.methods[m.ID] = &cp
	}
	return nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.Recorder = events.Recorder{}
	return &cp
}

func cloneVendor(v *vendors.Vendor) *vendors.Vendor {
	cp := *v
	cp.BlockedDates = append(cp.BlockedDates[:0:0], v.BlockedDates...)
	return &cp
}

func clonePackage(p *vendors.Package) *vendors.Package {
	cp := *p
	cp.DietaryTags = append(cp.DietaryTags[:0:0], p.DietaryTags...)
	return &cp
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	cp := *r
	return &cp
}

func cloneNotification(n *notifications.Notification) *notifications.Notification {
	cp := *n
	return &cp
}

var (
	_ uow.UoWFactory  = (*Store)(nil)
	_ fixtures.Seeder = (*Store)(nil)
)
