package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appoutbox "cateringhub/internal/app/outbox"
	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/vendors"
)

// Unit stages writes and applies them to the store on Commit.
type Unit struct {
	store    *Store
	readOnly bool

	once sync.Once
	done bool

	bookings      map[domainbooking.BookingID]*domainbooking.Booking
	vendors       map[vendors.VendorID]*vendors.Vendor
	reviews       map[domainreviews.ReviewID]*domainreviews.Review
	notifications map[notifications.NotificationID]*notifications.Notification
	outbox        []appoutbox.EventRecord
}

func newUnit(store *Store, readOnly bool) *Unit {
	return &Unit{
		store:         store,
		readOnly:      readOnly,
		bookings:      make(map[domainbooking.BookingID]*domainbooking.Booking),
		vendors:       make(map[vendors.VendorID]*vendors.Vendor),
		reviews:       make(map[domainreviews.ReviewID]*domainreviews.Review),
		notifications: make(map[notifications.NotificationID]*notifications.Notification),
	}
}

func (u *Unit) Bookings() domainbooking.Repository      { return bookingRepo{u} }
func (u *Unit) Vendors() vendors.Repository             { return vendorRepo{u} }
func (u *Unit) Packages() vendors.PackageRepository     { return packageRepo{u} }
func (u *Unit) Events() domainevents.Repository         { return eventRepo{u} }
func (u *Unit) PaymentMethods() payments.Repository     { return methodRepo{u} }
func (u *Unit) Reviews() domainreviews.Repository       { return reviewRepo{u} }
func (u *Unit) Notifications() notifications.Repository { return notificationRepo{u} }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	s := u.store
	if !u.readOnly {
		for id, b := range u.bookings {
			s.bookings[id] = b
			s.references[b.Reference] = id
		}
		for id, v := range u.vendors {
			s.vendors[id] = v
		}
		for id, r := range u.reviews {
			s.reviews[id] = r
			s.reviewByBook[r.BookingID] = id
		}
		for id, n := range u.notifications {
			s.notifications[id] = n
		}
		s.outbox.append(u.outbox...)
	}
	u.finish()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.finish()
	return nil
}

func (u *Unit) finish() {
	u.once.Do(func() {
		u.done = true
		if u.readOnly {
			u.store.mu.RUnlock()
		} else {
			u.store.mu.Unlock()
		}
	})
}

func (u *Unit) writable() error {
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return errReadOnly
	}
	return nil
}

func (u *Unit) stageEvent(rec appoutbox.EventRecord) error {
	if err := u.writable(); err != nil {
		return err
	}
	u.outbox = append(u.outbox, rec)
	return nil
}

type bookingRepo struct{ u *Unit }

func (r bookingRepo) lookup(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	if b, ok := r.u.bookings[id]; ok {
		return b, true
	}
	b, ok := r.u.store.bookings[id]
	return b, ok
}

func (r bookingRepo) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b, ok := r.lookup(id)
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r bookingRepo) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, exists := r.lookup(b.ID); exists {
		return errDuplicateID
	}
	if taken, _ := r.ReferenceExists(ctx, b.Reference); taken {
		return domainbooking.ErrReferenceTaken
	}
	b.Version = 1
	r.u.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r bookingRepo) Save(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	current, ok := r.lookup(b.ID)
	if !ok {
		return domainbooking.ErrNotFound
	}
	if current.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	r.u.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r bookingRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if _, ok := r.u.store.references[reference]; ok {
		return true, nil
	}
	for _, b := range r.u.bookings {
		if b.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r bookingRepo) ListByConsumer(ctx context.Context, consumerID string, statuses []domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool {
		return b.ConsumerID == consumerID && b.Status.MatchesAny(statuses)
	}), nil
}

func (r bookingRepo) ListByVendor(ctx context.Context, vendorID vendors.VendorID, statuses []domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.list(func(b *domainbooking.Booking) bool {
		return b.VendorID == vendorID && b.Status.MatchesAny(statuses)
	}), nil
}

func (r bookingRepo) list(match func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	seen := make(map[domainbooking.BookingID]struct{}, len(r.u.bookings))
	out := make([]*domainbooking.Booking, 0)
	for id, b := range r.u.bookings {
		seen[id] = struct{}{}
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	for id, b := range r.u.store.bookings {
		if _, ok := seen[id]; ok {
			continue
		}
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type vendorRepo struct{ u *Unit }

func (r vendorRepo) ByID(ctx context.Context, id vendors.VendorID) (*vendors.Vendor, error) {
	if v, ok := r.u.vendors[id]; ok {
		return cloneVendor(v), nil
	}
	v, ok := r.u.store.vendors[id]
	if !ok {
		return nil, vendors.ErrNotFound
	}
	return cloneVendor(v), nil
}

func (r vendorRepo) Save(ctx context.Context, v *vendors.Vendor) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	current, err := r.ByID(ctx, v.ID)
	if err != nil {
		return err
	}
	if current.Version != v.Version {
		return uow.ErrVendorChanged
	}
	v.Version++
	r.u.vendors[v.ID] = cloneVendor(v)
	return nil
}

type packageRepo struct{ u *Unit }

func (r packageRepo) ByID(ctx context.Context, id vendors.PackageID) (*vendors.Package, error) {
	p, ok := r.u.store.packages[id]
	if !ok {
		return nil, vendors.ErrPackageNotFound
	}
	return clonePackage(p), nil
}

type eventRepo struct{ u *Unit }

func (r eventRepo) ByID(ctx context.Context, id domainevents.EventID) (*domainevents.Event, error) {
	e, ok := r.u.store.events[id]
	if !ok {
		return nil, domainevents.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

type methodRepo struct{ u *Unit }

func (r methodRepo) ByID(ctx context.Context, id payments.MethodID) (*payments.Method, error) {
	m, ok := r.u.store.methods[id]
	if !ok {
		return nil, payments.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

type reviewRepo struct{ u *Unit }

func (r reviewRepo) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	for _, rv := range r.u.reviews {
		if rv.BookingID == bookingID {
			return cloneReview(rv), nil
		}
	}
	id, ok := r.u.store.reviewByBook[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(r.u.store.reviews[id]), nil
}

func (r reviewRepo) Insert(ctx context.Context, review *domainreviews.Review) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, err := r.ByBooking(ctx, review.BookingID); err == nil {
		return domainreviews.ErrAlreadyReviewed
	}
	r.u.reviews[review.ID] = cloneReview(review)
	return nil
}

func (r reviewRepo) ListByVendor(ctx context.Context, vendorID vendors.VendorID) ([]*domainreviews.Review, error) {
	out := make([]*domainreviews.Review, 0)
	for _, rv := range r.u.store.reviews {
		if rv.VendorID == vendorID {
			out = append(out, cloneReview(rv))
		}
	}
	for _, rv := range r.u.reviews {
		if rv.VendorID == vendorID {
			out = append(out, cloneReview(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type notificationRepo struct{ u *Unit }

func (r notificationRepo) Insert(ctx context.Context, n *notifications.Notification) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, ok := r.u.store.notifications[n.ID]; ok {
		return errDuplicateID
	}
	if _, ok := r.u.notifications[n.ID]; ok {
		return errDuplicateID
	}
	r.u.notifications[n.ID] = cloneNotification(n)
	return nil
}

func (r notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*notifications.Notification, error) {
	out := make([]*notifications.Notification, 0)
	for id, n := range r.u.store.notifications {
		if _, staged := r.u.notifications[id]; staged {
			continue
		}
		if n.UserID == userID {
			out = append(out, cloneNotification(n))
		}
	}
	for _, n := range r.u.notifications {
		if n.UserID == userID {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationRepo) MarkDelivered(ctx context.Context, id notifications.NotificationID, at time.Time) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	n, ok := r.u.notifications[id]
	if !ok {
		stored, found := r.u.store.notifications[id]
		if !found {
			return errNotificationNotFound
		}
		n = cloneNotification(stored)
	}
	if n.DeliveredAt.IsZero() {
		n.DeliveredAt = at.UTC()
	}
	r.u.notifications[id] = n
	return nil
}
