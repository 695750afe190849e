package bookings

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/vendors"
)

const (
	listConsumerBookingsKey = "bookings.list_consumer"
	getBookingKey           = "bookings.get"
)

type ListConsumerBookingsQuery struct {
	ConsumerID string `validate:"required"`
	// Status is a comma separated filter; empty means every status.
	Status string
}

func (q ListConsumerBookingsQuery) Key() string { return listConsumerBookingsKey }

type ListConsumerBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListConsumerBookingsHandler) Handle(ctx context.Context, q ListConsumerBookingsQuery) (dto.BookingCollection, error) {
	filter, err := domainbooking.ParseStatusList(q.Status)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	unit, execCtx, release, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if release != nil {
		defer release()
	}

	found, err := unit.Bookings().ListByConsumer(execCtx, strings.TrimSpace(q.ConsumerID), filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	rel := newRelationLoader(unit)
	items := make([]dto.Booking, 0, len(found))
	for _, b := range found {
		item, err := rel.attach(execCtx, b, true)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("consumer bookings listed", "consumer_id", q.ConsumerID, "count", len(items), "status", q.Status)
	}
	return dto.BookingCollection{Items: items}, nil
}

type GetBookingQuery struct {
	ConsumerID string `validate:"required"`
	BookingID  string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, execCtx, release, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if release != nil {
		defer release()
	}

	booking, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !booking.OwnedBy(q.ConsumerID) {
		return dto.Booking{}, domainbooking.ErrNotFound
	}

	item, err := newRelationLoader(unit).attach(execCtx, booking, true)
	if err != nil {
		return dto.Booking{}, err
	}
	review, err := handlersupport.Optional(unit.Reviews().ByBooking(execCtx, booking.ID))
	if err != nil {
		return dto.Booking{}, err
	}
	if review != nil {
		mapped := dto.MapReview(review)
		item.Review = &mapped
	}
	return item, nil
}

// relationLoader memoizes catalog lookups while mapping a page of bookings.
// Relations that no longer exist are left empty.
type relationLoader struct {
	unit     uow.UnitOfWork
	events   map[domainevents.EventID]*domainevents.Event
	vendors  map[vendors.VendorID]*vendors.Vendor
	packages map[vendors.PackageID]*vendors.Package
}

func newRelationLoader(unit uow.UnitOfWork) *relationLoader {
	return &relationLoader{
		unit:     unit,
		events:   map[domainevents.EventID]*domainevents.Event{},
		vendors:  map[vendors.VendorID]*vendors.Vendor{},
		packages: map[vendors.PackageID]*vendors.Package{},
	}
}

func (l *relationLoader) attach(ctx context.Context, b *domainbooking.Booking, withVendor bool) (dto.Booking, error) {
	event, ok := l.events[b.EventID]
	if !ok {
		var err error
		event, err = handlersupport.Optional(l.unit.Events().ByID(ctx, b.EventID))
		if err != nil {
			return dto.Booking{}, err
		}
		l.events[b.EventID] = event
	}
	pkg, ok := l.packages[b.PackageID]
	if !ok {
		var err error
		pkg, err = handlersupport.Optional(l.unit.Packages().ByID(ctx, b.PackageID))
		if err != nil {
			return dto.Booking{}, err
		}
		l.packages[b.PackageID] = pkg
	}
	var vendor *vendors.Vendor
	if withVendor {
		vendor, ok = l.vendors[b.VendorID]
		if !ok {
			var err error
			vendor, err = handlersupport.Optional(l.unit.Vendors().ByID(ctx, b.VendorID))
			if err != nil {
				return dto.Booking{}, err
			}
			l.vendors[b.VendorID] = vendor
		}
	}
	return dto.MapBooking(b).WithRelations(event, vendor, pkg), nil
}

var _ queries.Handler[ListConsumerBookingsQuery, dto.BookingCollection] = (*ListConsumerBookingsHandler)(nil)
var _ queries.Handler[GetBookingQuery, dto.Booking] = (*GetBookingHandler)(nil)
