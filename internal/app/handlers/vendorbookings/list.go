package vendorbookings

import (
	"context"
	"log/slog"
	"sort"

	"cateringhub/internal/app/dto"
	handlersupport "cateringhub/internal/app/handlers/support"
	"cateringhub/internal/app/queries"
	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/vendors"
)

const listVendorBookingsKey = "vendor.bookings.list"

type ListQuery struct {
	VendorID string `validate:"required"`
	Status   string
}

func (q ListQuery) Key() string { return listVendorBookingsKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (dto.BookingCollection, error) {
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

	found, err := unit.Bookings().ListByVendor(execCtx, vendors.VendorID(q.VendorID), filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	events := map[domainevents.EventID]*domainevents.Event{}
	pkgs := map[vendors.PackageID]*vendors.Package{}
	items := make([]dto.Booking, 0, len(found))
	for _, b := range found {
		event, ok := events[b.EventID]
		if !ok {
			if event, err = handlersupport.Optional(unit.Events().ByID(execCtx, b.EventID)); err != nil {
				return dto.BookingCollection{}, err
			}
			events[b.EventID] = event
		}
		pkg, ok := pkgs[b.PackageID]
		if !ok {
			if pkg, err = handlersupport.Optional(unit.Packages().ByID(execCtx, b.PackageID)); err != nil {
				return dto.BookingCollection{}, err
			}
			pkgs[b.PackageID] = pkg
		}
		items = append(items, dto.MapBooking(b).WithRelations(event, nil, pkg))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("vendor bookings listed", "vendor_id", q.VendorID, "count", len(items), "status", q.Status)
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListQuery, dto.BookingCollection] = (*ListHandler)(nil)
