// Package apptest holds the shared catalog and store setup used by
// application and transport tests.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/notify"
	"cateringhub/internal/app/outbox"
	"cateringhub/internal/app/uow"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
	"cateringhub/internal/infra/fixtures"
	"cateringhub/internal/infra/storage/memory"
)

const (
	ConsumerID      = "user-consumer-1"
	OtherConsumerID = "user-consumer-2"
	VendorOwnerID   = "user-vendor-1"

	VendorID          = vendors.VendorID("vendor-golden-fork")
	PendingVendorID   = vendors.VendorID("vendor-pending")
	MusicVendorID     = vendors.VendorID("vendor-music")
	BuffetPackageID   = vendors.PackageID("pkg-buffet")
	FixedPackageID    = vendors.PackageID("pkg-fixed")
	InactivePackageID = vendors.PackageID("pkg-inactive")
	MusicPackageID    = vendors.PackageID("pkg-music")
	PendingPackageID  = vendors.PackageID("pkg-pending")
	WeddingEventID    = domainevents.EventID("event-wedding")
	BlockedEventID    = domainevents.EventID("event-blocked")
	OtherEventID      = domainevents.EventID("event-other")
	VisaMethodID      = payments.MethodID("pm-visa")
	ForeignMethodID   = payments.MethodID("pm-foreign")
)

// Now is the fixed clock used by handler tests.
var Now = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// Catalog returns a small catalog covering every booking precondition.
func Catalog() fixtures.Catalog {
	wedding := time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	blocked := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	return fixtures.Catalog{
		Vendors: []*vendors.Vendor{
			{ID: VendorID, OwnerUserID: VendorOwnerID, BusinessName: "Golden Fork", BusinessType: vendors.BusinessCatering, Status: vendors.StatusApproved, BlockedDates: []time.Time{blocked}},
			{ID: PendingVendorID, OwnerUserID: "user-vendor-2", BusinessName: "Fresh Start", BusinessType: vendors.BusinessCatering, Status: vendors.StatusPending},
			{ID: MusicVendorID, OwnerUserID: "user-vendor-3", BusinessName: "Sunset Sounds", BusinessType: "entertainment", Status: vendors.StatusApproved},
		},
		Packages: []*vendors.Package{
			{ID: BuffetPackageID, VendorID: VendorID, Name: "Gold Buffet", PriceType: pricing.PerPerson, BasePrice: money.Must("12.50"), SetupFee: money.Must("50"), ServiceChargePercent: decimal.Zero, MinGuests: intPtr(30), MaxGuests: intPtr(300), IsActive: true},
			{ID: FixedPackageID, VendorID: VendorID, Name: "Canape Hour", PriceType: pricing.Fixed, BasePrice: money.Must("800"), SetupFee: money.Zero(), ServiceChargePercent: decimal.RequireFromString("12.5"), IsActive: true},
			{ID: InactivePackageID, VendorID: VendorID, Name: "Retired", PriceType: pricing.PerPerson, BasePrice: money.Must("9"), SetupFee: money.Zero(), IsActive: false},
			{ID: MusicPackageID, VendorID: MusicVendorID, Name: "DJ Set", PriceType: pricing.Fixed, BasePrice: money.Must("450"), SetupFee: money.Zero(), IsActive: true},
			{ID: PendingPackageID, VendorID: PendingVendorID, Name: "Starter", PriceType: pricing.Fixed, BasePrice: money.Must("100"), SetupFee: money.Zero(), IsActive: true},
		},
		Events: []*domainevents.Event{
			{ID: WeddingEventID, OwnerID: ConsumerID, Name: "Ana & Luis Wedding", EventDate: wedding, Venue: "Riverside Hall", ExpectedGuests: 80},
			{ID: BlockedEventID, OwnerID: ConsumerID, Name: "Christmas Party", EventDate: blocked, ExpectedGuests: 40},
			{ID: OtherEventID, OwnerID: OtherConsumerID, Name: "Someone Else's Party", EventDate: wedding, ExpectedGuests: 50},
		},
		PaymentMethods: []*payments.Method{
			{ID: VisaMethodID, UserID: ConsumerID, Brand: "Visa", Last4: "4242"},
			{ID: ForeignMethodID, UserID: OtherConsumerID, Brand: "Amex", Last4: "0005"},
		},
	}
}

// NewStore returns a memory store seeded with Catalog.
func NewStore(t testing.TB) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.SeedCatalog(context.Background(), Catalog()))
	return store
}

// Dispatcher returns the notification dispatcher wired to store's outbox.
func Dispatcher(store *memory.Store) notify.UnitDispatcher {
	return notify.UnitDispatcher{Outbox: store.Outbox(), Encoder: outbox.JSONEventEncoder{}, Now: func() time.Time { return Now }}
}

// InUnit runs fn inside a committed unit of work, mirroring the transaction middleware.
func InUnit[R any](store *memory.Store, fn func(ctx context.Context) (R, error)) (R, error) {
	var out R
	err := uow.Run(context.Background(), store, func(ctx context.Context, _ uow.UnitOfWork) error {
		res, err := fn(ctx)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Notifications lists the committed notifications of userID, newest first.
func Notifications(t testing.TB, store *memory.Store, userID string) []*notifications.Notification {
	t.Helper()
	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = unit.Rollback(ctx) }()
	out, err := unit.Notifications().ListByUser(ctx, userID, 0)
	require.NoError(t, err)
	return out
}
