package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
)

func TestBookingDocumentKeepsExactAmounts(t *testing.T) {
	paid := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	b := &domainbooking.Booking{
		ID:         "b-1",
		Reference:  "BK-2026-ABC123",
		ConsumerID: "user-1",
		VendorID:   "vendor-1",
		EventID:    "event-1",
		PackageID:  "pkg-1",
		GuestCount: 80,
		Price: pricing.Breakdown{
			Subtotal:       money.Must("800.00"),
			ServiceCharges: money.Must("100.00"),
			SetupFee:       money.Must("0.00"),
			Total:          money.Must("900.00"),
		},
		Status:        domainbooking.StatusConfirmed,
		PaymentStatus: domainbooking.PaymentPaid,
		PaymentMethod: "Visa •••• 4242",
		PaidAt:        paid,
		CreatedAt:     paid.Add(-time.Hour),
		UpdatedAt:     paid,
		Version:       3,
	}

	raw, err := bson.Marshal(newBookingDocument(b))
	require.NoError(t, err)
	var doc bookingDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "900.00", doc.Total)

	got, err := doc.toAggregate()
	require.NoError(t, err)
	assert.True(t, got.Price.Total.Equal(money.Must("900")))
	assert.Equal(t, b.Reference, got.Reference)
	assert.Equal(t, paid, got.PaidAt)
	assert.Equal(t, int64(3), got.Version)
}

func TestUnpaidBookingHasNoPaidAt(t *testing.T) {
	doc := newBookingDocument(&domainbooking.Booking{ID: "b-2", Price: pricing.Breakdown{
		Subtotal: money.Zero(), ServiceCharges: money.Zero(), SetupFee: money.Zero(), Total: money.Zero(),
	}})
	assert.Nil(t, doc.PaidAt)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "paid_at")
}

func TestVendorAndPackageDocuments(t *testing.T) {
	minGuests := 30
	p := &vendors.Package{
		ID:                   "pkg-1",
		VendorID:             "vendor-1",
		Name:                 "Gold Buffet",
		PriceType:            pricing.PerPerson,
		BasePrice:            money.Must("12.50"),
		SetupFee:             money.Must("50"),
		ServiceChargePercent: decimal.RequireFromString("12.5"),
		MinGuests:            &minGuests,
		IsActive:             true,
	}
	gotPkg, err := newPackageDocument(p).toAggregate()
	require.NoError(t, err)
	assert.True(t, gotPkg.BasePrice.Equal(p.BasePrice))
	assert.True(t, gotPkg.ServiceChargePercent.Equal(p.ServiceChargePercent))
	assert.Equal(t, 30, *gotPkg.MinGuests)
	assert.Nil(t, gotPkg.MaxGuests)

	v := &vendors.Vendor{ID: "vendor-1", RatingAvg: decimal.RequireFromString("4.50"), RatingCount: 2, Status: vendors.StatusApproved}
	gotVendor, err := newVendorDocument(v).toAggregate()
	require.NoError(t, err)
	assert.True(t, gotVendor.RatingAvg.Equal(v.RatingAvg))
	assert.Equal(t, vendors.StatusApproved, gotVendor.Status)

	_, err = packageDocument{ID: "broken", BasePrice: "twelve"}.toAggregate()
	assert.Error(t, err)
}

func TestConflictTagsTransientErrors(t *testing.T) {
	transient := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{transientTransactionLabel}}
	assert.ErrorIs(t, conflict(transient), uow.ErrConflict)

	plain := errors.New("connection refused")
	assert.Equal(t, plain, conflict(plain))
	assert.NoError(t, conflict(nil))
	assert.False(t, errors.Is(conflict(fmt.Errorf("wrapped: %w", plain)), uow.ErrConflict))
}
