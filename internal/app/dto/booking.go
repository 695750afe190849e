package dto

import (
	"time"

	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
)

type Booking struct {
	ID                  string      `json:"id"`
	BookingReference    string      `json:"bookingReference"`
	ConsumerID          string      `json:"consumerId"`
	VendorID            string      `json:"vendorId"`
	EventID             string      `json:"eventId"`
	PackageID           string      `json:"packageId"`
	GuestCount          int         `json:"guestCount"`
	Subtotal            money.Money `json:"subtotal"`
	ServiceCharges      money.Money `json:"serviceCharges"`
	SetupFee            money.Money `json:"setupFee"`
	TotalAmount         money.Money `json:"totalAmount"`
	SpecialRequirements string      `json:"specialRequirements,omitempty"`
	Status              string      `json:"status"`
	PaymentStatus       string      `json:"paymentStatus"`
	PaymentMethod       string      `json:"paymentMethod,omitempty"`
	PaidAt              *time.Time  `json:"paidAt,omitempty"`
	CancellationReason  string      `json:"cancellationReason,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`

	Event   *EventSummary   `json:"event,omitempty"`
	Vendor  *VendorSummary  `json:"vendor,omitempty"`
	Package *PackageSummary `json:"package,omitempty"`
	Review  *Review         `json:"review,omitempty"`
}

type EventSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EventDate      time.Time `json:"eventDate"`
	Venue          string    `json:"venue,omitempty"`
	ExpectedGuests int       `json:"expectedGuests,omitempty"`
}

type VendorSummary struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
	BusinessType string `json:"businessType"`
	RatingAvg    string `json:"ratingAvg"`
	RatingCount  int    `json:"ratingCount"`
}

type PackageSummary struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	PriceType            string      `json:"priceType"`
	BasePrice            money.Money `json:"basePrice"`
	SetupFee             money.Money `json:"setupFee"`
	ServiceChargePercent string      `json:"serviceChargePercent"`
	DietaryTags          []string    `json:"dietaryTags,omitempty"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	out := Booking{
		ID:                  string(b.ID),
		BookingReference:    b.Reference,
		ConsumerID:          b.ConsumerID,
		VendorID:            string(b.VendorID),
		EventID:             string(b.EventID),
		PackageID:           string(b.PackageID),
		GuestCount:          b.GuestCount,
		Subtotal:            b.Price.Subtotal,
		ServiceCharges:      b.Price.ServiceCharges,
		SetupFee:            b.Price.SetupFee,
		TotalAmount:         b.Price.Total,
		SpecialRequirements: b.SpecialRequirements,
		Status:              string(b.Status),
		PaymentStatus:       string(b.PaymentStatus),
		PaymentMethod:       b.PaymentMethod,
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if !b.PaidAt.IsZero() {
		paidAt := b.PaidAt
		out.PaidAt = &paidAt
	}
	return out
}

// WithRelations attaches whichever related records were loaded.
func (b Booking) WithRelations(event *domainevents.Event, vendor *vendors.Vendor, pkg *vendors.Package) Booking {
	if event != nil {
		b.Event = &EventSummary{
			ID:             string(event.ID),
			Name:           event.Name,
			EventDate:      event.EventDate,
			Venue:          event.Venue,
			ExpectedGuests: event.ExpectedGuests,
		}
	}
	if vendor != nil {
		b.Vendor = &VendorSummary{
			ID:           string(vendor.ID),
			BusinessName: vendor.BusinessName,
			BusinessType: vendor.BusinessType,
			RatingAvg:    vendor.RatingAvg.StringFixed(2),
			RatingCount:  vendor.RatingCount,
		}
	}
	if pkg != nil {
		b.Package = &PackageSummary{
			ID:                   string(pkg.ID),
			Name:                 pkg.Name,
			PriceType:            string(pkg.PriceType),
			BasePrice:            pkg.BasePrice,
			SetupFee:             pkg.SetupFee,
			ServiceChargePercent: pkg.ServiceChargePercent.String(),
			DietaryTags:          pkg.DietaryTags,
		}
	}
	return b
}
