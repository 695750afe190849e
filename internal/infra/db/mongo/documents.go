package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	"cateringhub/internal/domain/pricing"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
)

// Amounts are stored as fixed-point strings so no float rounding creeps in.

type bookingDocument struct {
	ID                  string     `bson:"_id"`
	Reference           string     `bson:"booking_reference"`
	ConsumerID          string     `bson:"consumer_id"`
	VendorID            string     `bson:"vendor_id"`
	EventID             string     `bson:"event_id"`
	PackageID           string     `bson:"package_id"`
	GuestCount          int        `bson:"guest_count"`
	Subtotal            string     `bson:"subtotal"`
	ServiceCharges      string     `bson:"service_charges"`
	SetupFee            string     `bson:"setup_fee"`
	Total               string     `bson:"total_amount"`
	SpecialRequirements string     `bson:"special_requirements,omitempty"`
	Status              string     `bson:"status"`
	PaymentStatus       string     `bson:"payment_status"`
	PaymentMethod       string     `bson:"payment_method,omitempty"`
	PaidAt              *time.Time `bson:"paid_at,omitempty"`
	CancellationReason  string     `bson:"cancellation_reason,omitempty"`
	CreatedAt           time.Time  `bson:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at"`
	Version             int64      `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:                  string(b.ID),
		Reference:           b.Reference,
		ConsumerID:          b.ConsumerID,
		VendorID:            string(b.VendorID),
		EventID:             string(b.EventID),
		PackageID:           string(b.PackageID),
		GuestCount:          b.GuestCount,
		Subtotal:            b.Price.Subtotal.String(),
		ServiceCharges:      b.Price.ServiceCharges.String(),
		SetupFee:            b.Price.SetupFee.String(),
		Total:               b.Price.Total.String(),
		SpecialRequirements: b.SpecialRequirements,
		Status:              string(b.Status),
		PaymentStatus:       string(b.PaymentStatus),
		PaymentMethod:       b.PaymentMethod,
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt.UTC(),
		UpdatedAt:           b.UpdatedAt.UTC(),
		Version:             b.Version,
	}
	if !b.PaidAt.IsZero() {
		paid := b.PaidAt.UTC()
		doc.PaidAt = &paid
	}
	return doc
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	var price pricing.Breakdown
	var err error
	if price.Subtotal, err = money.Parse(d.Subtotal); err != nil {
		return nil, fmt.Errorf("booking %s subtotal: %w", d.ID, err)
	}
	if price.ServiceCharges, err = money.Parse(d.ServiceCharges); err != nil {
		return nil, fmt.Errorf("booking %s service charges: %w", d.ID, err)
	}
	if price.SetupFee, err = money.Parse(d.SetupFee); err != nil {
		return nil, fmt.Errorf("booking %s setup fee: %w", d.ID, err)
	}
	if price.Total, err = money.Parse(d.Total); err != nil {
		return nil, fmt.Errorf("booking %s total: %w", d.ID, err)
	}
	b := &domainbooking.Booking{
		ID:                  domainbooking.BookingID(d.ID),
		Reference:           d.Reference,
		ConsumerID:          d.ConsumerID,
		VendorID:            vendors.VendorID(d.VendorID),
		EventID:             domainevents.EventID(d.EventID),
		PackageID:           vendors.PackageID(d.PackageID),
		GuestCount:          d.GuestCount,
		Price:               price,
		SpecialRequirements: d.SpecialRequirements,
		Status:              domainbooking.Status(d.Status),
		PaymentStatus:       domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentMethod:       d.PaymentMethod,
		CancellationReason:  d.CancellationReason,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
		Version:             d.Version,
	}
	if d.PaidAt != nil {
		b.PaidAt = d.PaidAt.UTC()
	}
	return b, nil
}

type vendorDocument struct {
	ID            string      `bson:"_id"`
	OwnerUserID   string      `bson:"owner_user_id"`
	BusinessName  string      `bson:"business_name"`
	BusinessType  string      `bson:"business_type"`
	Status        string      `bson:"status"`
	RatingAvg     string      `bson:"rating_avg"`
	RatingCount   int         `bson:"rating_count"`
	TotalBookings int         `bson:"total_bookings"`
	BlockedDates  []time.Time `bson:"blocked_dates,omitempty"`
	UpdatedAt     time.Time   `bson:"updated_at"`
	Version       int64       `bson:"version"`
}

func newVendorDocument(v *vendors.Vendor) vendorDocument {
	return vendorDocument{
		ID:            string(v.ID),
		OwnerUserID:   v.OwnerUserID,
		BusinessName:  v.BusinessName,
		BusinessType:  v.BusinessType,
		Status:        string(v.Status),
		RatingAvg:     v.RatingAvg.String(),
		RatingCount:   v.RatingCount,
		TotalBookings: v.TotalBookings,
		BlockedDates:  append([]time.Time(nil), v.BlockedDates...),
		UpdatedAt:     v.UpdatedAt.UTC(),
		Version:       v.Version,
	}
}

func (d vendorDocument) toAggregate() (*vendors.Vendor, error) {
	avg := decimal.Zero
	if d.RatingAvg != "" {
		parsed, err := decimal.NewFromString(d.RatingAvg)
		if err != nil {
			return nil, fmt.Errorf("vendor %s rating: %w", d.ID, err)
		}
		avg = parsed
	}
	dates := make([]time.Time, 0, len(d.BlockedDates))
	for _, t := range d.BlockedDates {
		dates = append(dates, t.UTC())
	}
	return &vendors.Vendor{
		ID:            vendors.VendorID(d.ID),
		OwnerUserID:   d.OwnerUserID,
		BusinessName:  d.BusinessName,
		BusinessType:  d.BusinessType,
		Status:        vendors.Status(d.Status),
		RatingAvg:     avg,
		RatingCount:   d.RatingCount,
		TotalBookings: d.TotalBookings,
		BlockedDates:  dates,
		UpdatedAt:     d.UpdatedAt.UTC(),
		Version:       d.Version,
	}, nil
}

type packageDocument struct {
	ID                   string   `bson:"_id"`
	VendorID             string   `bson:"vendor_id"`
	Name                 string   `bson:"name"`
	Description          string   `bson:"description,omitempty"`
	PriceType            string   `bson:"price_type"`
	BasePrice            string   `bson:"base_price"`
	MinGuests            *int     `bson:"min_guests,omitempty"`
	MaxGuests            *int     `bson:"max_guests,omitempty"`
	SetupFee             string   `bson:"setup_fee"`
	ServiceChargePercent string   `bson:"service_charge_percent"`
	DietaryTags          []string `bson:"dietary_tags,omitempty"`
	IsActive             bool     `bson:"is_active"`
}

func newPackageDocument(p *vendors.Package) packageDocument {
	return packageDocument{
		ID:                   string(p.ID),
		VendorID:             string(p.VendorID),
		Name:                 p.Name,
		Description:          p.Description,
		PriceType:            string(p.PriceType),
		BasePrice:            p.BasePrice.String(),
		MinGuests:            p.MinGuests,
		MaxGuests:            p.MaxGuests,
		SetupFee:             p.SetupFee.String(),
		ServiceChargePercent: p.ServiceChargePercent.String(),
		DietaryTags:          append([]string(nil), p.DietaryTags...),
		IsActive:             p.IsActive,
	}
}

func (d packageDocument) toAggregate() (*vendors.Package, error) {
	base, err := money.Parse(d.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("package %s base price: %w", d.ID, err)
	}
	setup := money.Zero()
	if d.SetupFee != "" {
		if setup, err = money.Parse(d.SetupFee); err != nil {
			return nil, fmt.Errorf("package %s setup fee: %w", d.ID, err)
		}
	}
	percent := decimal.Zero
	if d.ServiceChargePercent != "" {
		if percent, err = decimal.NewFromString(d.ServiceChargePercent); err != nil {
			return nil, fmt.Errorf("package %s service charge: %w", d.ID, err)
		}
	}
	return &vendors.Package{
		ID:                   vendors.PackageID(d.ID),
		VendorID:             vendors.VendorID(d.VendorID),
		Name:                 d.Name,
		Description:          d.Description,
		PriceType:            pricing.PriceType(d.PriceType),
		BasePrice:            base,
		MinGuests:            d.MinGuests,
		MaxGuests:            d.MaxGuests,
		SetupFee:             setup,
		ServiceChargePercent: percent,
		DietaryTags:          append([]string(nil), d.DietaryTags...),
		IsActive:             d.IsActive,
	}, nil
}

type eventDocument struct {
	ID             string    `bson:"_id"`
	OwnerID        string    `bson:"owner_id"`
	Name           string    `bson:"name"`
	EventDate      time.Time `bson:"event_date"`
	Venue          string    `bson:"venue,omitempty"`
	ExpectedGuests int       `bson:"expected_guests,omitempty"`
}

func newEventDocument(e *domainevents.Event) eventDocument {
	return eventDocument{
		ID:             string(e.ID),
		OwnerID:        e.OwnerID,
		Name:           e.Name,
		EventDate:      e.EventDate.UTC(),
		Venue:          e.Venue,
		ExpectedGuests: e.ExpectedGuests,
	}
}

func (d eventDocument) toAggregate() *domainevents.Event {
	return &domainevents.Event{
		ID:             domainevents.EventID(d.ID),
		OwnerID:        d.OwnerID,
		Name:           d.Name,
		EventDate:      d.EventDate.UTC(),
		Venue:          d.Venue,
		ExpectedGuests: d.ExpectedGuests,
	}
}

type methodDocument struct {
	ID     string `bson:"_id"`
	UserID string `bson:"user_id"`
	Brand  string `bson:"brand"`
	Last4  string `bson:"last4"`
}

func newMethodDocument(m *payments.Method) methodDocument {
	return methodDocument{ID: string(m.ID), UserID: m.UserID, Brand: m.Brand, Last4: m.Last4}
}

func (d methodDocument) toAggregate() *payments.Method {
	return &payments.Method{ID: payments.MethodID(d.ID), UserID: d.UserID, Brand: d.Brand, Last4: d.Last4}
}

type reviewDocument struct {
	ID                 string    `bson:"_id"`
	BookingID          string    `bson:"booking_id"`
	VendorID           string    `bson:"vendor_id"`
	UserID             string    `bson:"user_id"`
	RatingOverall      int       `bson:"rating_overall"`
	Text               string    `bson:"review_text,omitempty"`
	FoodRating         *int      `bson:"food_rating,omitempty"`
	ServiceRating      *int      `bson:"service_rating,omitempty"`
	ValueRating        *int      `bson:"value_rating,omitempty"`
	PresentationRating *int      `bson:"presentation_rating,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:                 string(r.ID),
		BookingID:          string(r.BookingID),
		VendorID:           string(r.VendorID),
		UserID:             r.UserID,
		RatingOverall:      r.RatingOverall,
		Text:               r.Text,
		FoodRating:         r.Subratings.Food,
		ServiceRating:      r.Subratings.Service,
		ValueRating:        r.Subratings.Value,
		PresentationRating: r.Subratings.Presentation,
		CreatedAt:          r.CreatedAt.UTC(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:            domainreviews.ReviewID(d.ID),
		BookingID:     domainbooking.BookingID(d.BookingID),
		VendorID:      vendors.VendorID(d.VendorID),
		UserID:        d.UserID,
		RatingOverall: d.RatingOverall,
		Text:          d.Text,
		Subratings: domainreviews.Subratings{
			Food:         d.FoodRating,
			Service:      d.ServiceRating,
			Value:        d.ValueRating,
			Presentation: d.PresentationRating,
		},
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type notificationDocument struct {
	ID          string                 `bson:"_id"`
	UserID      string                 `bson:"user_id"`
	Type        string                 `bson:"type"`
	Title       string                 `bson:"title"`
	Message     string                 `bson:"message"`
	Link        string                 `bson:"link,omitempty"`
	Metadata    notifications.Metadata `bson:"metadata"`
	CreatedAt   time.Time              `bson:"created_at"`
	DeliveredAt *time.Time             `bson:"delivered_at,omitempty"`
}

func newNotificationDocument(n *notifications.Notification) notificationDocument {
	doc := notificationDocument{
		ID:        string(n.ID),
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt.UTC(),
	}
	if !n.DeliveredAt.IsZero() {
		at := n.DeliveredAt.UTC()
		doc.DeliveredAt = &at
	}
	return doc
}

func (d notificationDocument) toAggregate() *notifications.Notification {
	n := &notifications.Notification{
		ID:        notifications.NotificationID(d.ID),
		UserID:    d.UserID,
		Type:      notifications.Type(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		Link:      d.Link,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.DeliveredAt != nil {
		n.DeliveredAt = d.DeliveredAt.UTC()
	}
	return n
}
