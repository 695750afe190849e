package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/payments"
	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/money"
	"cateringhub/internal/domain/vendors"
)

// Catalog is the reference data bookings are made against.
type Catalog struct {
	Vendors        []*vendors.Vendor
	Packages       []*vendors.Package
	Events         []*domainevents.Event
	PaymentMethods []*payments.Method
}

// Seeder stores a catalog; both storage backends implement it.
type Seeder interface {
	SeedCatalog(ctx context.Context, catalog Catalog) error
}

// Load reads a catalog file. A missing file yields an empty catalog.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Catalog{}, nil
		}
		return Catalog{}, fmt.Errorf("read fixtures: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Catalog{}, nil
	}
	return Decode(data)
}

func Decode(data []byte) (Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("decode fixtures: %w", err)
	}
	var out Catalog
	for _, fx := range file.Vendors {
		v, err := fx.toDomain()
		if err != nil {
			return Catalog{}, fmt.Errorf("vendor %s: %w", fx.ID, err)
		}
		out.Vendors = append(out.Vendors, v)
	}
	for _, fx := range file.Packages {
		p, err := fx.toDomain()
		if err != nil {
			return Catalog{}, fmt.Errorf("package %s: %w", fx.ID, err)
		}
		out.Packages = append(out.Packages, p)
	}
	for _, fx := range file.Events {
		date, err := time.Parse(time.DateOnly, fx.EventDate)
		if err != nil {
			return Catalog{}, fmt.Errorf("event %s: %w", fx.ID, err)
		}
		out.Events = append(out.Events, &domainevents.Event{
			ID:             domainevents.EventID(fx.ID),
			OwnerID:        fx.OwnerID,
			Name:           fx.Name,
			EventDate:      date,
			Venue:          fx.Venue,
			ExpectedGuests: fx.ExpectedGuests,
		})
	}
	for _, fx := range file.PaymentMethods {
		out.PaymentMethods = append(out.PaymentMethods, &payments.Method{
			ID:     payments.MethodID(fx.ID),
			UserID: fx.UserID,
			Brand:  fx.Brand,
			Last4:  fx.Last4,
		})
	}
	return out, nil
}

type catalogFile struct {
	Vendors        []vendorFixture  `json:"vendors"`
	Packages       []packageFixture `json:"packages"`
	Events         []eventFixture   `json:"events"`
	PaymentMethods []methodFixture  `json:"payment_methods"`
}

type vendorFixture struct {
	ID           string   `json:"id"`
	OwnerUserID  string   `json:"owner_user_id"`
	BusinessName string   `json:"business_name"`
	BusinessType string   `json:"business_type"`
	Status       string   `json:"status"`
	BlockedDates []string `json:"blocked_dates"`
}

func (fx vendorFixture) toDomain() (*vendors.Vendor, error) {
	v := &vendors.Vendor{
		ID:           vendors.VendorID(fx.ID),
		OwnerUserID:  fx.OwnerUserID,
		BusinessName: fx.BusinessName,
		BusinessType: fx.BusinessType,
		Status:       vendors.Status(fx.Status),
		RatingAvg:    decimal.Zero,
	}
	for _, raw := range fx.BlockedDates {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, err
		}
		v.BlockedDates = append(v.BlockedDates, d)
	}
	return v, nil
}

type packageFixture struct {
	ID                   string   `json:"id"`
	VendorID             string   `json:"vendor_id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	PriceType            string   `json:"price_type"`
	BasePrice            string   `json:"base_price"`
	MinGuests            *int     `json:"min_guests"`
	MaxGuests            *int     `json:"max_guests"`
	SetupFee             string   `json:"setup_fee"`
	ServiceChargePercent string   `json:"service_charge_percent"`
	DietaryTags          []string `json:"dietary_tags"`
	IsActive             bool     `json:"is_active"`
}

func (fx packageFixture) toDomain() (*vendors.Package, error) {
	base, err := money.Parse(fx.BasePrice)
	if err != nil {
		return nil, err
	}
	setup := money.Zero()
	if fx.SetupFee != "" {
		if setup, err = money.Parse(fx.SetupFee); err != nil {
			return nil, err
		}
	}
	percent := decimal.Zero
	if fx.ServiceChargePercent != "" {
		if percent, err = decimal.NewFromString(fx.ServiceChargePercent); err != nil {
			return nil, err
		}
	}
	priceType := pricing.PriceType(fx.PriceType)
	if !priceType.Valid() {
		return nil, pricing.ErrUnknownPriceType
	}
	return &vendors.Package{
		ID:                   vendors.PackageID(fx.ID),
		VendorID:             vendors.VendorID(fx.VendorID),
		Name:                 fx.Name,
		Description:          fx.Description,
		PriceType:            priceType,
		BasePrice:            base,
		MinGuests:            fx.MinGuests,
		MaxGuests:            fx.MaxGuests,
		SetupFee:             setup,
		ServiceChargePercent: percent,
		DietaryTags:          fx.DietaryTags,
		IsActive:             fx.IsActive,
	}, nil
}

type eventFixture struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name"`
	EventDate      string `json:"event_date"`
	Venue          string `json:"venue"`
	ExpectedGuests int    `json:"expected_guests"`
}

type methodFixture struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Brand  string `json:"brand"`
	Last4  string `json:"last4"`
}
