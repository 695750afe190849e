package vendors

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cateringhub/internal/domain/pricing"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/shared/money"
)

type PackageID string

var ErrPackageNotFound = failure.NotFound("package")

// Package is a vendor's priced offering. Bookings snapshot the computed price,
// so edits here never reach existing bookings.
type Package struct {
	ID                   PackageID
	VendorID             VendorID
	Name                 string
	Description          string
	PriceType            pricing.PriceType
	BasePrice            money.Money
	MinGuests            *int
	MaxGuests            *int
	SetupFee             money.Money
	ServiceChargePercent decimal.Decimal
	DietaryTags          []string
	IsActive             bool
}

// CheckGuests enforces the optional min/max bounds.
func (p *Package) CheckGuests(guests int) error {
	if p.MinGuests != nil && guests < *p.MinGuests {
		return failure.Newf(failure.KindValidation, "guest count must be at least %d for this package", *p.MinGuests)
	}
	if p.MaxGuests != nil && guests > *p.MaxGuests {
		return failure.Newf(failure.KindValidation, "guest count must be at most %d for this package", *p.MaxGuests)
	}
	return nil
}

// QuoteInput maps the package pricing attributes onto the calculator input.
func (p *Package) QuoteInput(guests int) pricing.QuoteInput {
	return pricing.QuoteInput{
		PriceType:            p.PriceType,
		BasePrice:            p.BasePrice,
		SetupFee:             p.SetupFee,
		ServiceChargePercent: p.ServiceChargePercent,
		GuestCount:           guests,
	}
}

func (p *Package) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

type PackageRepository interface {
	ByID(ctx context.Context, id PackageID) (*Package, error)
}
