package pricing

import (
	"github.com/shopspring/decimal"

	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/shared/money"
)

type PriceType string

const (
	PerPerson PriceType = "per_person"
	Fixed     PriceType = "fixed"
)

func (t PriceType) Valid() bool {
	return t == PerPerson || t == Fixed
}

var (
	ErrUnknownPriceType  = failure.New(failure.KindValidation, "pricing: unknown price type")
	ErrNegativeComponent = failure.New(failure.KindValidation, "pricing: price components cannot be negative")
	ErrInvalidGuests     = failure.New(failure.KindValidation, "pricing: guest count must be positive")
	ErrSubCentComponent  = failure.New(failure.KindValidation, "pricing: base price and setup fee must be whole cents")
)

// QuoteInput carries the package pricing attributes and the requested guest count.
type QuoteInput struct {
	PriceType            PriceType
	BasePrice            money.Money
	SetupFee             money.Money
	ServiceChargePercent decimal.Decimal
	GuestCount           int
}

// Breakdown is the priced snapshot stored on a booking.
type Breakdown struct {
	Subtotal       money.Money
	ServiceCharges money.Money
	SetupFee       money.Money
	Total          money.Money
}

// Quote prices a package for a guest count. Guest-count bounds are the caller's
// precondition and are not checked here. Base price and setup fee must already
// be whole cents, so the subtotal is exact and only the service charge rounds.
func Quote(in QuoteInput) (Breakdown, error) {
	if !in.PriceType.Valid() {
		return Breakdown{}, ErrUnknownPriceType
	}
	if in.GuestCount <= 0 {
		return Breakdown{}, ErrInvalidGuests
	}
	if in.BasePrice.IsNegative() || in.SetupFee.IsNegative() || in.ServiceChargePercent.IsNegative() {
		return Breakdown{}, ErrNegativeComponent
	}
	if !in.BasePrice.WithinScale() || !in.SetupFee.WithinScale() {
		return Breakdown{}, ErrSubCentComponent
	}

	subtotal := in.BasePrice
	if in.PriceType == PerPerson {
		subtotal = in.BasePrice.Multiply(int64(in.GuestCount))
	}
	subtotal = subtotal.Round()
	service := subtotal.Percent(in.ServiceChargePercent)
	setup := in.SetupFee

	return Breakdown{
		Subtotal:       subtotal,
		ServiceCharges: service,
		SetupFee:       setup,
		Total:          subtotal.Add(service).Add(setup),
	}, nil
}
