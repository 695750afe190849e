package booking

import (
	"time"

	"cateringhub/internal/domain/vendors"
)

type Created struct {
	BookingID  BookingID        `json:"booking_id"`
	Reference  string           `json:"reference"`
	VendorID   vendors.VendorID `json:"vendor_id"`
	ConsumerID string           `json:"consumer_id"`
	Total      string           `json:"total"`
	At         time.Time        `json:"at"`
}

func (e Created) EventName() string     { return "booking.created" }
func (e Created) AggregateID() string   { return string(e.BookingID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	BookingID BookingID `json:"booking_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	At        time.Time `json:"at"`
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Paid struct {
	BookingID BookingID `json:"booking_id"`
	Method    string    `json:"method"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}

func (e Paid) EventName() string     { return "booking.paid" }
func (e Paid) AggregateID() string   { return string(e.BookingID) }
func (e Paid) OccurredAt() time.Time { return e.At }
