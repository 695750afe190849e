package notifications

import (
	"fmt"

	"cateringhub/internal/domain/booking"
)

// Content is the user-visible part of a notification.
type Content struct {
	Type    Type
	Title   string
	Message string
}

type statusTemplate struct {
	kind    Type
	title   string
	message string // formatted with the booking reference
}

// statusTemplates maps every reachable target status to the consumer notice.
var statusTemplates = map[booking.Status]statusTemplate{
	booking.StatusConfirmed: {
		kind:    TypeBookingConfirmed,
		title:   "Booking confirmed",
		message: "Booking confirmed! Your catering booking %s has been accepted by the vendor.",
	},
	booking.StatusCancelled: {
		kind:    TypeBookingDeclined,
		title:   "Booking declined",
		message: "Booking declined. The vendor could not take booking %s.",
	},
	booking.StatusInPreparation: {
		kind:    TypeBookingInPreparation,
		title:   "Catering in preparation",
		message: "The vendor has started preparing the catering for booking %s.",
	},
	booking.StatusDelivered: {
		kind:    TypeBookingDelivered,
		title:   "Catering delivered",
		message: "The catering for booking %s has been delivered.",
	},
	booking.StatusCompleted: {
		kind:    TypeBookingCompleted,
		title:   "Booking completed",
		message: "Booking %s is complete. Leave a review!",
	},
}

// ForStatus returns the consumer notice for a transition into target.
func ForStatus(target booking.Status, reference string) (Content, bool) {
	tpl, ok := statusTemplates[target]
	if !ok {
		return Content{}, false
	}
	return Content{Type: tpl.kind, Title: tpl.title, Message: fmt.Sprintf(tpl.message, reference)}, true
}

// NewBooking is the vendor notice for a freshly created booking.
func NewBooking(eventName, packageName string, guests int) Content {
	return Content{
		Type:    TypeNewBooking,
		Title:   "New booking request",
		Message: fmt.Sprintf("New booking request for %s: %s for %d guests.", eventName, packageName, guests),
	}
}

// PaymentReceived is the vendor notice for a paid booking.
func PaymentReceived(reference, total string) Content {
	return Content{
		Type:    TypePaymentReceived,
		Title:   "Payment received",
		Message: fmt.Sprintf("Payment of %s received for booking %s.", total, reference),
	}
}

// ConsumerLink and VendorLink point the recipient at the booking.
func ConsumerLink(id booking.BookingID) string {
	return "/bookings/" + string(id)
}

func VendorLink(id booking.BookingID) string {
	return "/vendor/bookings/" + string(id)
}
