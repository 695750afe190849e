package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cateringhub/internal/domain/booking"
)

func TestEveryTransitionTargetHasATemplate(t *testing.T) {
	for _, status := range booking.AllStatuses {
		if status == booking.StatusPending {
			continue
		}
		content, ok := ForStatus(status, "BK-2026-AAAAAA")
		assert.True(t, ok, status)
		assert.NotEmpty(t, content.Type)
		assert.Contains(t, content.Message, "BK-2026-AAAAAA")
	}
	_, ok := ForStatus(booking.StatusPending, "x")
	assert.False(t, ok)
}

func TestTemplateWording(t *testing.T) {
	c, _ := ForStatus(booking.StatusConfirmed, "R")
	assert.Equal(t, TypeBookingConfirmed, c.Type)
	assert.Contains(t, c.Message, "Booking confirmed")

	c, _ = ForStatus(booking.StatusCancelled, "R")
	assert.Contains(t, c.Message, "Booking declined")

	c, _ = ForStatus(booking.StatusCompleted, "R")
	assert.Contains(t, c.Message, "Leave a review!")

	nb := NewBooking("Wedding", "Gold Buffet", 80)
	assert.Equal(t, TypeNewBooking, nb.Type)
	assert.Contains(t, nb.Message, "Wedding")
	assert.Contains(t, nb.Message, "Gold Buffet")

	assert.Equal(t, TypePaymentReceived, PaymentReceived("R", "1050.00").Type)
	assert.Equal(t, "/bookings/b-1", ConsumerLink("b-1"))
}
