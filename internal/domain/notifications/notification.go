package notifications

import (
	"context"
	"time"
)

type NotificationID string

type Type string

const (
	TypeNewBooking           Type = "new_booking"
	TypePaymentReceived      Type = "payment_received"
	TypeBookingConfirmed     Type = "booking_confirmed"
	TypeBookingDeclined      Type = "booking_declined"
	TypeBookingInPreparation Type = "booking_in_preparation"
	TypeBookingDelivered     Type = "booking_delivered"
	TypeBookingCompleted     Type = "booking_completed"
)

// Metadata is the typed context attached to a notification.
type Metadata struct {
	BookingID        string `json:"bookingId,omitempty" bson:"booking_id,omitempty"`
	BookingReference string `json:"bookingReference,omitempty" bson:"booking_reference,omitempty"`
	Status           string `json:"status,omitempty" bson:"status,omitempty"`
	EventName        string `json:"eventName,omitempty" bson:"event_name,omitempty"`
	PackageName      string `json:"packageName,omitempty" bson:"package_name,omitempty"`
	PaymentMethod    string `json:"paymentMethod,omitempty" bson:"payment_method,omitempty"`
}

type Notification struct {
	ID          NotificationID
	UserID      string
	Type        Type
	Title       string
	Message     string
	Link        string
	Metadata    Metadata
	CreatedAt   time.Time
	DeliveredAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error)
	MarkDelivered(ctx context.Context, id NotificationID, at time.Time) error
}

// CreatedEventName names the event relayed once a notification is stored.
const CreatedEventName = "notification.created"

// Created is relayed to the delivery channel once the notification is stored.
type Created struct {
	NotificationID NotificationID `json:"notification_id"`
	UserID         string         `json:"user_id"`
	Type           Type           `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Link           string         `json:"link"`
	Metadata       Metadata       `json:"metadata"`
	At             time.Time      `json:"at"`
}

func (e Created) EventName() string     { return CreatedEventName }
func (e Created) AggregateID() string   { return string(e.NotificationID) }
func (e Created) OccurredAt() time.Time { return e.At }

// CreatedEvent builds the relay event for n.
func CreatedEvent(n *Notification) Created {
	return Created{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Link:           n.Link,
		Metadata:       n.Metadata,
		At:             n.CreatedAt,
	}
}
