package events

import (
	"context"
	"time"

	"cateringhub/internal/domain/shared/failure"
)

type EventID string

var ErrNotFound = failure.NotFound("event")

// Event is a consumer's occasion that catering is booked for.
type Event struct {
	ID             EventID
	OwnerID        string
	Name           string
	EventDate      time.Time
	Venue          string
	ExpectedGuests int
}

func (e *Event) OwnedBy(userID string) bool {
	return e != nil && e.OwnerID != "" && e.OwnerID == userID
}

type Repository interface {
	ByID(ctx context.Context, id EventID) (*Event, error)
}
