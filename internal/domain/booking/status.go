package booking

import (
	"strings"

	"cateringhub/internal/domain/shared/failure"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusConfirmed     Status = "confirmed"
	StatusCancelled     Status = "cancelled"
	StatusInPreparation Status = "in_preparation"
	StatusDelivered     Status = "delivered"
	StatusCompleted     Status = "completed"
)

// AllStatuses lists every booking status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusInPreparation,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

// transitions is the complete vendor-driven status graph.
var transitions = map[Status][]Status{
	StatusPending:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed:     {StatusInPreparation, StatusCancelled},
	StatusInPreparation: {StatusDelivered},
	StatusDelivered:     {StatusCompleted},
	StatusCompleted:     {},
	StatusCancelled:     {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Reviewable reports whether a review may be left for a booking in this status.
func (s Status) Reviewable() bool {
	return s == StatusCompleted || s == StatusDelivered
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", failure.Validation("unknown booking status", map[string]string{"status": "must be one of pending, confirmed, in_preparation, delivered, completed, cancelled"})
	}
	return status, nil
}

// ParseStatusList parses a comma separated filter such as "pending,confirmed".
// An empty input yields a nil filter (all statuses).
func ParseStatusList(raw string) ([]Status, error) {
	var out []Status
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		status, err := ParseStatus(part)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

// MatchesAny reports whether s is in filter; an empty filter matches everything.
func (s Status) MatchesAny(filter []Status) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)
