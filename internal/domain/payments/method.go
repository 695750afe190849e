package payments

import (
	"context"
	"errors"
	"strings"

	"cateringhub/internal/domain/shared/failure"
)

type MethodID string

var ErrNotFound = failure.NotFound("payment method")

// DefaultLabel is used when no owned payment method is referenced.
const DefaultLabel = "card"

type Method struct {
	ID     MethodID
	UserID string
	Brand  string
	Last4  string
}

// Label renders a human description such as "Visa •••• 4242".
func (m *Method) Label() string {
	brand := strings.TrimSpace(m.Brand)
	if brand == "" {
		brand = DefaultLabel
	}
	if m.Last4 == "" {
		return brand
	}
	return brand + " •••• " + m.Last4
}

type Repository interface {
	ByID(ctx context.Context, id MethodID) (*Method, error)
}

// ResolveLabel returns the label of the user's method, falling back to DefaultLabel
// when the id is empty, unknown, or owned by someone else.
func ResolveLabel(ctx context.Context, repo Repository, userID string, id MethodID) (string, error) {
	if repo == nil || strings.TrimSpace(string(id)) == "" {
		return DefaultLabel, nil
	}
	method, err := repo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return DefaultLabel, nil
		}
		return "", err
	}
	if method.UserID != userID {
		return DefaultLabel, nil
	}
	return method.Label(), nil
}
