package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/domain/shared/failure"
)

type sample struct {
	EventID    string `json:"eventId" validate:"required"`
	GuestCount int    `json:"guestCount" validate:"gt=0"`
	Rating     int    `validate:"min=1,max=5"`
}

func TestValidateReportsFieldDetails(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), sample{Rating: 9})

	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrValidation)
	details := failure.DetailsOf(err)
	assert.Equal(t, "is required", details["eventId"])
	assert.Equal(t, "must be greater than 0", details["guestCount"])
	assert.Equal(t, "must be at most 5", details["rating"])
}

func TestValidateAcceptsValidAndNonStructs(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(context.Background(), sample{EventID: "e", GuestCount: 2, Rating: 5}))
	assert.NoError(t, v.Validate(context.Background(), &sample{EventID: "e", GuestCount: 2, Rating: 1}))
	assert.NoError(t, v.Validate(context.Background(), "plain"))
	assert.NoError(t, v.Validate(context.Background(), nil))
}
