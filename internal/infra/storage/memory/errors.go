package memory

import (
	"errors"

	"cateringhub/internal/domain/shared/failure"
)

var (
	errReadOnly             = errors.New("memory: write attempted in read-only unit")
	errDuplicateID          = errors.New("memory: duplicate id")
	errNotificationNotFound = failure.NotFound("notification")
)
