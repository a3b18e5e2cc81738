package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCreator is returned when a write references a creator that is not stored.
	ErrUnknownCreator = errors.New("unknown creator")
	// ErrInvalidCampaignStatus is returned for status values outside the four known states.
	ErrInvalidCampaignStatus = errors.New("invalid campaign status")
	// ErrMissingKey is returned when a record lacks its identity key.
	ErrMissingKey = errors.New("missing identity key")
)

const sqliteConstraintForeignKey = 787

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintForeignKey {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
