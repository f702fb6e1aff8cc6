package types

import "errors"

var (
	// List errors
	ErrEmptyCollection = errors.New("list is empty")

	// Command errors
	ErrUnknownAction = errors.New("unknown action")
	ErrNoSuchList    = errors.New("no such list")
	ErrMissingList   = errors.New("command has no list name")
	ErrMissingValue  = errors.New("command has no value")
	ErrTooLarge      = errors.New("list would exceed the size limit")
)
