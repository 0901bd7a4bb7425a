package domain

import "errors"

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// Event errors
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrNotEventOwner         = errors.New("not authorized to modify this event")
	ErrOwnEventParticipation = errors.New("cannot participate in your own event")
)

// ErrForbidden covers ownership mismatches outside events, e.g. deleting
// another user's account.
var ErrForbidden = errors.New("not authorized to perform this action")
