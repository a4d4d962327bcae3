package services

import "errors"

// Sentinel errors surfaced by the pairing engine and admin operations.
// Controllers translate these into HTTP statuses; services wrap them with
// context via fmt.Errorf("...: %w", ...).
var (
	ErrNotFound          = errors.New("not found")
	ErrSelfReference     = errors.New("cannot pair with yourself")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrDuplicateInvite   = errors.New("an invite is already pending")
	ErrInvalidCode       = errors.New("invalid join code")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrUnauthorized      = errors.New("unauthorized")
)
