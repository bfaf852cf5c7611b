package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrZoneMismatch      = errors.New("trider is not registered to the pickup zone")
	ErrUnserviceable     = errors.New("location is outside every TODA zone")
	ErrTriderUnavailable = errors.New("trider is not available")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrDuplicate         = errors.New("duplicate")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrUnsupportedEvent  = errors.New("unsupported event type")
	ErrUnavailable       = errors.New("dependency unavailable")
)
