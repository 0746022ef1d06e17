// internal/core/domain/errors.go
package domain

import "errors"

// Ledger and catalog errors. Callers match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrSourceNotFound     = errors.New("source inventory not found")
	ErrInsufficientStock  = errors.New("insufficient stock for transfer")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateInventory = errors.New("inventory already tracked for product and warehouse")
	ErrDuplicate          = errors.New("duplicate record")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid status transition")
	ErrInUse              = errors.New("record is referenced by other records")
)
