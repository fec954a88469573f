package domain

import "errors"

var (
	ErrInvalidLimit     = errors.New("limit must not be negative")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoResult         = errors.New("query returned no rows")
)
