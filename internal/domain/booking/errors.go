package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrDuplicateIntent = errors.New("booking already exists for this treatment, date and patient")
	ErrAlreadyPaid     = errors.New("booking is already paid")
)
