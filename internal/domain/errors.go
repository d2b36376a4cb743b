package domain

import (
	"errors"
	"strings"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidTimeRange    = errors.New("start time must be before end time")
	// ErrSlotTaken is returned by the repository when the storage-level
	// exclusion constraint rejects an overlapping insert.
	ErrSlotTaken          = errors.New("time slot is already taken")
	ErrNoCompletedPayment = errors.New("no completed payment transaction for reservation")
)

// Validation error reasons exposed to clients.
const (
	ReasonCustomerNotFound = "Customer not found"
	ReasonStaffNotFound    = "Staff not found"
	ReasonServiceNotFound  = "Service not found"
	ReasonTimeSlotConflict = "Time slot conflict detected"
)

// ValidationError carries the reasons a reservation failed validation.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// ConflictError is a scheduling conflict, carrying the overlapping slots so
// the HTTP layer can return them in a 409 body.
type ConflictError struct {
	Conflicts []ConflictingSlot
}

func (e *ConflictError) Error() string {
	return ReasonTimeSlotConflict
}

// PaymentError is a payment provider decline or failure.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return "Payment failed: " + e.Reason
}
