package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// Blocks reports whether a reservation in this status occupies its time slot.
// Cancelled and completed reservations never conflict with new bookings.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

type Reservation struct {
	ID              string
	CustomerID      string
	StaffID         string
	ServiceID       string
	StartTime       time.Time
	EndTime         time.Time
	Status          ReservationStatus
	PriceCents      int64
	Notes           string
	ModifiableUntil time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

type Staff struct {
	ID       string
	Name     string
	Location string
}

type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	PriceCents      int64
}

// ConflictingSlot is the trimmed view of an overlapping reservation returned
// to callers so they can suggest alternatives.
type ConflictingSlot struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
}

// ValidationResult is produced fresh per validation call and never persisted.
type ValidationResult struct {
	Valid     bool
	Errors    []string
	Conflicts []ConflictingSlot
}
