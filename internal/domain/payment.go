package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentTransaction struct {
	ID                string
	ReservationID     string
	Status            PaymentStatus
	AmountCents       int64
	RefundAmountCents int64
	ProviderRef       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PaymentIntent is the provider-side staged payment awaiting client
// confirmation. Only the shape needed by the orchestration layer is kept.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Status       string
}
