package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/salonware/salonbooking/internal/domain"
	"github.com/salonware/salonbooking/internal/repository"
	"github.com/salonware/salonbooking/internal/service/reservation"
)

type PaymentUseCase interface {
	CreateReservationWithPayment(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentTransaction, error)
	CreateReservationWithPaymentIntent(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentIntent, error)
	CancelReservationWithRefund(ctx context.Context, reservationID string, refundAmountCents int64) (*domain.PaymentTransaction, error)
}

type ChargeInput struct {
	ReservationID string
	CustomerID    string
	AmountCents   int64
}

type ChargeResult struct {
	Success     bool
	ProviderRef string
	Error       string
}

type RefundResult struct {
	Success           bool
	ProviderRef       string
	RefundAmountCents int64
}

// Provider is the external payment collaborator.
type Provider interface {
	ProcessPayment(ctx context.Context, input ChargeInput) (*ChargeResult, error)
	CreatePaymentIntent(ctx context.Context, input ChargeInput) (*domain.PaymentIntent, error)
	RefundPayment(ctx context.Context, providerRef string, amountCents int64) (*RefundResult, error)
}

type PaymentService struct {
	reservations reservation.ReservationUseCase
	transactions repository.PaymentRepository
	provider     Provider
}

func NewPaymentService(reservations reservation.ReservationUseCase, transactions repository.PaymentRepository, provider Provider) *PaymentService {
	return &PaymentService{
		reservations: reservations,
		transactions: transactions,
		provider:     provider,
	}
}

// CreateReservationWithPayment creates the reservation and charges for it
// synchronously. A declined or failed charge cancels the reservation again
// (compensating action) so it is never left confirmed-but-unpaid.
func (s *PaymentService) CreateReservationWithPayment(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentTransaction, error) {
	created, err := s.reservations.Create(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	charge, err := s.provider.ProcessPayment(ctx, ChargeInput{
		ReservationID: created.ID,
		CustomerID:    created.CustomerID,
		AmountCents:   created.PriceCents,
	})
	if err != nil || !charge.Success {
		reason := "payment provider error"
		if err != nil {
			reason = err.Error()
		} else if charge.Error != "" {
			reason = charge.Error
		}
		s.compensate(ctx, created.ID)
		s.recordTransaction(ctx, created.ID, domain.PaymentStatusFailed, created.PriceCents, "")
		return nil, nil, &domain.PaymentError{Reason: reason}
	}

	tx := &domain.PaymentTransaction{
		ID:            uuid.NewString(),
		ReservationID: created.ID,
		Status:        domain.PaymentStatusCompleted,
		AmountCents:   created.PriceCents,
		ProviderRef:   charge.ProviderRef,
	}
	if err := s.transactions.SaveTransaction(ctx, tx); err != nil {
		// The charge went through; do not fail the booking over bookkeeping.
		log.Printf("WARNING: failed to record completed payment for reservation %s: %v", created.ID, err)
	}
	return created, tx, nil
}

// CreateReservationWithPaymentIntent creates the reservation and stages a
// client-confirmable payment intent alongside it. Whether the intent succeeds
// is decided later, client-side.
func (s *PaymentService) CreateReservationWithPaymentIntent(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentIntent, error) {
	created, err := s.reservations.Create(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, ChargeInput{
		ReservationID: created.ID,
		CustomerID:    created.CustomerID,
		AmountCents:   created.PriceCents,
	})
	if err != nil {
		s.compensate(ctx, created.ID)
		return nil, nil, &domain.PaymentError{Reason: err.Error()}
	}

	s.recordTransaction(ctx, created.ID, domain.PaymentStatusPending, created.PriceCents, intent.ID)
	return created, intent, nil
}

// CancelReservationWithRefund refunds the recorded completed transaction for
// the reservation (possibly partially) and cancels the reservation. It fails
// explicitly when no completed payment exists rather than reporting a
// successful no-op refund.
func (s *PaymentService) CancelReservationWithRefund(ctx context.Context, reservationID string, refundAmountCents int64) (*domain.PaymentTransaction, error) {
	history, err := s.transactions.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	var completed *domain.PaymentTransaction
	for i := range history {
		if history[i].Status == domain.PaymentStatusCompleted {
			completed = &history[i]
			break
		}
	}
	if completed == nil {
		return nil, domain.ErrNoCompletedPayment
	}

	if refundAmountCents <= 0 || refundAmountCents > completed.AmountCents {
		return nil, fmt.Errorf("refund amount %d out of range for transaction %s", refundAmountCents, completed.ID)
	}

	refund, err := s.provider.RefundPayment(ctx, completed.ProviderRef, refundAmountCents)
	if err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}
	if !refund.Success {
		return nil, &domain.PaymentError{Reason: "refund rejected by provider"}
	}

	refunded, err := s.transactions.MarkRefunded(ctx, completed.ID, refundAmountCents)
	if err != nil {
		return nil, err
	}

	if _, err := s.reservations.Cancel(ctx, reservationID); err != nil && !errors.Is(err, domain.ErrReservationNotFound) {
		return nil, err
	}
	return refunded, nil
}

func (s *PaymentService) compensate(ctx context.Context, reservationID string) {
	if _, err := s.reservations.Cancel(ctx, reservationID); err != nil {
		log.Printf("WARNING: compensating cancel failed for reservation %s: %v", reservationID, err)
	}
}

func (s *PaymentService) recordTransaction(ctx context.Context, reservationID string, status domain.PaymentStatus, amountCents int64, providerRef string) {
	tx := &domain.PaymentTransaction{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Status:        status,
		AmountCents:   amountCents,
		ProviderRef:   providerRef,
	}
	if err := s.transactions.SaveTransaction(ctx, tx); err != nil {
		log.Printf("WARNING: failed to record %s payment transaction for reservation %s: %v", status, reservationID, err)
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
