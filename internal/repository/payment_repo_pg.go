package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/internal/domain"
)

const transactionColumns = `id, reservation_id, status, amount_cents, refund_amount_cents, provider_ref, created_at, updated_at`

type PaymentRepository interface {
	SaveTransaction(ctx context.Context, tx *domain.PaymentTransaction) error
	ListByReservation(ctx context.Context, reservationID string) ([]domain.PaymentTransaction, error)
	MarkRefunded(ctx context.Context, txID string, refundAmountCents int64) (*domain.PaymentTransaction, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) SaveTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	return r.db.QueryRow(ctx, `INSERT INTO payment_transactions (id, reservation_id, status, amount_cents, refund_amount_cents, provider_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		tx.ID, tx.ReservationID, tx.Status, tx.AmountCents, tx.RefundAmountCents, tx.ProviderRef).
		Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

func (r *PGPaymentRepository) ListByReservation(ctx context.Context, reservationID string) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM payment_transactions WHERE reservation_id=$1 ORDER BY created_at`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.PaymentTransaction, 0)
	for rows.Next() {
		var t domain.PaymentTransaction
		if err := rows.Scan(&t.ID, &t.ReservationID, &t.Status, &t.AmountCents, &t.RefundAmountCents, &t.ProviderRef, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *PGPaymentRepository) MarkRefunded(ctx context.Context, txID string, refundAmountCents int64) (*domain.PaymentTransaction, error) {
	row := r.db.QueryRow(ctx, `UPDATE payment_transactions SET status=$1, refund_amount_cents=$2, updated_at=now() WHERE id=$3 RETURNING `+transactionColumns,
		domain.PaymentStatusRefunded, refundAmountCents, txID)
	var t domain.PaymentTransaction
	if err := row.Scan(&t.ID, &t.ReservationID, &t.Status, &t.AmountCents, &t.RefundAmountCents, &t.ProviderRef, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("payment transaction not found")
		}
		return nil, err
	}
	return &t, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
