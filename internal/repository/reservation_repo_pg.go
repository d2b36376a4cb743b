package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/internal/domain"
)

const reservationColumns = `id, customer_id, staff_id, service_id, start_time, end_time, status, price_cents, notes, modifiable_until, created_at, updated_at`

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindConflicts(ctx context.Context, staffID string, start, end time.Time) ([]domain.Reservation, error)
	ListByDay(ctx context.Context, dayStart, dayEnd time.Time, staffID string) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
	CompleteFinishedBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (id, customer_id, staff_id, service_id, start_time, end_time, status, price_cents, notes, modifiable_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		reservation.ID, reservation.CustomerID, reservation.StaffID, reservation.ServiceID,
		reservation.StartTime, reservation.EndTime, reservation.Status, reservation.PriceCents,
		reservation.Notes, reservation.ModifiableUntil).
		Scan(&reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		// 23P01 is the exclusion constraint on (staff_id, [start, end)):
		// the database itself rejected an overlapping insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return domain.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

// FindConflicts returns the same-staff reservations in a blocking status whose
// [start_time, end_time) intersects the given window. The filter is the SQL
// mirror of domain.Overlaps, spelled out over its three sub-cases.
func (r *PGReservationRepository) FindConflicts(ctx context.Context, staffID string, start, end time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE staff_id=$1 AND status IN ('pending', 'confirmed')
		AND (
			(start_time <= $2 AND end_time > $2) OR
			(start_time < $3 AND end_time >= $3) OR
			(start_time >= $2 AND end_time <= $3)
		)
		ORDER BY start_time`, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *PGReservationRepository) ListByDay(ctx context.Context, dayStart, dayEnd time.Time, staffID string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE start_time >= $1 AND start_time < $2`
	args := []interface{}{dayStart, dayEnd}
	if staffID != "" {
		query += ` AND staff_id = $3`
		args = append(args, staffID)
	}
	query += ` ORDER BY start_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+reservationColumns, status, id)
	reservation, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

func (r *PGReservationRepository) CompleteFinishedBefore(ctx context.Context, deadline time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET status=$1, updated_at=now()
		WHERE status=$2 AND end_time <= $3
		RETURNING `+reservationColumns,
		domain.ReservationStatusCompleted, domain.ReservationStatusConfirmed, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.CustomerID, &res.StaffID, &res.ServiceID, &res.StartTime, &res.EndTime,
		&res.Status, &res.PriceCents, &res.Notes, &res.ModifiableUntil, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
