package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/internal/domain"
)

// StaffRepository is a read-only lookup, same contract as CustomerRepository:
// (nil, nil) when the staff member does not exist.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
}

type PGStaffRepository struct {
	db *pgxpool.Pool
}

func NewStaffRepository(db *pgxpool.Pool) StaffRepository {
	return &PGStaffRepository{db: db}
}

func (r *PGStaffRepository) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, location FROM staff WHERE id=$1`, id)
	var s domain.Staff
	if err := row.Scan(&s.ID, &s.Name, &s.Location); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

var _ StaffRepository = (*PGStaffRepository)(nil)
