package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/internal/domain"
)

// ServiceRepository looks up the bookable service/course catalog, which is
// where reservation pricing comes from.
type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Service, error)
}

type PGServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) ServiceRepository {
	return &PGServiceRepository{db: db}
}

func (r *PGServiceRepository) FindByID(ctx context.Context, id string) (*domain.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, duration_minutes, price_cents FROM services WHERE id=$1`, id)
	var s domain.Service
	if err := row.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

var _ ServiceRepository = (*PGServiceRepository)(nil)
