package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salonware/salonbooking/internal/domain"
)

// CustomerRepository is a read-only lookup: the customer lifecycle is owned
// elsewhere. FindByID returns (nil, nil) when the customer does not exist.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
}

type PGCustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

func (r *PGCustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, phone FROM customers WHERE id=$1`, id)
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)
