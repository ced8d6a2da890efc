package pgrepo

import (
	"context"
	"errors"
	"vintage-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) domain.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	q := querier(ctx, r.pool)
	var u domain.User
	err := q.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, role, is_blocked, created_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.IsBlocked, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetAddressByID(ctx context.Context, id, userID string) (*domain.Address, error) {
	q := querier(ctx, r.pool)
	var a domain.Address
	err := q.QueryRow(ctx, `
		SELECT id, user_id, full_name, phone, street, city, state, country, postal_code
		FROM addresses WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Street, &a.City, &a.State, &a.Country, &a.PostalCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *userRepository) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	q := querier(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, user_id, full_name, phone, street, city, state, country, postal_code
		FROM addresses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Street, &a.City, &a.State, &a.Country, &a.PostalCode); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
