package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ndavault/internal/model"
	"ndavault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// FindByID fetches a user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, name, email, plan_tier, credit_balance
		FROM users
		WHERE id = $1
	`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PlanTier,
		&u.CreditBalance,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DecrementCredits is a single test-and-decrement statement. Two concurrent
// callers cannot both pass the balance predicate for the same credits.
func (r *UserPostgres) DecrementCredits(ctx context.Context, id, tier string, cost int) (int, bool, error) {
	const q = `
		UPDATE users
		SET credit_balance = credit_balance - $3
		WHERE id = $1 AND plan_tier = $2 AND credit_balance >= $3
		RETURNING credit_balance
	`
	var balance int
	if err := r.db.QueryRowContext(ctx, q, id, tier, cost).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return balance, true, nil
}

// IncrementCredits returns cost credits to the user.
func (r *UserPostgres) IncrementCredits(ctx context.Context, id, tier string, cost int) error {
	const q = `
		UPDATE users
		SET credit_balance = credit_balance + $3
		WHERE id = $1 AND plan_tier = $2
	`
	res, err := r.db.ExecContext(ctx, q, id, tier, cost)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
