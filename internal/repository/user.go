package repository

import (
	"context"

	"ndavault/internal/model"
)

// UserRepository reads accounts and applies the only two balance mutations.
type UserRepository interface {
	// FindByID returns the user or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// DecrementCredits subtracts cost in a single conditional statement, only when
	// the user is on tier and holds at least cost credits. ok is false when the
	// predicate did not match; balance is the value after the update.
	DecrementCredits(ctx context.Context, id, tier string, cost int) (balance int, ok bool, err error)

	// IncrementCredits adds cost back to a user on tier.
	IncrementCredits(ctx context.Context, id, tier string, cost int) error
}
