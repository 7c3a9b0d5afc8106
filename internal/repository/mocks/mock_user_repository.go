package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ndavault/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DecrementCredits(ctx context.Context, id, tier string, cost int) (int, bool, error) {
	args := m.Called(ctx, id, tier, cost)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) IncrementCredits(ctx context.Context, id, tier string, cost int) error {
	args := m.Called(ctx, id, tier, cost)
	return args.Error(0)
}
