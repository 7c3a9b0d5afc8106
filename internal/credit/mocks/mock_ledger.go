package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ndavault/internal/credit"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Reserve(ctx context.Context, userID string, cost int) (credit.Reservation, error) {
	args := m.Called(ctx, userID, cost)
	return args.Get(0).(credit.Reservation), args.Error(1)
}

func (m *MockLedger) Rollback(ctx context.Context, r credit.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
