package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ndavault/internal/model"
	"ndavault/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GeneratePDF(ctx context.Context, owner model.User, text string) (*service.GeneratedDocument, error) {
	args := m.Called(ctx, owner, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GeneratedDocument), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Open(ctx context.Context, ownerID, id string, download bool) (string, error) {
	args := m.Called(ctx, ownerID, id, download)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockDocumentService) SweepExpired(ctx context.Context) (*service.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SweepResult), args.Error(1)
}
