package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// MockProgressStore is a mock implementation of progress.Store
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) Load(ctx context.Context, userID string) (model.ProgressDocument, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.ProgressDocument), args.Bool(1), args.Error(2)
}

func (m *MockProgressStore) Save(ctx context.Context, userID string, doc model.ProgressDocument) error {
	args := m.Called(ctx, userID, doc)
	return args.Error(0)
}

func (m *MockProgressStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
