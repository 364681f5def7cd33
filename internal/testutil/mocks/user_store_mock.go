package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// MockUserStore is a mock implementation of auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) UserByLogin(ctx context.Context, login string) (model.User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(model.User), args.Error(1)
}
