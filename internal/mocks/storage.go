package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-catalog/backend/internal/storage"
)

// MockImageStore is a mock implementation of storage.ImageStore
type MockImageStore struct {
	mock.Mock
}

var _ storage.ImageStore = (*MockImageStore)(nil)

func (m *MockImageStore) Save(ctx context.Context, r io.Reader) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) URL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockImageStore) Backend() string {
	return "mock"
}
