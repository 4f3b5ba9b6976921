package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/contentsource"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Stat(ctx context.Context, id string) (*contentsource.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contentsource.Item), args.Error(1)
}

func (m *MockSource) List(ctx context.Context, folderID string) ([]contentsource.Item, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contentsource.Item), args.Error(1)
}

func (m *MockSource) Download(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
