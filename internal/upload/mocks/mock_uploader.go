package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/upload"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (upload.Result, error) {
	args := m.Called(ctx, key, data, contentType)
	if f, ok := args.Get(0).(func(context.Context, string, []byte, string) upload.Result); ok {
		return f(ctx, key, data, contentType), args.Error(1)
	}
	return args.Get(0).(upload.Result), args.Error(1)
}
