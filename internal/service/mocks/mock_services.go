package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/service"
)

type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) UploadBatch(ctx context.Context, documentID string, candidates []service.UploadCandidate, actor string) (*service.BatchResult, error) {
	args := m.Called(ctx, documentID, candidates, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchResult), args.Error(1)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, req service.ImportRequest) (*service.ImportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ListByDocument(ctx context.Context, documentID string) ([]model.File, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) ListVersions(ctx context.Context, fileID string) ([]model.FileVersion, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileVersion), args.Error(1)
}

func (m *MockFileService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) InlineEdit(ctx context.Context, id string, data []byte, contentType, actor string) (*model.File, error) {
	args := m.Called(ctx, id, data, contentType, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockFileService) Snapshot(ctx context.Context, id string, actor string) (*model.FileVersion, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileVersion), args.Error(1)
}

func (m *MockFileService) Rollback(ctx context.Context, id string, targetVersion int, actor string) (*model.File, error) {
	args := m.Called(ctx, id, targetVersion, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}
