package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docaudit/internal/model"
	repomocks "docaudit/internal/repository/mocks"
	"docaudit/internal/service"
	"docaudit/internal/storage"
	storagemocks "docaudit/internal/storage/mocks"
	"docaudit/internal/upload"
	uploadmocks "docaudit/internal/upload/mocks"
	"docaudit/internal/version"
)

type fileFixture struct {
	uploader *uploadmocks.MockUploader
	store    *storagemocks.MockStorage
	files    *repomocks.MockFileRepository
	versions *repomocks.MockVersionRepository
	svc      service.FileService
}

// newFileFixture wires a file service over a degraded version engine so
// snapshots are warning no-ops and tests focus on the mutation itself.
func newFileFixture(versioning bool) *fileFixture {
	f := &fileFixture{
		uploader: new(uploadmocks.MockUploader),
		store:    new(storagemocks.MockStorage),
		files:    new(repomocks.MockFileRepository),
		versions: new(repomocks.MockVersionRepository),
	}
	engine := version.NewEngine(f.uploader, f.store, f.versions, f.files, versioning)
	f.svc = service.NewFileService(f.uploader, f.store, f.files, f.versions, engine)
	return f
}

func storedFile() *model.File {
	return &model.File{
		ID:          "file-1",
		DocumentID:  "doc-1",
		DisplayName: "laporan_akhir",
		StorageKey:  "doc-1/ab12.pdf",
		Size:        10,
		Extension:   "pdf",
		ContentType: "application/pdf",
		UploadedBy:  "auditor-1",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestFileService_Get(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)

	got, err := f.svc.Get(context.Background(), "file-1")

	require.NoError(t, err)
	assert.Equal(t, "doc-1/ab12.pdf", got.StorageKey)
}

func TestFileService_Get_NotFound(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := f.svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFileService_Get_IDRequired(t *testing.T) {
	f := newFileFixture(false)

	_, err := f.svc.Get(context.Background(), "")

	assert.ErrorIs(t, err, service.ErrIDRequired)
}

func TestFileService_DownloadURL(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.store.On("PresignGet", mock.Anything, "doc-1/ab12.pdf", mock.Anything).
		Return("https://store.example.com/doc-1/ab12.pdf?sig=abc", nil)

	url, err := f.svc.DownloadURL(context.Background(), "file-1")

	require.NoError(t, err)
	assert.Contains(t, url, "sig=abc")
}

func TestFileService_InlineEdit_ReplacesContentInPlace(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.uploader.On("Upload", mock.Anything, "doc-1/ab12.pdf", []byte("new-bytes"), "application/pdf").
		Return(upload.Result{StrategyUsed: "sdk_elevated"}, nil)
	f.files.On("UpdateContentInfo", mock.Anything, "file-1", int64(9), "pdf", "application/pdf").
		Return(nil)

	got, err := f.svc.InlineEdit(context.Background(), "file-1", []byte("new-bytes"), "application/pdf", "auditor-1")

	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Size)
	// The storage key never changes on an inline edit.
	assert.Equal(t, "doc-1/ab12.pdf", got.StorageKey)
}

func TestFileService_InlineEdit_SnapshotSchemaMissingDoesNotBlock(t *testing.T) {
	f := newFileFixture(true)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("MaxVersion", mock.Anything, "file-1").
		Return(0, &pgconn.PgError{Code: "42P01"})
	f.uploader.On("Upload", mock.Anything, "doc-1/ab12.pdf", mock.Anything, mock.Anything).
		Return(upload.Result{StrategyUsed: "sdk_elevated"}, nil)
	f.files.On("UpdateContentInfo", mock.Anything, "file-1", mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	_, err := f.svc.InlineEdit(context.Background(), "file-1", []byte("new-bytes"), "application/pdf", "auditor-1")

	require.NoError(t, err)
	// The engine degraded instead of blocking; no snapshot row was attempted.
	f.versions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFileService_InlineEdit_UploadFailure(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(upload.Result{Trace: []string{"presigned_url=timeout"}}, upload.ErrExhausted)

	_, err := f.svc.InlineEdit(context.Background(), "file-1", []byte("x"), "application/pdf", "auditor-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "presigned_url=timeout")
	f.files.AssertNotCalled(t, "UpdateContentInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileService_Delete_RemovesVersionsAndBlobs(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("ListByFile", mock.Anything, "file-1").Return([]model.FileVersion{
		{ID: "v1", StorageKey: "versions/doc-1/file-1/100-ab12.pdf"},
		{ID: "v2", StorageKey: "versions/doc-1/file-1/200-ab12.pdf"},
	}, nil)
	f.store.On("Delete", mock.Anything, "versions/doc-1/file-1/100-ab12.pdf").Return(nil)
	f.store.On("Delete", mock.Anything, "versions/doc-1/file-1/200-ab12.pdf").Return(nil)
	f.versions.On("DeleteByFile", mock.Anything, "file-1").Return(nil)
	f.store.On("Delete", mock.Anything, "doc-1/ab12.pdf").Return(nil)
	f.files.On("Delete", mock.Anything, "file-1").Return(nil)

	err := f.svc.Delete(context.Background(), "file-1", "auditor-1")

	require.NoError(t, err)
	f.store.AssertNumberOfCalls(t, "Delete", 3)
	f.files.AssertCalled(t, "Delete", mock.Anything, "file-1")
}

func TestFileService_Delete_BlobFailureStillDeletesRow(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("ListByFile", mock.Anything, "file-1").Return([]model.FileVersion{}, nil)
	f.versions.On("DeleteByFile", mock.Anything, "file-1").Return(nil)
	f.store.On("Delete", mock.Anything, "doc-1/ab12.pdf").Return(errors.New("backend unavailable"))
	f.files.On("Delete", mock.Anything, "file-1").Return(nil)

	err := f.svc.Delete(context.Background(), "file-1", "auditor-1")

	// A stranded blob costs storage only; the catalog row still goes.
	require.NoError(t, err)
	f.files.AssertCalled(t, "Delete", mock.Anything, "file-1")
}

func TestFileService_Delete_RowFailureIsFatal(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("ListByFile", mock.Anything, "file-1").Return([]model.FileVersion{}, nil)
	f.versions.On("DeleteByFile", mock.Anything, "file-1").Return(nil)
	f.store.On("Delete", mock.Anything, "doc-1/ab12.pdf").Return(nil)
	f.files.On("Delete", mock.Anything, "file-1").Return(errors.New("deadlock detected"))

	err := f.svc.Delete(context.Background(), "file-1", "auditor-1")

	assert.ErrorContains(t, err, "delete file record")
}

func TestFileService_Rollback_MapsEngineErrors(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := f.svc.Rollback(context.Background(), "missing", 2, "auditor-1")

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFileService_Rollback_VersionNotFound(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("FindByFileAndVersion", mock.Anything, "file-1", 9).Return(nil, sql.ErrNoRows)

	_, err := f.svc.Rollback(context.Background(), "file-1", 9, "auditor-1")

	assert.ErrorIs(t, err, version.ErrVersionNotFound)
}

func TestFileService_Snapshot_Manual(t *testing.T) {
	f := newFileFixture(true)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("MaxVersion", mock.Anything, "file-1").Return(3, nil)
	f.store.On("Get", mock.Anything, "doc-1/ab12.pdf").
		Return(io.NopCloser(bytes.NewReader([]byte("current"))), storage.ObjectInfo{Size: 7}, nil)
	f.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("versions/") && key[:9] == "versions/"
	}), []byte("current"), "application/pdf").
		Return(upload.Result{Key: "versions/doc-1/file-1/123-ab12.pdf", StrategyUsed: "sdk_elevated"}, nil)
	f.versions.On("Create", mock.Anything, mock.MatchedBy(func(v *model.FileVersion) bool {
		return v.Version == 4 && v.Reason == model.ReasonManual
	})).Return(&model.FileVersion{ID: "v4", Version: 4, Reason: model.ReasonManual}, nil)

	v, err := f.svc.Snapshot(context.Background(), "file-1", "auditor-1")

	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 4, v.Version)
}

func TestFileService_Snapshot_DegradedReturnsNil(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)

	v, err := f.svc.Snapshot(context.Background(), "file-1", "auditor-1")

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileService_ListVersions(t *testing.T) {
	f := newFileFixture(false)
	f.files.On("FindByID", mock.Anything, "file-1").Return(storedFile(), nil)
	f.versions.On("ListByFile", mock.Anything, "file-1").Return([]model.FileVersion{
		{ID: "v1", Version: 1},
		{ID: "v2", Version: 2},
	}, nil)

	got, err := f.svc.ListVersions(context.Background(), "file-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].Version)
}
