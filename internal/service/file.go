package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docaudit/internal/model"
	"docaudit/internal/naming"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
	"docaudit/internal/upload"
	"docaudit/internal/version"
)

const downloadURLExpiry = 15 * time.Minute

// FileService exposes reads and single-file mutations on catalog files.
// Mutations snapshot the pre-change state first; snapshot failure is a
// warning, never a blocker.
type FileService interface {
	Get(ctx context.Context, id string) (*model.File, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.File, error)
	ListVersions(ctx context.Context, fileID string) ([]model.FileVersion, error)
	// DownloadURL returns a time-limited direct download link for the file's
	// current blob.
	DownloadURL(ctx context.Context, id string) (string, error)
	// InlineEdit replaces the file's content in place under its existing
	// storage key.
	InlineEdit(ctx context.Context, id string, data []byte, contentType, actor string) (*model.File, error)
	// Delete removes the file, its version history and their blobs.
	Delete(ctx context.Context, id string, actor string) error
	// Rollback restores an earlier version as the file's current content.
	Rollback(ctx context.Context, id string, targetVersion int, actor string) (*model.File, error)
	// Snapshot records the file's current content as a manual version. It
	// returns nil without error when versioning is degraded.
	Snapshot(ctx context.Context, id string, actor string) (*model.FileVersion, error)
}

type fileService struct {
	uploader upload.Uploader
	store    storage.Storage
	files    repository.FileRepository
	versions repository.VersionRepository
	engine   *version.Engine
}

// NewFileService constructs the single-file use case layer.
func NewFileService(uploader upload.Uploader, store storage.Storage, files repository.FileRepository, versions repository.VersionRepository, engine *version.Engine) FileService {
	return &fileService{
		uploader: uploader,
		store:    store,
		files:    files,
		versions: versions,
		engine:   engine,
	}
}

func (s *fileService) Get(ctx context.Context, id string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) ListByDocument(ctx context.Context, documentID string) ([]model.File, error) {
	if documentID == "" {
		return nil, ErrTargetRequired
	}
	return s.files.ListByDocument(ctx, documentID)
}

func (s *fileService) ListVersions(ctx context.Context, fileID string) ([]model.FileVersion, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.Get(ctx, fileID); err != nil {
		return nil, err
	}
	return s.versions.ListByFile(ctx, fileID)
}

func (s *fileService) DownloadURL(ctx context.Context, id string) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, f.StorageKey, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

func (s *fileService) InlineEdit(ctx context.Context, id string, data []byte, contentType, actor string) (*model.File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.engine.Snapshot(ctx, f, model.ReasonBeforeInlineEdit, actor); err != nil {
		logJSON("warn", "file_service", "pre_edit_snapshot_failed", map[string]any{
			"file_id": f.ID,
			"error":   err.Error(),
		})
	}

	// Same key, new bytes: the storage layer's upsert semantics replace the
	// object without changing its address.
	upRes, err := s.uploader.Upload(ctx, f.StorageKey, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("replace content: %s", upRes.TraceString())
	}

	ext := naming.SafeExtension(f.StorageKey)
	if err := s.files.UpdateContentInfo(ctx, f.ID, int64(len(data)), ext, contentType); err != nil {
		return nil, fmt.Errorf("update file metadata: %w", err)
	}

	f.Size = int64(len(data))
	f.Extension = ext
	f.ContentType = contentType
	return f, nil
}

func (s *fileService) Delete(ctx context.Context, id string, actor string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.engine.Snapshot(ctx, f, model.ReasonBeforeDelete, actor); err != nil {
		logJSON("warn", "file_service", "pre_delete_snapshot_failed", map[string]any{
			"file_id": f.ID,
			"error":   err.Error(),
		})
	}

	// Version history goes with the file. Blob deletion is best effort: a
	// stranded blob costs storage, a stranded row costs correctness, so rows
	// are removed last and their failure is fatal.
	versions, err := s.versions.ListByFile(ctx, f.ID)
	if err != nil {
		if !repository.IsSchemaMissing(err) {
			logJSON("warn", "file_service", "version_listing_failed", map[string]any{
				"file_id": f.ID,
				"error":   err.Error(),
			})
		}
	} else {
		for _, v := range versions {
			if delErr := s.store.Delete(ctx, v.StorageKey); delErr != nil {
				logJSON("warn", "file_service", "version_blob_delete_failed", map[string]any{
					"file_id":     f.ID,
					"storage_key": v.StorageKey,
					"error":       delErr.Error(),
				})
			}
		}
		if delErr := s.versions.DeleteByFile(ctx, f.ID); delErr != nil && !repository.IsSchemaMissing(delErr) {
			logJSON("warn", "file_service", "version_rows_delete_failed", map[string]any{
				"file_id": f.ID,
				"error":   delErr.Error(),
			})
		}
	}

	if delErr := s.store.Delete(ctx, f.StorageKey); delErr != nil {
		logJSON("warn", "file_service", "blob_delete_failed", map[string]any{
			"file_id":     f.ID,
			"storage_key": f.StorageKey,
			"error":       delErr.Error(),
		})
	}

	if err := s.files.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return nil
}

func (s *fileService) Snapshot(ctx context.Context, id string, actor string) (*model.FileVersion, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Unlike the implicit pre-mutation snapshots, a manual snapshot was asked
	// for explicitly, so its failure is reported to the caller.
	v, err := s.engine.Snapshot(ctx, f, model.ReasonManual, actor)
	if err != nil {
		return nil, fmt.Errorf("manual snapshot: %w", err)
	}
	return v, nil
}

func (s *fileService) Rollback(ctx context.Context, id string, targetVersion int, actor string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.engine.Rollback(ctx, id, targetVersion, actor)
	if err != nil {
		switch {
		case errors.Is(err, version.ErrFileNotFound):
			return nil, ErrNotFound
		case errors.Is(err, version.ErrVersionNotFound):
			return nil, err
		}
		return nil, err
	}
	return f, nil
}
