package version

// Package version captures immutable snapshots of file blobs before mutating
// operations and restores them on rollback. Version history is a convenience,
// not a correctness requirement: when the version schema is absent the engine
// degrades to warning no-ops instead of blocking deletes, edits or uploads.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"docaudit/internal/model"
	"docaudit/internal/naming"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
	"docaudit/internal/upload"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrVersionNotFound = errors.New("version not found")
)

// Engine snapshots and restores file versions. The degraded state is
// per-instance: a constructor capability flag plus a runtime flip when the
// version schema turns out to be missing, so concurrent callers in one
// process never race on shared package state.
type Engine struct {
	uploader upload.Uploader
	store    storage.Storage
	versions repository.VersionRepository
	files    repository.FileRepository
	degraded atomic.Bool
}

// NewEngine constructs the engine. enabled=false starts it degraded, which
// makes every snapshot a warning no-op from the first call.
func NewEngine(uploader upload.Uploader, store storage.Storage, versions repository.VersionRepository, files repository.FileRepository, enabled bool) *Engine {
	e := &Engine{
		uploader: uploader,
		store:    store,
		versions: versions,
		files:    files,
	}
	if !enabled {
		e.degraded.Store(true)
	}
	return e
}

// Degraded reports whether snapshots are currently disabled.
func (e *Engine) Degraded() bool {
	return e.degraded.Load()
}

// Snapshot records the file's current blob and metadata as the next version.
// It returns the created version, or nil with a nil error when the engine is
// degraded. Any returned error is a warning: callers log it and proceed with
// the primary mutation.
func (e *Engine) Snapshot(ctx context.Context, f *model.File, reason, actor string) (*model.FileVersion, error) {
	if e.degraded.Load() {
		logWarn("snapshot_skipped_degraded", map[string]any{"file_id": f.ID, "reason": reason})
		return nil, nil
	}

	next, err := e.versions.MaxVersion(ctx, f.ID)
	if err != nil {
		if repository.IsSchemaMissing(err) {
			e.degrade(err)
			return nil, nil
		}
		return nil, fmt.Errorf("resolve next version: %w", err)
	}
	next++

	rc, info, err := e.store.Get(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download current blob: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read current blob: %w", err)
	}

	key := naming.VersionObjectKey(f.DocumentID, f.ID, baseName(f.StorageKey))
	res, err := e.uploader.Upload(ctx, key, data, f.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store snapshot blob: %w", err)
	}

	v := &model.FileVersion{
		ID:          uuid.NewString(),
		FileID:      f.ID,
		Version:     next,
		Reason:      reason,
		StorageKey:  res.Key,
		Size:        int64(len(data)),
		ContentType: f.ContentType,
		CreatedBy:   actor,
		CreatedAt:   time.Now().UTC(),
	}
	if v.Size == 0 {
		v.Size = info.Size
	}
	stored, err := e.versions.Create(ctx, v)
	if err != nil {
		if repository.IsSchemaMissing(err) {
			e.degrade(err)
			// The snapshot blob stays behind unreferenced; harmless, cost-only.
			return nil, nil
		}
		return nil, fmt.Errorf("insert version record: %w", err)
	}
	return stored, nil
}

// Rollback restores version targetVersion as the file's current blob. The
// active state is first snapshotted as before_rollback_to_vN so the rollback
// itself stays reversible. Unlike snapshots, rollback failures are fatal to
// the rollback request; the file keeps its pre-rollback state.
func (e *Engine) Rollback(ctx context.Context, fileID string, targetVersion int, actor string) (*model.File, error) {
	f, err := e.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	v, err := e.versions.FindByFileAndVersion(ctx, fileID, targetVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	if _, err := e.Snapshot(ctx, f, model.RollbackReason(targetVersion), actor); err != nil {
		logWarn("pre_rollback_snapshot_failed", map[string]any{"file_id": f.ID, "error": err.Error()})
	}

	rc, _, err := e.store.Get(ctx, v.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download version blob: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read version blob: %w", err)
	}

	// Overwrite the current key in place; upsert semantics keep the key stable.
	if _, err := e.uploader.Upload(ctx, f.StorageKey, data, v.ContentType); err != nil {
		return nil, fmt.Errorf("restore version blob: %w", err)
	}

	ext := naming.SafeExtension(v.StorageKey)
	if err := e.files.UpdateContentInfo(ctx, f.ID, int64(len(data)), ext, v.ContentType); err != nil {
		return nil, fmt.Errorf("update file metadata: %w", err)
	}

	f.Size = int64(len(data))
	f.Extension = ext
	f.ContentType = v.ContentType
	return f, nil
}

func (e *Engine) degrade(cause error) {
	if e.degraded.CompareAndSwap(false, true) {
		logWarn("versioning_degraded", map[string]any{"cause": cause.Error()})
	}
}

func baseName(storageKey string) string {
	if idx := strings.LastIndexByte(storageKey, '/'); idx >= 0 {
		return storageKey[idx+1:]
	}
	return storageKey
}

func logWarn(event string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "warn",
		"component": "version_engine",
		"event":     event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
