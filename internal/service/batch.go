package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docaudit/internal/config"
	"docaudit/internal/model"
	"docaudit/internal/naming"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
	"docaudit/internal/upload"
)

// BatchOutcome is the three-way aggregate classification of a batch.
type BatchOutcome string

const (
	BatchAllSucceeded BatchOutcome = "all_succeeded"
	BatchPartial      BatchOutcome = "partial"
	BatchAllFailed    BatchOutcome = "all_failed"
)

// UploadCandidate is one user-selected file. Data is fully buffered so the
// strategy chain can replay the payload across attempts.
type UploadCandidate struct {
	Name        string
	ContentType string
	Data        []byte
}

// BatchItemResult is the per-file outcome of a batch.
type BatchItemResult struct {
	Name   string `json:"name"`
	FileID string `json:"file_id,omitempty"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// BatchResult aggregates a whole batch.
type BatchResult struct {
	Outcome   BatchOutcome      `json:"outcome"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// BatchService uploads a bounded-concurrency batch of local files into one
// document.
type BatchService interface {
	// UploadBatch validates the batch against the per-document cap and
	// per-file limits, uploads the survivors in fixed concurrency windows and
	// reports per-file plus aggregate outcomes. One file's failure never
	// aborts the rest; cancellation is honored between windows.
	UploadBatch(ctx context.Context, documentID string, candidates []UploadCandidate, actor string) (*BatchResult, error)
}

type batchService struct {
	uploader upload.Uploader
	store    storage.Storage
	files    repository.FileRepository
	cfg      config.IngestConfig
}

// NewBatchService constructs the local batch upload orchestrator.
func NewBatchService(uploader upload.Uploader, store storage.Storage, files repository.FileRepository, cfg config.IngestConfig) BatchService {
	return &batchService{uploader: uploader, store: store, files: files, cfg: cfg}
}

func (s *batchService) UploadBatch(ctx context.Context, documentID string, candidates []UploadCandidate, actor string) (*BatchResult, error) {
	if documentID == "" {
		return nil, ErrTargetRequired
	}
	if len(candidates) == 0 {
		return nil, ErrNoFiles
	}

	// Cap check is wholesale: no uploads are attempted when the batch would
	// push the document over the limit.
	count, err := s.files.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	if count+len(candidates) > s.cfg.MaxFilesPerDocument {
		return nil, fmt.Errorf("%w: %d existing + %d new > %d", ErrTooManyFiles, count, len(candidates), s.cfg.MaxFilesPerDocument)
	}

	res := &BatchResult{Total: len(candidates), Items: make([]BatchItemResult, len(candidates))}

	// Pre-validate everything; invalid items fail without a side effect and
	// without blocking the rest.
	pending := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if reason := s.validate(c); reason != "" {
			res.Items[i] = BatchItemResult{Name: c.Name, Reason: reason}
			continue
		}
		pending = append(pending, i)
	}

	window := s.cfg.BatchWindow
	if window <= 0 {
		window = 3
	}

	for start := 0; start < len(pending); start += window {
		// Cooperative cancellation between windows.
		if err := ctx.Err(); err != nil {
			for _, idx := range pending[start:] {
				res.Items[idx] = BatchItemResult{Name: candidates[idx].Name, Reason: fmt.Sprintf("canceled: %v", err)}
			}
			break
		}

		end := start + window
		if end > len(pending) {
			end = len(pending)
		}

		var g errgroup.Group
		for _, idx := range pending[start:end] {
			idx := idx
			g.Go(func() error {
				res.Items[idx] = s.uploadOne(ctx, documentID, candidates[idx], actor)
				return nil
			})
		}
		// Await the whole window before advancing so progress moves in
		// discrete completed/total increments.
		_ = g.Wait()
	}

	for _, item := range res.Items {
		if item.OK {
			res.Succeeded++
			ingestedFiles.WithLabelValues("local", "ok").Inc()
		} else {
			res.Failed++
			ingestedFiles.WithLabelValues("local", "failed").Inc()
		}
	}
	switch {
	case res.Failed == 0:
		res.Outcome = BatchAllSucceeded
	case res.Succeeded == 0:
		res.Outcome = BatchAllFailed
	default:
		res.Outcome = BatchPartial
	}

	logJSON("info", "batch_upload", "batch_done", map[string]any{
		"document_id": documentID,
		"outcome":     string(res.Outcome),
		"succeeded":   res.Succeeded,
		"failed":      res.Failed,
	})
	return res, nil
}

func (s *batchService) validate(c UploadCandidate) string {
	if int64(len(c.Data)) > s.cfg.MaxUploadBytes {
		return fmt.Sprintf("file_too_large: %d > %d bytes", len(c.Data), s.cfg.MaxUploadBytes)
	}
	if !naming.Allowed(c.Name) {
		return fmt.Sprintf("extension_not_allowed: %q", naming.DisplayName(c.Name))
	}
	return ""
}

// uploadOne persists one file: blob through the strategy chain, then the
// catalog row. A row-insert failure deletes the just-written blob so no
// storage object is left without a catalog entry.
func (s *batchService) uploadOne(ctx context.Context, documentID string, c UploadCandidate, actor string) BatchItemResult {
	safeName := naming.SafeName(c.Name)
	key := naming.ObjectKey(documentID, safeName)

	upRes, err := s.uploader.Upload(ctx, key, c.Data, c.ContentType)
	if err != nil {
		return BatchItemResult{Name: c.Name, Reason: fmt.Sprintf("storage_upload_failed: %s", upRes.TraceString())}
	}

	f := &model.File{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		DisplayName: naming.DisplayName(c.Name),
		StorageKey:  key,
		Size:        int64(len(c.Data)),
		Extension:   naming.SafeExtension(c.Name),
		ContentType: c.ContentType,
		UploadedBy:  actor,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.files.Create(ctx, f)
	if err != nil {
		// Compensating action: never leave a blob without a catalog row.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logJSON("error", "batch_upload", "orphan_blob_cleanup_failed", map[string]any{
				"storage_key": key,
				"error":       delErr.Error(),
			})
		}
		return BatchItemResult{Name: c.Name, Reason: fmt.Sprintf("metadata_insert_failed: %v", err)}
	}
	return BatchItemResult{Name: c.Name, FileID: stored.ID, OK: true}
}
