package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docaudit/internal/contentsource"
	"docaudit/internal/model"
	"docaudit/internal/naming"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
	"docaudit/internal/upload"
)

const (
	maxTraceEntries   = 50
	maxSkippedSamples = 5
)

// ImportRequest describes one external import invocation.
type ImportRequest struct {
	// SourceRef is a provider share link or bare item id.
	SourceRef string
	// SectionID is the catalog section imported documents land in.
	SectionID string
	// DocumentID optionally targets an existing document; when empty a
	// document is created per imported item (or one subfolder document, see
	// NewSubfolder).
	DocumentID string
	// FileOnly rejects folder references before any network call.
	FileOnly bool
	// NewSubfolder materializes one new catalog document that receives every
	// imported item.
	NewSubfolder  bool
	SubfolderName string
	Actor         string
}

// ImportResult is the caller-facing summary of one run. RunID and Trace are
// populated even on total failure so support can diagnose partially-failed
// batches after the fact.
type ImportResult struct {
	RunID          string   `json:"run_id"`
	Scanned        int      `json:"scanned"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	SkippedSamples []string `json:"skipped_samples,omitempty"`
	Trace          []string `json:"trace,omitempty"`
}

// ImportService resolves a file or folder reference from the external
// content provider and drives every item through the ingestion pipeline.
type ImportService interface {
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

type importService struct {
	source    contentsource.Source
	uploader  upload.Uploader
	store     storage.Storage
	files     repository.FileRepository
	documents repository.DocumentRepository
	audit     repository.AuditRepository
}

// NewImportService constructs the external bulk import orchestrator.
func NewImportService(source contentsource.Source, uploader upload.Uploader, store storage.Storage, files repository.FileRepository, documents repository.DocumentRepository, audit repository.AuditRepository) ImportService {
	return &importService{
		source:    source,
		uploader:  uploader,
		store:     store,
		files:     files,
		documents: documents,
		audit:     audit,
	}
}

// run carries the mutable state of one import invocation.
type run struct {
	result ImportResult
}

func (r *run) trace(format string, args ...any) {
	if len(r.result.Trace) < maxTraceEntries {
		r.result.Trace = append(r.result.Trace, fmt.Sprintf(format, args...))
	}
}

func (r *run) skip(name, reason string) {
	r.result.Skipped++
	ingestedFiles.WithLabelValues("import", "skipped").Inc()
	if len(r.result.SkippedSamples) < maxSkippedSamples {
		r.result.SkippedSamples = append(r.result.SkippedSamples, fmt.Sprintf("%s: %s", name, reason))
	}
	r.trace("skipped %s: %s", name, reason)
}

func (s *importService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	r := &run{result: ImportResult{RunID: uuid.NewString()}}

	if s.source == nil {
		return &r.result, ErrNoSource
	}
	if req.SectionID == "" && req.DocumentID == "" {
		return &r.result, ErrTargetRequired
	}

	// Classification happens on the reference's shape alone; a folder link
	// submitted to a file-only import is rejected with zero network calls.
	ref, err := contentsource.ParseRef(req.SourceRef)
	if err != nil {
		return &r.result, err
	}
	if ref.Kind == contentsource.KindFolder && req.FileOnly {
		return &r.result, ErrFolderRef
	}
	r.trace("ref classified kind=%s id=%s", ref.Kind, ref.ID)

	items, err := s.resolveItems(ctx, r, ref, req.FileOnly)
	if err != nil {
		return &r.result, err
	}
	r.result.Scanned = len(items)
	r.trace("listing resolved: %d items", len(items))

	// Optional shared target: one new subfolder document receiving every
	// item. Once created it belongs to the catalog layer.
	sharedDocID := req.DocumentID
	if req.NewSubfolder {
		title := req.SubfolderName
		if title == "" {
			title = "import-" + r.result.RunID[:8]
		}
		doc, err := s.documents.Create(ctx, &model.Document{
			ID:        uuid.NewString(),
			SectionID: req.SectionID,
			Title:     title,
			CreatedBy: req.Actor,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return &r.result, fmt.Errorf("create import subfolder: %w", err)
		}
		sharedDocID = doc.ID
		r.trace("created subfolder document %s", doc.ID)
	}

	// Items run strictly sequentially: failure attribution stays item-local
	// and the provider's rate limits are respected.
	for _, item := range items {
		s.importOne(ctx, r, req, sharedDocID, item)
	}

	s.writeAudit(ctx, r, req)

	logJSON("info", "external_import", "run_done", map[string]any{
		"run_id":   r.result.RunID,
		"scanned":  r.result.Scanned,
		"imported": r.result.Imported,
		"skipped":  r.result.Skipped,
	})
	return &r.result, nil
}

func (s *importService) resolveItems(ctx context.Context, r *run, ref contentsource.Ref, fileOnly bool) ([]contentsource.Item, error) {
	if ref.Kind == contentsource.KindFile {
		it, err := s.source.Stat(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("stat source item: %w", err)
		}
		if it.Folder {
			// The link's shape lied; re-classify against the metadata.
			if fileOnly {
				return nil, ErrFolderRef
			}
			return s.listFolder(ctx, r, it.ID)
		}
		return []contentsource.Item{*it}, nil
	}
	return s.listFolder(ctx, r, ref.ID)
}

func (s *importService) listFolder(ctx context.Context, r *run, folderID string) ([]contentsource.Item, error) {
	children, err := s.source.List(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list source folder: %w", err)
	}
	items := make([]contentsource.Item, 0, len(children))
	for _, c := range children {
		if c.Folder {
			r.trace("nested folder %s ignored", c.Name)
			continue
		}
		items = append(items, c)
	}
	return items, nil
}

// importOne processes a single listed item. On any step failure the
// resources created for this item only — a new document row, an uploaded
// blob — are rolled back, the item is counted as skipped and the loop moves
// on.
func (s *importService) importOne(ctx context.Context, r *run, req ImportRequest, sharedDocID string, item contentsource.Item) {
	data, err := s.source.Download(ctx, item.ID)
	if err != nil {
		r.skip(item.Name, fmt.Sprintf("download_failed: %v", err))
		return
	}

	docID := sharedDocID
	var createdDoc *model.Document
	if docID == "" {
		doc, err := s.documents.Create(ctx, &model.Document{
			ID:        uuid.NewString(),
			SectionID: req.SectionID,
			Title:     naming.DisplayName(item.Name),
			CreatedBy: req.Actor,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			r.skip(item.Name, fmt.Sprintf("document_create_failed: %v", err))
			return
		}
		createdDoc = doc
		docID = doc.ID
	}

	// Best-effort compensation; a failure here leaves an orphan row or blob
	// behind, which is harmless and reported for human follow-up.
	compensate := func() {
		if createdDoc != nil {
			if err := s.documents.Delete(ctx, createdDoc.ID); err != nil {
				logJSON("error", "external_import", "document_rollback_failed", map[string]any{
					"run_id":      r.result.RunID,
					"document_id": createdDoc.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	safeName := naming.SafeName(item.Name)
	key := naming.ObjectKey(docID, safeName)
	upRes, err := s.uploader.Upload(ctx, key, data, item.MimeType)
	if err != nil {
		compensate()
		r.skip(item.Name, fmt.Sprintf("storage_upload_failed: %s | path=%s", upRes.TraceString(), key))
		return
	}

	f := &model.File{
		ID:          uuid.NewString(),
		DocumentID:  docID,
		DisplayName: naming.DisplayName(item.Name),
		StorageKey:  key,
		Size:        int64(len(data)),
		Extension:   naming.SafeExtension(item.Name),
		ContentType: item.MimeType,
		UploadedBy:  req.Actor,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.files.Create(ctx, f); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logJSON("error", "external_import", "orphan_blob_cleanup_failed", map[string]any{
				"run_id":      r.result.RunID,
				"storage_key": key,
				"error":       delErr.Error(),
			})
		}
		compensate()
		r.skip(item.Name, fmt.Sprintf("metadata_insert_failed: %v | path=%s", err, key))
		return
	}

	r.result.Imported++
	ingestedFiles.WithLabelValues("import", "ok").Inc()
	r.trace("imported %s via %s", item.Name, upRes.StrategyUsed)
}

// writeAudit records one entry for the whole run. Audit is diagnostics, not
// correctness: a failed insert is traced and the result still returned.
func (s *importService) writeAudit(ctx context.Context, r *run, req ImportRequest) {
	details, err := json.Marshal(map[string]any{
		"run_id":          r.result.RunID,
		"source":          req.SourceRef,
		"scanned":         r.result.Scanned,
		"imported":        r.result.Imported,
		"skipped":         r.result.Skipped,
		"skipped_samples": r.result.SkippedSamples,
	})
	if err != nil {
		r.trace("audit marshal failed: %v", err)
		return
	}
	entry := &model.AuditEntry{
		ID:        uuid.NewString(),
		Action:    "external_import",
		Actor:     req.Actor,
		Details:   string(details),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		r.trace("audit insert failed: %v", err)
	}
}
