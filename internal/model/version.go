package model

import (
	"fmt"
	"time"
)

// Snapshot reason codes. before_rollback_to_v* is produced with
// RollbackReason(n).
const (
	ReasonManual           = "manual"
	ReasonBeforeDelete     = "before_delete"
	ReasonBeforeInlineEdit = "before_inline_edit"
)

// RollbackReason builds the reason code recorded for the snapshot taken
// immediately before restoring version n.
func RollbackReason(n int) string {
	return fmt.Sprintf("before_rollback_to_v%d", n)
}

// FileVersion is an immutable snapshot of a File's blob and metadata at a
// point in time. Version numbers are per-file, strictly increasing and never
// reused, even after a rollback.
type FileVersion struct {
	ID          string    `json:"id"`
	FileID      string    `json:"file_id"`
	Version     int       `json:"version"`
	Reason      string    `json:"reason"`
	StorageKey  string    `json:"storage_key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
