package model

import "time"

// File represents one stored blob owned by exactly one Document.
// This is a pure domain model with no database-specific dependencies or tags.
// The StorageKey is always system-generated (random id + allow-listed
// extension); DisplayName is the sanitized user-supplied name and is used for
// display only.
type File struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	DisplayName string    `json:"display_name"`
	StorageKey  string    `json:"storage_key"`
	Size        int64     `json:"size"`
	Extension   string    `json:"extension"`
	ContentType string    `json:"content_type"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
