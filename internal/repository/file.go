package repository

import (
	"context"

	"docaudit/internal/model"
)

// FileRepository defines data access for file records using SQL queries only.
// No business logic here — strictly persistence operations.
type FileRepository interface {
	// Create inserts a new file record and returns the stored row.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByDocument returns every file of a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]model.File, error)

	// CountByDocument returns the number of files currently attached to a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// UpdateContentInfo updates the mutable blob-derived fields (size,
	// extension, content type) after an inline edit or rollback.
	UpdateContentInfo(ctx context.Context, id string, size int64, extension, contentType string) error

	// Delete removes a file row by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
