package repository

import (
	"context"

	"docaudit/internal/model"
)

// DocumentRepository defines data access for catalog documents. The wider
// catalog layer owns these rows; the ingestion core only creates them on
// demand during import and deletes them again when an import item fails.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, d *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document row by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
