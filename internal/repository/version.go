package repository

import (
	"context"

	"docaudit/internal/model"
)

// VersionRepository defines data access for immutable file version records.
// Rows are inserted and deleted, never updated.
type VersionRepository interface {
	// Create inserts a new version record and returns the stored row.
	Create(ctx context.Context, v *model.FileVersion) (*model.FileVersion, error)

	// FindByFileAndVersion returns one version of a file.
	FindByFileAndVersion(ctx context.Context, fileID string, version int) (*model.FileVersion, error)

	// ListByFile returns all versions of a file, newest first.
	ListByFile(ctx context.Context, fileID string) ([]model.FileVersion, error)

	// MaxVersion returns the highest version number recorded for a file, or 0
	// if the file has no versions yet. Version numbers only ever grow, so
	// MaxVersion+1 is always a fresh number even after rollbacks.
	MaxVersion(ctx context.Context, fileID string) (int, error)

	// DeleteByFile removes every version row of a file.
	DeleteByFile(ctx context.Context, fileID string) error
}
