package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// VersionPostgres is a PostgreSQL implementation of repository.VersionRepository.
type VersionPostgres struct {
	db *sql.DB
}

// NewVersionPostgres creates a new VersionPostgres repository.
func NewVersionPostgres(db *sql.DB) *VersionPostgres {
	return &VersionPostgres{db: db}
}

var _ repository.VersionRepository = (*VersionPostgres)(nil)

const versionColumns = `id, file_id, version, reason, storage_key, size, content_type, created_by, created_at`

func scanVersion(row interface{ Scan(...any) error }) (*model.FileVersion, error) {
	var v model.FileVersion
	if err := row.Scan(
		&v.ID,
		&v.FileID,
		&v.Version,
		&v.Reason,
		&v.StorageKey,
		&v.Size,
		&v.ContentType,
		&v.CreatedBy,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new version row and returns the stored record.
func (r *VersionPostgres) Create(ctx context.Context, v *model.FileVersion) (*model.FileVersion, error) {
	const q = `
		INSERT INTO file_versions (id, file_id, version, reason, storage_key, size, content_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + versionColumns
	row := r.db.QueryRowContext(ctx, q,
		v.ID,
		v.FileID,
		v.Version,
		v.Reason,
		v.StorageKey,
		v.Size,
		v.ContentType,
		v.CreatedBy,
		v.CreatedAt,
	)
	return scanVersion(row)
}

// FindByFileAndVersion fetches one version of a file.
func (r *VersionPostgres) FindByFileAndVersion(ctx context.Context, fileID string, version int) (*model.FileVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM file_versions
		WHERE file_id = $1 AND version = $2
	`
	return scanVersion(r.db.QueryRowContext(ctx, q, fileID, version))
}

// ListByFile returns all versions of a file ordered newest first.
func (r *VersionPostgres) ListByFile(ctx context.Context, fileID string) ([]model.FileVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM file_versions
		WHERE file_id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MaxVersion returns the highest version number for a file, 0 when none exist.
func (r *VersionPostgres) MaxVersion(ctx context.Context, fileID string) (int, error) {
	const q = `SELECT COALESCE(MAX(version), 0) FROM file_versions WHERE file_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, fileID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByFile removes all version rows of a file.
func (r *VersionPostgres) DeleteByFile(ctx context.Context, fileID string) error {
	const q = `DELETE FROM file_versions WHERE file_id = $1`
	_, err := r.db.ExecContext(ctx, q, fileID)
	return err
}
