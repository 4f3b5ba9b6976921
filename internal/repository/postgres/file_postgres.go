package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, document_id, display_name, storage_key, size, extension, content_type, uploaded_by, created_at`

func scanFile(row interface{ Scan(...any) error }) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.DocumentID,
		&f.DisplayName,
		&f.StorageKey,
		&f.Size,
		&f.Extension,
		&f.ContentType,
		&f.UploadedBy,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, document_id, display_name, storage_key, size, extension, content_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.DocumentID,
		f.DisplayName,
		f.StorageKey,
		f.Size,
		f.Extension,
		f.ContentType,
		f.UploadedBy,
		f.CreatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByDocument returns all files of a document ordered newest first.
func (r *FilePostgres) ListByDocument(ctx context.Context, documentID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountByDocument returns the number of file rows attached to a document.
func (r *FilePostgres) CountByDocument(ctx context.Context, documentID string) (int, error) {
	const q = `SELECT COUNT(*) FROM files WHERE document_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateContentInfo updates the blob-derived metadata after an inline edit or rollback.
func (r *FilePostgres) UpdateContentInfo(ctx context.Context, id string, size int64, extension, contentType string) error {
	const q = `
		UPDATE files
		SET size = $2, extension = $3, content_type = $4
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, id, size, extension, contentType)
	return err
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
