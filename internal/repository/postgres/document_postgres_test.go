package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docaudit/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var documentCols = []string{"id", "section_id", "title", "created_by", "created_at"}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	d := &model.Document{
		ID:        "doc-1",
		SectionID: "sec-1",
		Title:     "imported_report.pdf",
		CreatedBy: "importer",
		CreatedAt: now,
	}

	rows := sqlmock.NewRows(documentCols).
		AddRow(d.ID, d.SectionID, d.Title, d.CreatedBy, d.CreatedAt)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(d.ID, d.SectionID, d.Title, d.CreatedBy, d.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, d)

	assert.NoError(t, err)
	assert.Equal(t, "doc-1", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(documentCols).
			AddRow("doc-1", "sec-1", "title", "u", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(rows)

		d, err := repo.FindByID(context.Background(), "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, "doc-1", d.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		d, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, d)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), "doc-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
