package postgres

import (
	"context"
	"testing"
	"time"

	"docaudit/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditPostgres_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)

	e := &model.AuditEntry{
		ID:        "audit-1",
		Action:    "external_import",
		Actor:     "auditor-1",
		Details:   `{"run_id":"run-1","scanned":3}`,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(e.ID, e.Action, e.Actor, e.Details, e.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Insert(context.Background(), e)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
