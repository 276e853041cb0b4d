package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ametelin/docinsight/internal/core/domain"
)

func newVisualRepoWithMock(t *testing.T) (*VisualRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &VisualRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSaveAllWritesBatchInOneTransaction(t *testing.T) {
	repo, mock, done := newVisualRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	visuals := []domain.VisualElement{
		{ID: "vis-1", DocumentID: "doc-1", Kind: "chart", PageNumber: 2, Description: "revenue by quarter", CreatedAt: now},
		{ID: "vis-2", DocumentID: "doc-1", Kind: "table", PageNumber: 4, Description: "headcount", CreatedAt: now},
	}

	mock.ExpectBegin()
	for _, v := range visuals {
		mock.ExpectExec("INSERT INTO visual_elements").
			WithArgs(v.ID, v.DocumentID, v.Kind, v.PageNumber, v.Description, v.AssetRef, v.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := repo.SaveAll(context.Background(), visuals); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAllNoopOnEmptyBatch(t *testing.T) {
	repo, mock, done := newVisualRepoWithMock(t)
	defer done()

	if err := repo.SaveAll(context.Background(), nil); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetVisualByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newVisualRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, document_id, kind, page_number").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
