package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// VisualRepository is the registry of extracted visual elements. The worker
// writes whole batches per document; the query pipeline reads single rows
// to attach visual metadata to responses.
type VisualRepository struct {
	db *sql.DB
}

func NewVisualRepository(db *sql.DB) *VisualRepository {
	return &VisualRepository{db: db}
}

func (r *VisualRepository) SaveAll(ctx context.Context, visuals []domain.VisualElement) error {
	if len(visuals) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visuals tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, v := range visuals {
		_, err := tx.ExecContext(ctx, `
INSERT INTO visual_elements (id, document_id, kind, page_number, description, asset_ref, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
SET kind = EXCLUDED.kind, page_number = EXCLUDED.page_number, description = EXCLUDED.description, asset_ref = EXCLUDED.asset_ref
`,
			v.ID, v.DocumentID, v.Kind, v.PageNumber, v.Description, v.AssetRef, v.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert visual element %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit visuals tx: %w", err)
	}
	return nil
}

func (r *VisualRepository) GetByID(ctx context.Context, id string) (*domain.VisualElement, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, kind, page_number, description, asset_ref, created_at
FROM visual_elements
WHERE id = $1
`, id)

	var v domain.VisualElement
	err := row.Scan(&v.ID, &v.DocumentID, &v.Kind, &v.PageNumber, &v.Description, &v.AssetRef, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get visual element", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan visual element: %w", err)
	}
	return &v, nil
}
