package repository

import (
	"context"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type KnowledgeRepository struct {
	db *pgxpool.Pool
}

func NewKnowledgeRepository(db *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// ListActive returns a business's active entries, most recently created first.
func (r *KnowledgeRepository) ListActive(ctx context.Context, businessID string) ([]entities.KnowledgeEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, business_id, title, content, is_active, created_at
		FROM knowledge_entries
		WHERE business_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC, id DESC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []entities.KnowledgeEntry{}
	for rows.Next() {
		var e entities.KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Title, &e.Content, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, businessID string, id int) (*entities.KnowledgeEntry, error) {
	var e entities.KnowledgeEntry
	err := r.db.QueryRow(ctx, `
		SELECT id, business_id, title, content, is_active, created_at
		FROM knowledge_entries WHERE id = $1 AND business_id = $2
	`, id, businessID).Scan(&e.ID, &e.BusinessID, &e.Title, &e.Content, &e.IsActive, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *KnowledgeRepository) Create(ctx context.Context, e *entities.KnowledgeEntry) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO knowledge_entries (business_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.BusinessID, e.Title, e.Content).Scan(&e.ID, &e.CreatedAt)
}

func (r *KnowledgeRepository) Update(ctx context.Context, e *entities.KnowledgeEntry) error {
	_, err := r.db.Exec(ctx, `
		UPDATE knowledge_entries SET title = $1, content = $2
		WHERE id = $3 AND business_id = $4
	`, e.Title, e.Content, e.ID, e.BusinessID)
	return err
}

// Deactivate soft-deletes an entry so it stops contributing to the prompt.
func (r *KnowledgeRepository) Deactivate(ctx context.Context, businessID string, id int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE knowledge_entries SET is_active = FALSE
		WHERE id = $1 AND business_id = $2
	`, id, businessID)
	return err
}
