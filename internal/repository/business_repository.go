package repository

import (
	"context"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BusinessRepository struct {
	db *pgxpool.Pool
}

func NewBusinessRepository(db *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(ctx context.Context, b *entities.Business) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO businesses (id, owner_user_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, b.ID, b.OwnerUserID, b.Name, b.Description).Scan(&b.CreatedAt)
}

func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, owner_user_id, name, description, phone_number, is_active, created_at
		FROM businesses WHERE id = $1 AND is_active = TRUE
	`, id)
	return scanBusiness(row)
}

// GetByPhoneNumber resolves the business behind a provisioned number. Used by
// the inbound-call webhook.
func (r *BusinessRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.Business, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, owner_user_id, name, description, phone_number, is_active, created_at
		FROM businesses WHERE phone_number = $1 AND is_active = TRUE
	`, phoneNumber)
	return scanBusiness(row)
}

func (r *BusinessRepository) SetPhoneNumber(ctx context.Context, id, phoneNumber string) error {
	_, err := r.db.Exec(ctx, "UPDATE businesses SET phone_number = $1 WHERE id = $2", phoneNumber, id)
	return err
}

func (r *BusinessRepository) Update(ctx context.Context, b *entities.Business) error {
	_, err := r.db.Exec(ctx, `
		UPDATE businesses SET name = $1, description = $2 WHERE id = $3
	`, b.Name, b.Description, b.ID)
	return err
}

func (r *BusinessRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "UPDATE businesses SET is_active = FALSE WHERE id = $1", id)
	return err
}

func scanBusiness(row pgx.Row) (*entities.Business, error) {
	var b entities.Business
	err := row.Scan(&b.ID, &b.OwnerUserID, &b.Name, &b.Description, &b.PhoneNumber, &b.IsActive, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
