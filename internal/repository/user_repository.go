package repository

import (
	"context"
	"time"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return r.db.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at",
		user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, business_id, email_verified, is_active, created_at
		FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*entities.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, business_id, email_verified, is_active, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET email_verified = TRUE WHERE id = $1", userID)
	return err
}

// AttachBusiness links a user to the business created at onboarding.
func (r *UserRepository) AttachBusiness(ctx context.Context, userID int, businessID string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET business_id = $1 WHERE id = $2", businessID, userID)
	return err
}

// SaveVerificationCode stores a fresh 6-digit email verification code.
func (r *UserRepository) SaveVerificationCode(ctx context.Context, userID int, code string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO verification_codes (user_id, code, expires_at) VALUES ($1, $2, $3)
	`, userID, code, expiresAt)
	return err
}

// ConsumeVerificationCode marks a valid, unexpired code as used. Returns
// false when no such code exists.
func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, userID int, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE verification_codes SET used = TRUE
		WHERE user_id = $1 AND code = $2 AND used = FALSE AND expires_at > NOW()
	`, userID, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.BusinessID, &user.EmailVerified, &user.IsActive, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
