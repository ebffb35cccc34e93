package usecases

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/IbrahimDoba/CallPlatter-sub001/internal/entities"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/interfaces"
	"github.com/IbrahimDoba/CallPlatter-sub001/internal/repository"
)

const verificationCodeTTL = 15 * time.Minute

type AuthUsecase struct {
	userRepo  *repository.UserRepository
	email     interfaces.EmailSender
	jwtSecret []byte
}

func NewAuthUsecase(repo *repository.UserRepository, email interfaces.EmailSender, secret string) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  repo,
		email:     email,
		jwtSecret: []byte(secret),
	}
}

// Register creates the user and emails a 6-digit verification code.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string) error {
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         "user", // Default
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return err
	}

	return uc.sendVerificationCode(ctx, user)
}

// Verify consumes a pending verification code and marks the account verified.
func (uc *AuthUsecase) Verify(ctx context.Context, email, code string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("invalid verification code")
	}

	ok, err := uc.userRepo.ConsumeVerificationCode(ctx, user.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid verification code")
	}

	return uc.userRepo.MarkVerified(ctx, user.ID)
}

func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.New("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if !user.EmailVerified {
		return "", errors.New("email not verified")
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID,
		"role":        user.Role,
		"business_id": user.BusinessID,
		"exp":         time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

// EnsureAdmin creates a root user if none exists (called on startup)
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		admin := &entities.User{
			Email:        email,
			PasswordHash: string(hashed),
			Role:         "admin",
		}
		if err := uc.userRepo.Create(ctx, admin); err != nil {
			return err
		}
		return uc.userRepo.MarkVerified(ctx, admin.ID)
	}
	return nil
}

func (uc *AuthUsecase) sendVerificationCode(ctx context.Context, user *entities.User) error {
	code, err := randomCode()
	if err != nil {
		return err
	}
	if err := uc.userRepo.SaveVerificationCode(ctx, user.ID, code, time.Now().Add(verificationCodeTTL)); err != nil {
		return err
	}

	body := fmt.Sprintf("Your CallPlatter verification code is %s. It expires in 15 minutes.", code)
	if err := uc.email.Send(ctx, user.Email, "Verify your CallPlatter account", body); err != nil {
		// The code is stored; the user can request a resend.
		slog.Error("failed to send verification email", "user_id", user.ID, "error", err)
		return err
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
