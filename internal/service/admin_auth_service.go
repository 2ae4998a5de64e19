package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelapp/internal/entities"
	apperrors "travelapp/internal/errors"
	"travelapp/internal/logger"
	"travelapp/internal/repository"
	"travelapp/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

var errInvalidCredentials = apperrors.ErrUnauthorized("Invalid credentials.")

type AdminAuthService interface {
	Login(ctx context.Context, creds entities.Credentials) (string, error)
	CreateAdmin(ctx context.Context, creds entities.Credentials) error
	// EnsureAdmin creates the admin unless one with that email exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	now    func() time.Time
	log    *logrus.Entry
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string) AdminAuthService {
	return &adminAuthService{
		repo:   repo,
		secret: []byte(secret),
		now:    time.Now,
		log:    logger.New("auth"),
	}
}

func (s *adminAuthService) Login(ctx context.Context, creds entities.Credentials) (string, error) {
	if len(s.secret) == 0 {
		return "", apperrors.ErrUnavailable("Authentication is not configured.")
	}
	creds.Normalize()
	if err := validation.Struct(creds).OrNil(); err != nil {
		return "", err
	}

	admin, err := s.repo.GetByEmail(ctx, creds.Email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		return "", errInvalidCredentials
	}

	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"exp":      s.now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	s.log.WithField("admin_id", admin.ID).Info("admin logged in")
	return signed, nil
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, creds entities.Credentials) error {
	creds.Normalize()
	verr := validation.Struct(creds)
	if len(creds.Password) > 0 && len(creds.Password) < entities.MinPasswordLength {
		if _, ok := verr.Fields["password"]; !ok {
			verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", entities.MinPasswordLength))
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	err := s.repo.CreateNewUser(ctx, creds.Email, creds.Password)
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.ErrConflict("An admin with this email already exists.")
	}
	if err != nil {
		return err
	}
	s.log.WithField("email", creds.Email).Info("admin created")
	return nil
}

func (s *adminAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if err := s.repo.CreateNewUser(ctx, email, password); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	s.log.WithField("email", email).Info("bootstrap admin created")
	return nil
}
