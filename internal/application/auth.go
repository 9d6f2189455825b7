package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AuthService signs in accounts of any kind and manages password changes.
// Each HTTP role group passes its own CredentialStore, so one service covers
// citizens, providers, hospitals and officials alike.
type AuthService struct {
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(jwtManager *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{JWT: jwtManager, Logger: logger}
}

// Login verifies the password against the stored hash and mints an access
// token carrying the account id and role. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, store repository.CredentialStore, accountID, password string) (string, time.Time, error) {
	hash, err := store.GetHash(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, err
	}
	if !helpers.CompareHashAndPassword(hash, password) {
		s.Logger.WithFields(logrus.Fields{
			"accountId": accountID,
			"kind":      store.Kind(),
		}).Warn("login failed")
		return "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.GenerateAccessToken(accountID, string(store.Kind()))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ChangePassword re-checks the current password before rehashing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, store repository.CredentialStore, accountID, current, next string) error {
	if len(next) < 8 {
		return ErrWeakPassword
	}
	if next == current {
		return ErrSamePassword
	}
	hash, err := store.GetHash(ctx, accountID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(hash, current) {
		return ErrWrongPassword
	}
	newHash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	if err := store.UpdatePassword(ctx, accountID, newHash); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{
		"accountId": accountID,
		"kind":      store.Kind(),
	}).Info("password changed")
	return nil
}
