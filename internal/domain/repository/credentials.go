package repository

import (
	"context"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
)

// CredentialStore exposes just the password hash of an account, per kind.
type CredentialStore interface {
	Kind() entity.AccountKind
	GetHash(ctx context.Context, accountID string) (string, error)
	UpdatePassword(ctx context.Context, accountID, hash string) error
}
