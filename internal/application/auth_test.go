package application

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
)

type memCredentials struct {
	kind   entity.AccountKind
	hashes map[string]string
}

func (m *memCredentials) Kind() entity.AccountKind { return m.kind }

func (m *memCredentials) GetHash(_ context.Context, accountID string) (string, error) {
	h, ok := m.hashes[accountID]
	if !ok {
		return "", repo.ErrNotFound
	}
	return h, nil
}

func (m *memCredentials) UpdatePassword(_ context.Context, accountID, hash string) error {
	if _, ok := m.hashes[accountID]; !ok {
		return repo.ErrNotFound
	}
	m.hashes[accountID] = hash
	return nil
}

func newAuthFixture(t *testing.T, kind entity.AccountKind, accountID, password string) (*AuthService, *memCredentials) {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	store := &memCredentials{kind: kind, hashes: map[string]string{accountID: hash}}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(jwt, logger), store
}

func TestLoginIssuesRoleToken(t *testing.T) {
	svc, store := newAuthFixture(t, entity.KindHospital, "HOS-1", "hunter2isok")

	token, exp, err := svc.Login(context.Background(), store, "HOS-1", "hunter2isok")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.JWT.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "HOS-1", claims.AccountID)
	assert.Equal(t, "hospital", claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, store := newAuthFixture(t, entity.KindCitizen, "CIT-1", "hunter2isok")

	_, _, err := svc.Login(context.Background(), store, "CIT-1", "wrongwrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownAccountIndistinguishable(t *testing.T) {
	svc, store := newAuthFixture(t, entity.KindCitizen, "CIT-1", "hunter2isok")

	_, _, err := svc.Login(context.Background(), store, "CIT-404", "hunter2isok")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, store := newAuthFixture(t, entity.KindHCP, "HCP-1", "originalpw")
	ctx := context.Background()

	require.NoError(t, svc.ChangePassword(ctx, store, "HCP-1", "originalpw", "replacedpw"))

	_, _, err := svc.Login(ctx, store, "HCP-1", "originalpw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, store, "HCP-1", "replacedpw")
	assert.NoError(t, err)
}

func TestChangePasswordRules(t *testing.T) {
	svc, store := newAuthFixture(t, entity.KindMOH, "MOH-1", "originalpw")
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, store, "MOH-1", "originalpw", "short"), ErrWeakPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, store, "MOH-1", "originalpw", "originalpw"), ErrSamePassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, store, "MOH-1", "nottherealone", "replacedpw"), ErrWrongPassword)
}
