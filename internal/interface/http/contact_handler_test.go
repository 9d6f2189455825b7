package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/validation"
)

// fakeDirectory holds one account's contact slice; taken lists numbers
// committed to other accounts.
type fakeDirectory struct {
	contact *entity.Contact
	taken   []string
}

func (d *fakeDirectory) Kind() entity.AccountKind { return entity.KindCitizen }

func (d *fakeDirectory) GetContact(_ context.Context, accountID string) (*entity.Contact, error) {
	if d.contact == nil || d.contact.AccountID != accountID {
		return nil, repo.ErrNotFound
	}
	cp := *d.contact
	return &cp, nil
}

func (d *fakeDirectory) SetPending(_ context.Context, accountID string, ch entity.Channel, p entity.PendingChange) error {
	if d.contact == nil || d.contact.AccountID != accountID {
		return repo.ErrNotFound
	}
	if ch == entity.ChannelPhone {
		d.contact.PendingPhone = &p
	} else {
		d.contact.PendingEmail = &p
	}
	return nil
}

func (d *fakeDirectory) CommitPending(_ context.Context, accountID string, ch entity.Channel, code string, now time.Time) (string, error) {
	slot := d.contact.PendingEmail
	if ch == entity.ChannelPhone {
		slot = d.contact.PendingPhone
	}
	if slot == nil || slot.Code != code || now.After(slot.ExpiresAt) {
		return "", repo.ErrPendingMismatch
	}
	target := slot.Target
	if ch == entity.ChannelPhone {
		d.contact.Phone = target
		d.contact.PendingPhone = nil
	} else {
		d.contact.Email = target
		d.contact.PendingEmail = nil
	}
	return target, nil
}

func (d *fakeDirectory) IncrementAttempts(_ context.Context, _ string, ch entity.Channel, code string) (int, error) {
	slot := d.contact.PendingEmail
	if ch == entity.ChannelPhone {
		slot = d.contact.PendingPhone
	}
	if slot == nil || slot.Code != code {
		return 0, repo.ErrPendingMismatch
	}
	slot.Attempts++
	return slot.Attempts, nil
}

func (d *fakeDirectory) ClearPending(_ context.Context, _ string, ch entity.Channel) error {
	if ch == entity.ChannelPhone {
		d.contact.PendingPhone = nil
	} else {
		d.contact.PendingEmail = nil
	}
	return nil
}

func (d *fakeDirectory) PhoneInUse(_ context.Context, phone string) (bool, error) {
	if d.contact != nil && d.contact.Phone == phone {
		return true, nil
	}
	for _, p := range d.taken {
		if p == phone {
			return true, nil
		}
	}
	return false, nil
}

type stubDispatcher struct {
	lastCode string
	fail     bool
}

func (d *stubDispatcher) SendCode(_ context.Context, _ entity.Channel, _, code string, _ time.Duration) error {
	if d.fail {
		return errors.New("provider down")
	}
	d.lastCode = code
	return nil
}

func setupContactRouter(t *testing.T, dir *fakeDirectory, disp *stubDispatcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := application.NewVerificationService(dir, disp, logger, 10*time.Minute, 15*time.Minute, 5)
	h := NewContactHandler(svc, dir, logger)

	r := gin.New()
	g := r.Group("/api/citizen", func(c *gin.Context) {
		c.Set("accountID", "CIT-1")
	})
	g.POST("/profile/email/request", h.RequestEmailChange)
	g.POST("/profile/email/verify", h.VerifyEmailChange)
	g.POST("/profile/phone/request", h.RequestPhoneChange)
	g.POST("/profile/phone/verify", h.VerifyPhoneChange)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEmailChangeRoundTrip(t *testing.T) {
	dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1", Email: "old@example.com"}}
	disp := &stubDispatcher{}
	r := setupContactRouter(t, dir, disp)

	w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/request", gin.H{"newEmail": "new@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, disp.lastCode)

	w = doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/verify", gin.H{"code": disp.lastCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Email string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Data.Email)
	assert.Equal(t, "new@example.com", dir.contact.Email)
}

func TestRequestRejectsBadPayloads(t *testing.T) {
	dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1"}}
	r := setupContactRouter(t, dir, &stubDispatcher{})

	w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/request", gin.H{"newEmail": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/citizen/profile/phone/request", gin.H{"newPhone": "0771234567"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyStatusCodes(t *testing.T) {
	t.Run("no pending change", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1"}}
		r := setupContactRouter(t, dir, &stubDispatcher{})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/verify", gin.H{"code": "123456"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong code", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1"}}
		disp := &stubDispatcher{}
		r := setupContactRouter(t, dir, disp)
		doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/request", gin.H{"newEmail": "new@example.com"})

		wrong := "000000"
		if wrong == disp.lastCode {
			wrong = "000001"
		}
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/verify", gin.H{"code": wrong})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired code", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{
			AccountID: "CIT-1",
			PendingEmail: &entity.PendingChange{
				Target:    "new@example.com",
				Code:      "123456",
				ExpiresAt: time.Now().Add(-time.Minute),
			},
		}}
		r := setupContactRouter(t, dir, &stubDispatcher{})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/verify", gin.H{"code": "123456"})
		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("malformed code shape", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1"}}
		r := setupContactRouter(t, dir, &stubDispatcher{})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/verify", gin.H{"code": "12ab56"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPhoneConflictAndDispatchFailure(t *testing.T) {
	t.Run("unchanged phone", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1", Phone: "+94771111111"}}
		r := setupContactRouter(t, dir, &stubDispatcher{})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/phone/request", gin.H{"newPhone": "+94771111111"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("phone committed elsewhere", func(t *testing.T) {
		dir := &fakeDirectory{
			contact: &entity.Contact{AccountID: "CIT-1", Phone: "+94771111111"},
			taken:   []string{"+94772222222"},
		}
		r := setupContactRouter(t, dir, &stubDispatcher{})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/phone/request", gin.H{"newPhone": "+94772222222"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("dispatch failure", func(t *testing.T) {
		dir := &fakeDirectory{contact: &entity.Contact{AccountID: "CIT-1"}}
		r := setupContactRouter(t, dir, &stubDispatcher{fail: true})
		w := doJSON(t, r, http.MethodPost, "/api/citizen/profile/email/request", gin.H{"newEmail": "new@example.com"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		// slot still written; caller may re-request or verify
		assert.NotNil(t, dir.contact.PendingEmail)
	})
}
