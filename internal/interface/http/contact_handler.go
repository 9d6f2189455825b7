package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/response"
	"github.com/evrs-lk/evrs-api/pkg/validation"
)

// ContactHandler exposes the contact-change endpoints for one account kind.
// One instance per role group, all sharing the same VerificationService.
type ContactHandler struct {
	Svc    *application.VerificationService
	Dir    repo.ContactDirectory
	Logger *logrus.Logger

	// OnCommit runs after a successful verify, e.g. to refresh the citizen
	// search index. May be nil.
	OnCommit func(ctx context.Context, accountID string, ch entity.Channel)
}

func NewContactHandler(svc *application.VerificationService, dir repo.ContactDirectory, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Svc: svc, Dir: dir, Logger: logger}
}

type emailChangeRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
}

type phoneChangeRequest struct {
	NewPhone string `json:"newPhone" binding:"required"`
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required,otp"`
}

func (h *ContactHandler) RequestEmailChange(c *gin.Context) {
	var req emailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.request(c, entity.ChannelEmail, req.NewEmail, "verification code sent to the new email")
}

func (h *ContactHandler) RequestPhoneChange(c *gin.Context) {
	var req phoneChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.request(c, entity.ChannelPhone, req.NewPhone, "verification code sent to the new phone number")
}

func (h *ContactHandler) request(c *gin.Context, ch entity.Channel, target, okMsg string) {
	accountID := c.GetString("accountID")
	err := h.Svc.RequestChange(c.Request.Context(), h.Dir, accountID, ch, target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, okMsg, nil)
}

func (h *ContactHandler) VerifyEmailChange(c *gin.Context) {
	h.verify(c, entity.ChannelEmail)
}

func (h *ContactHandler) VerifyPhoneChange(c *gin.Context) {
	h.verify(c, entity.ChannelPhone)
}

func (h *ContactHandler) verify(c *gin.Context, ch entity.Channel) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	accountID := c.GetString("accountID")
	committed, err := h.Svc.ConfirmChange(c.Request.Context(), h.Dir, accountID, ch, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if h.OnCommit != nil {
		h.OnCommit(c.Request.Context(), accountID, ch)
	}
	if ch == entity.ChannelPhone {
		response.Success(c, http.StatusOK, gin.H{"phone": committed}, "phone number updated", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"email": committed}, "email updated", nil)
}

func (h *ContactHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidTarget):
		response.Error[any](c, http.StatusBadRequest, "invalid contact value", nil)
	case errors.Is(err, application.ErrUnchangedTarget):
		response.Error[any](c, http.StatusBadRequest, "value matches the current one", nil)
	case errors.Is(err, application.ErrPhoneInUse):
		response.Error[any](c, http.StatusConflict, "phone number already registered", nil)
	case errors.Is(err, application.ErrNoPendingChange):
		response.Error[any](c, http.StatusNotFound, "no pending change to verify", nil)
	case errors.Is(err, application.ErrCodeExpired):
		response.Error[any](c, http.StatusGone, "verification code expired", nil)
	case errors.Is(err, application.ErrInvalidCode):
		response.Error[any](c, http.StatusUnauthorized, "incorrect verification code", nil)
	case errors.Is(err, application.ErrTooManyAttempts):
		response.Error[any](c, http.StatusTooManyRequests, "too many attempts, request a new code", nil)
	case errors.Is(err, application.ErrDispatchFailed):
		response.Error[any](c, http.StatusBadGateway, "could not deliver the verification code", nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	default:
		h.Logger.WithError(err).Error("contact change failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
