package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/application"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/helpers"
	"github.com/evrs-lk/evrs-api/pkg/response"
	"github.com/evrs-lk/evrs-api/pkg/validation"
)

// AuthHandler serves login/logout and password change for one account kind.
type AuthHandler struct {
	Svc     *application.AuthService
	Creds   repo.CredentialStore
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, creds repo.CredentialStore, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Creds: creds, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, exp, err := h.Svc.Login(c.Request.Context(), h.Creds, req.ID, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	h.Cookies.SetAccess(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{
		"id":   req.ID,
		"role": string(h.Creds.Kind()),
	}, "login successful", map[string]any{"expires_at": exp})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	accountID := c.GetString("accountID")
	err := h.Svc.ChangePassword(c.Request.Context(), h.Creds, accountID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, "password updated", nil)
	case errors.Is(err, application.ErrWrongPassword):
		response.Error[any](c, http.StatusUnauthorized, "current password is incorrect", nil)
	case errors.Is(err, application.ErrSamePassword), errors.Is(err, application.ErrWeakPassword):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	default:
		h.Logger.WithError(err).Error("password change failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
