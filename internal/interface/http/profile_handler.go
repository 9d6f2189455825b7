package handlers

import (
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

// ProfileHandler serves profile reads for every kind and the citizen-only
// profile writes.
type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type updateAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

type emergencyContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type updateMedicalRequest struct {
	BloodType         *string                  `json:"blood_type"`
	Allergies         []string                 `json:"allergies"`
	MedicalConditions []string                 `json:"medical_conditions"`
	EmergencyContact  *emergencyContactRequest `json:"emergency_contact"`
}

func (h *ProfileHandler) CitizenProfile(c *gin.Context) {
	citizen, err := h.Svc.GetCitizen(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, citizen, "profile", nil)
}

func (h *ProfileHandler) HCPProfile(c *gin.Context) {
	hcp, err := h.Svc.GetHCP(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hcp, "profile", nil)
}

func (h *ProfileHandler) HospitalProfile(c *gin.Context) {
	hospital, err := h.Svc.GetHospital(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hospital, "profile", nil)
}

func (h *ProfileHandler) MOHProfile(c *gin.Context) {
	moh, err := h.Svc.GetMOH(c.Request.Context(), c.GetString("accountID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, moh, "profile", nil)
}

func (h *ProfileHandler) UpdateAddress(c *gin.Context) {
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	citizen, err := h.Svc.UpdateCitizenAddress(c.Request.Context(), c.GetString("accountID"), req.Address)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, citizen, "address updated", nil)
}

func (h *ProfileHandler) UpdateMedical(c *gin.Context) {
	var req updateMedicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	update := repo.MedicalUpdate{
		BloodType:         req.BloodType,
		Allergies:         req.Allergies,
		MedicalConditions: req.MedicalConditions,
	}
	if req.EmergencyContact != nil {
		update.EmergencyContact = &entity.EmergencyContact{
			Name:        req.EmergencyContact.Name,
			PhoneNumber: req.EmergencyContact.PhoneNumber,
		}
	}
	citizen, err := h.Svc.UpdateCitizenMedical(c.Request.Context(), c.GetString("accountID"), update)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, citizen, "medical info updated", nil)
}

func (h *ProfileHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrCitizenNotFound), errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	default:
		h.Logger.WithError(err).Error("profile request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
