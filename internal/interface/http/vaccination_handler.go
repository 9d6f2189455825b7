package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/pkg/response"
	"github.com/evrs-lk/evrs-api/pkg/validation"
)

// VaccinationHandler covers dose recording, dose history and the vaccine
// catalog reads shared by every role group.
type VaccinationHandler struct {
	Records *application.RecordsService
	Logger  *logrus.Logger
}

func NewVaccinationHandler(records *application.RecordsService, logger *logrus.Logger) *VaccinationHandler {
	return &VaccinationHandler{Records: records, Logger: logger}
}

type addVaccinationRequest struct {
	CitizenID           string `json:"citizen_id" binding:"required"`
	VaccineID           string `json:"vaccine_id" binding:"required"`
	BatchNumber         string `json:"batch_number" binding:"required"`
	ExpiryDate          string `json:"expiry_date" binding:"required"`
	VaccinationLocation string `json:"vaccination_location" binding:"required"`
	Division            string `json:"division"`
	AdditionalNotes     string `json:"additional_notes"`
}

func (h *VaccinationHandler) AddVaccination(c *gin.Context) {
	var req addVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "expiry_date must be YYYY-MM-DD", nil)
		return
	}
	by := entity.RecordedBy{
		ID:   c.GetString("accountID"),
		Role: entity.AccountKind(c.GetString("accountRole")),
	}
	rec, err := h.Records.AddVaccination(c.Request.Context(), application.NewVaccinationInput{
		CitizenID:           req.CitizenID,
		VaccineID:           req.VaccineID,
		BatchNumber:         req.BatchNumber,
		ExpiryDate:          expiry,
		VaccinationLocation: req.VaccinationLocation,
		Division:            req.Division,
		AdditionalNotes:     req.AdditionalNotes,
	}, by)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rec, "vaccination recorded", nil)
}

// CitizenHistory serves a citizen their own dose history.
func (h *VaccinationHandler) CitizenHistory(c *gin.Context) {
	h.history(c, c.GetString("accountID"))
}

// CitizenHistoryByID serves staff a citizen's dose history by path id.
func (h *VaccinationHandler) CitizenHistoryByID(c *gin.Context) {
	h.history(c, c.Param("citizenId"))
}

func (h *VaccinationHandler) history(c *gin.Context, citizenID string) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	views, err := h.Records.ListCitizenVaccinations(c.Request.Context(), citizenID, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "vaccination history", map[string]any{"count": len(views)})
}

func (h *VaccinationHandler) ListVaccines(c *gin.Context) {
	vaccines, err := h.Records.ListVaccines(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, vaccines, "vaccines", map[string]any{"count": len(vaccines)})
}

func (h *VaccinationHandler) GetVaccine(c *gin.Context) {
	v, err := h.Records.GetVaccine(c.Request.Context(), c.Param("vaccineId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v, "vaccine", nil)
}

func (h *VaccinationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrCitizenNotFound):
		response.Error[any](c, http.StatusNotFound, "citizen not found", nil)
	case errors.Is(err, application.ErrVaccineNotFound):
		response.Error[any](c, http.StatusNotFound, "vaccine not found", nil)
	default:
		h.Logger.WithError(err).Error("vaccination request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
