package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/evrs-lk/evrs-api/internal/application"
	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	repo "github.com/evrs-lk/evrs-api/internal/domain/repository"
	"github.com/evrs-lk/evrs-api/pkg/response"
	"github.com/evrs-lk/evrs-api/pkg/validation"
)

// AdminHandler serves the back-office directory, vaccine registration, the
// full vaccination ledger, citizen search and the risk dashboard.
type AdminHandler struct {
	Citizens  repo.CitizenRepository
	HCPs      repo.HCPRepository
	Hospitals repo.HospitalRepository
	MOHs      repo.MOHRepository
	Records   *application.RecordsService
	Risk      *application.RiskService
	Search    *application.SearchService
	Logger    *logrus.Logger
}

type registerVaccineRequest struct {
	Name        string `json:"name" binding:"required"`
	SideEffects string `json:"side_effects"`
}

func pageArgs(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

func listMeta(page, size int, total int64) map[string]any {
	return map[string]any{"page": page, "size": size, "total": total}
}

func (h *AdminHandler) ListCitizens(c *gin.Context) {
	page, size := pageArgs(c)
	citizens, total, err := h.Citizens.List(c.Request.Context(), page, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, citizens, "citizens", listMeta(page, size, total))
}

func (h *AdminHandler) ListHCPs(c *gin.Context) {
	page, size := pageArgs(c)
	hcps, total, err := h.HCPs.List(c.Request.Context(), page, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, hcps, "healthcare providers", listMeta(page, size, total))
}

func (h *AdminHandler) ListHospitals(c *gin.Context) {
	page, size := pageArgs(c)
	hospitals, total, err := h.Hospitals.List(c.Request.Context(), page, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, hospitals, "hospitals", listMeta(page, size, total))
}

func (h *AdminHandler) ListMOHs(c *gin.Context) {
	page, size := pageArgs(c)
	mohs, total, err := h.MOHs.List(c.Request.Context(), page, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, mohs, "moh officials", listMeta(page, size, total))
}

func (h *AdminHandler) SearchCitizens(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Search.SearchCitizens(c.Request.Context(), q, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *AdminHandler) RegisterVaccine(c *gin.Context) {
	var req registerVaccineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	by := entity.RecordedBy{ID: c.GetString("accountID"), Role: entity.KindAdmin}
	v, err := h.Records.CreateVaccine(c.Request.Context(), req.Name, req.SideEffects, by)
	if err != nil {
		if errors.Is(err, application.ErrVaccineExists) {
			response.Error[any](c, http.StatusConflict, "vaccine already registered", nil)
			return
		}
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "vaccine registered", nil)
}

func (h *AdminHandler) ListVaccinations(c *gin.Context) {
	page, size := pageArgs(c)
	views, total, err := h.Records.ListAllVaccinations(c.Request.Context(), page, size)
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "vaccination records", listMeta(page, size, total))
}

func (h *AdminHandler) Risks(c *gin.Context) {
	page, size := pageArgs(c)
	mode := c.DefaultQuery("mode", application.RiskModeLatest)
	scores, err := h.Risk.ScoreCitizens(c.Request.Context(), page, size, mode)
	if err != nil {
		if errors.Is(err, application.ErrScorerUnavailable) {
			response.Error[any](c, http.StatusServiceUnavailable, "risk scorer unavailable", nil)
			return
		}
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, scores, "risk scores", listMeta(page, size, int64(len(scores))))
}

func (h *AdminHandler) CitizenRisk(c *gin.Context) {
	score, err := h.Risk.ScoreCitizen(c.Request.Context(), c.Param("citizenId"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrCitizenNotFound):
			response.Error[any](c, http.StatusNotFound, "citizen not found", nil)
		case errors.Is(err, application.ErrScorerUnavailable):
			response.Error[any](c, http.StatusServiceUnavailable, "risk scorer unavailable", nil)
		default:
			h.internal(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, score, "risk score", nil)
}

func (h *AdminHandler) internal(c *gin.Context, err error) {
	h.Logger.WithError(err).Error("admin request failed")
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}
